package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/beacon-marketplace/internal/api/dto"
	"github.com/spec-kit/beacon-marketplace/internal/auth"
	"github.com/spec-kit/beacon-marketplace/internal/domain"
	"github.com/spec-kit/beacon-marketplace/internal/service"
	apperrors "github.com/spec-kit/beacon-marketplace/pkg/util/errorutil"
)

// VenuesHandler manages venue creation and range queries.
type VenuesHandler struct {
	directory *service.DirectoryService
	search    *service.VenueSearchService
}

// NewVenuesHandler constructs handler.
func NewVenuesHandler(directory *service.DirectoryService, search *service.VenueSearchService) *VenuesHandler {
	return &VenuesHandler{directory: directory, search: search}
}

// Create POST /organizations/:id/venues.
func (h *VenuesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateVenueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	venue := &domain.Venue{
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	created, err := h.directory.CreateVenue(c.Context(), principal.User.ID, c.Params("id"), venue)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": venueResponse(created)})
}

// ListByOrganization GET /organizations/:id/venues.
func (h *VenuesHandler) ListByOrganization(c *fiber.Ctx) error {
	venues, err := h.directory.ListVenues(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": venueResponses(venues)})
}

// FindNearby GET /venues/nearby?lat=..&lon=..&delta_lat=..&delta_lon=..
func (h *VenuesHandler) FindNearby(c *fiber.Ctx) error {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return apperrors.NewValidationError("lat must be a number", nil)
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		return apperrors.NewValidationError("lon must be a number", nil)
	}

	query := service.NearbyQuery{CenterLat: lat, CenterLon: lon}
	if raw := c.Query("delta_lat"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return apperrors.NewValidationError("delta_lat must be a number", nil)
		}
		query.DeltaLat = &parsed
	}
	if raw := c.Query("delta_lon"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return apperrors.NewValidationError("delta_lon must be a number", nil)
		}
		query.DeltaLon = &parsed
	}
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			query.Limit = parsed
		}
	}

	venues, err := h.search.FindNearby(c.Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": venueResponses(venues)})
}

func venueResponse(venue *domain.Venue) dto.VenueResponse {
	return dto.VenueResponse{
		ID:             venue.ID,
		OrganizationID: venue.OrganizationID,
		Name:           venue.Name,
		Address:        venue.Address,
		Latitude:       venue.Latitude,
		Longitude:      venue.Longitude,
		CreatedAt:      venue.CreatedAt,
	}
}

func venueResponses(venues []domain.Venue) []dto.VenueResponse {
	items := make([]dto.VenueResponse, 0, len(venues))
	for i := range venues {
		items = append(items, venueResponse(&venues[i]))
	}
	return items
}
