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

// CheckInsHandler manages proximity submission endpoints.
type CheckInsHandler struct {
	service *service.CheckInService
}

// NewCheckInsHandler constructs handler.
func NewCheckInsHandler(checkInService *service.CheckInService) *CheckInsHandler {
	return &CheckInsHandler{service: checkInService}
}

// SubmitSelf POST /checkins/self.
func (h *CheckInsHandler) SubmitSelf(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.SubmitCheckInRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	zone, err := domain.ParseZoneKey(req.Field, req.Major, req.Minor)
	if err != nil {
		return err
	}

	record, err := h.service.SubmitSelf(c.Context(), principal.User.ID, zone, domain.Proximity(req.Proximity))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": checkInResponse(record)})
}

// SubmitByReader POST /checkins/reader. Not bearer-authenticated: trust is
// anchored in the reader's device registration.
func (h *CheckInsHandler) SubmitByReader(c *fiber.Ctx) error {
	var req dto.SubmitReaderCheckInRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	zone, err := domain.ParseZoneKey(req.Field, req.Major, req.Minor)
	if err != nil {
		return err
	}

	record, err := h.service.SubmitByReader(c.Context(), req.SerialNumber, zone, domain.Proximity(req.Proximity))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": checkInResponse(record)})
}

// Get GET /checkins/:field/:major/:minor.
func (h *CheckInsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	zone, err := domain.ParseZoneKey(c.Params("field"), c.Params("major"), c.Params("minor"))
	if err != nil {
		return err
	}

	record, err := h.service.GetForUser(c.Context(), principal.User.ID, zone)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": checkInResponse(record)})
}

// List GET /checkins.
func (h *CheckInsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	records, err := h.service.ListForUser(c.Context(), principal.User.ID, limit)
	if err != nil {
		return err
	}
	items := make([]dto.CheckInResponse, 0, len(records))
	for i := range records {
		items = append(items, checkInResponse(&records[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func checkInResponse(record *domain.CheckIn) dto.CheckInResponse {
	return dto.CheckInResponse{
		Field:     record.Key.Zone.Field,
		Major:     record.Key.Zone.Major,
		Minor:     record.Key.Zone.Minor,
		UserID:    record.Key.UserID,
		Proximity: string(record.Proximity),
		Source:    string(record.Source),
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
