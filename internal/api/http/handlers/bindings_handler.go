package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/beacon-marketplace/internal/api/dto"
	"github.com/spec-kit/beacon-marketplace/internal/auth"
	"github.com/spec-kit/beacon-marketplace/internal/domain"
	"github.com/spec-kit/beacon-marketplace/internal/service"
	apperrors "github.com/spec-kit/beacon-marketplace/pkg/util/errorutil"
)

// BindingsHandler manages session role binding endpoints.
type BindingsHandler struct {
	service *service.BindingService
}

// NewBindingsHandler constructs handler.
func NewBindingsHandler(bindingService *service.BindingService) *BindingsHandler {
	return &BindingsHandler{service: bindingService}
}

// AssociateOrganization POST /session/role/organization.
func (h *BindingsHandler) AssociateOrganization(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AssociateOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.OrganizationID == "" {
		return apperrors.NewValidationError("organization_id required", nil)
	}

	result, err := h.service.AssociateOrganizationRole(c.Context(), principal.Session.ID, principal.User.ID, req.OrganizationID, req.VenueID)
	if err != nil {
		return err
	}

	resp := dto.BindingResponse{
		State:        string(domain.BindingStateBoundToOrganization),
		Organization: organizationResponsePtr(result.Organization),
	}
	if result.Venue != nil {
		venue := venueResponse(result.Venue)
		resp.Venue = &venue
	}
	return c.JSON(fiber.Map{"data": resp})
}

// AssociateIntegration POST /session/role/integration.
func (h *BindingsHandler) AssociateIntegration(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AssociateIntegrationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.IntegrationID == "" {
		return apperrors.NewValidationError("integration_id required", nil)
	}

	result, err := h.service.AssociateIntegrationRole(c.Context(), principal.Session.ID, principal.User.ID, req.IntegrationID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": dto.BindingResponse{
		State: string(domain.BindingStateBoundToIntegration),
		Integration: &dto.IntegrationResponse{
			ID:       result.Integration.ID,
			Name:     result.Integration.Name,
			Provider: result.Integration.Provider,
		},
	}})
}

// Dissociate DELETE /session/role.
func (h *BindingsHandler) Dissociate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	result, err := h.service.Dissociate(c.Context(), principal.Session.ID, principal.User.ID)
	if err != nil {
		return err
	}

	memberships := make([]dto.MembershipResponse, 0, len(result.Memberships))
	for i := range result.Memberships {
		memberships = append(memberships, membershipResponse(&result.Memberships[i]))
	}
	return c.JSON(fiber.Map{"data": dto.DissociateResponse{
		Released:    string(result.Released),
		Memberships: memberships,
	}})
}

func membershipResponse(membership *domain.Membership) dto.MembershipResponse {
	return dto.MembershipResponse{
		ID:        membership.ID,
		Kind:      string(membership.Kind),
		SubjectID: membership.SubjectID,
		VenueID:   membership.VenueID,
		Level:     string(membership.Level),
	}
}
