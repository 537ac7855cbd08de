package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/beacon-marketplace/internal/api/dto"
	"github.com/spec-kit/beacon-marketplace/internal/auth"
	"github.com/spec-kit/beacon-marketplace/internal/domain"
	"github.com/spec-kit/beacon-marketplace/internal/service"
	apperrors "github.com/spec-kit/beacon-marketplace/pkg/util/errorutil"
)

// DirectoryHandler manages organizations, integrations, memberships and
// registered devices.
type DirectoryHandler struct {
	service *service.DirectoryService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(directoryService *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{service: directoryService}
}

// CreateOrganization POST /organizations.
func (h *DirectoryHandler) CreateOrganization(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	org, err := h.service.CreateOrganization(c.Context(), principal.User.ID, req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": organizationResponse(org)})
}

// GetOrganization GET /organizations/:id.
func (h *DirectoryHandler) GetOrganization(c *fiber.Ctx) error {
	org, err := h.service.GetOrganization(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": organizationResponse(org)})
}

// CreateIntegration POST /integrations.
func (h *DirectoryHandler) CreateIntegration(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateIntegrationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	integration, err := h.service.CreateIntegration(c.Context(), req.Name, req.Provider, req.CallbackURL)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.IntegrationResponse{
		ID:       integration.ID,
		Name:     integration.Name,
		Provider: integration.Provider,
	}})
}

// GrantOrganizationMembership POST /organizations/:id/memberships.
func (h *DirectoryHandler) GrantOrganizationMembership(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.GrantMembershipRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" {
		return apperrors.NewValidationError("user_id required", nil)
	}

	membership := &domain.Membership{
		UserID:    req.UserID,
		Kind:      domain.MembershipKindOrganization,
		SubjectID: c.Params("id"),
		VenueID:   req.VenueID,
		Level:     domain.AuthorityLevel(strings.ToUpper(req.Level)),
	}
	created, err := h.service.GrantMembership(c.Context(), principal.User.ID, membership)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": membershipResponse(created)})
}

// GrantIntegrationMembership POST /integrations/:id/memberships.
func (h *DirectoryHandler) GrantIntegrationMembership(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.GrantMembershipRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	userID := req.UserID
	if userID == "" {
		userID = principal.User.ID
	}
	membership := &domain.Membership{
		UserID:    userID,
		Kind:      domain.MembershipKindIntegration,
		SubjectID: c.Params("id"),
		Level:     domain.AuthorityLevel(strings.ToUpper(req.Level)),
	}
	created, err := h.service.GrantMembership(c.Context(), principal.User.ID, membership)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": membershipResponse(created)})
}

// RevokeMembership DELETE /memberships/:id.
func (h *DirectoryHandler) RevokeMembership(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.RevokeMembership(c.Context(), principal.User.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListMemberships GET /memberships?kind=ORGANIZATION|INTEGRATION.
func (h *DirectoryHandler) ListMemberships(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	kind := domain.MembershipKind(strings.ToUpper(c.Query("kind", string(domain.MembershipKindOrganization))))
	if kind != domain.MembershipKindOrganization && kind != domain.MembershipKindIntegration {
		return apperrors.NewValidationError("unknown membership kind", nil)
	}

	memberships, err := h.service.ListMemberships(c.Context(), principal.User.ID, kind)
	if err != nil {
		return err
	}
	items := make([]dto.MembershipResponse, 0, len(memberships))
	for i := range memberships {
		items = append(items, membershipResponse(&memberships[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// RegisterDevice POST /devices.
func (h *DirectoryHandler) RegisterDevice(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.RegisterDeviceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	device, err := h.service.RegisterDevice(c.Context(), principal.User.ID, req.SerialNumber, req.Label)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": deviceResponse(device)})
}

// RemoveDevice DELETE /devices/:serial.
func (h *DirectoryHandler) RemoveDevice(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.RemoveDevice(c.Context(), principal.User.ID, c.Params("serial")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListDevices GET /devices.
func (h *DirectoryHandler) ListDevices(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	devices, err := h.service.ListDevices(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	items := make([]dto.DeviceResponse, 0, len(devices))
	for i := range devices {
		items = append(items, deviceResponse(&devices[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func organizationResponse(org *domain.Organization) dto.OrganizationResponse {
	return dto.OrganizationResponse{
		ID:          org.ID,
		Name:        org.Name,
		Description: org.Description,
		CreatedAt:   org.CreatedAt,
	}
}

func organizationResponsePtr(org *domain.Organization) *dto.OrganizationResponse {
	if org == nil {
		return nil
	}
	resp := organizationResponse(org)
	return &resp
}

func deviceResponse(device *domain.Device) dto.DeviceResponse {
	return dto.DeviceResponse{
		ID:           device.ID,
		SerialNumber: device.SerialNumber,
		Label:        device.Label,
		CreatedAt:    device.CreatedAt,
	}
}
