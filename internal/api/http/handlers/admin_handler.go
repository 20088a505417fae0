package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gym-access/internal/api/dto"
	"github.com/spec-kit/gym-access/internal/auth"
	"github.com/spec-kit/gym-access/internal/service"
	apperrors "github.com/spec-kit/gym-access/pkg/util/errorutil"
)

// Admin views understood by the frontend.
const (
	ViewGymSelect      = "gym-select"
	ViewGymLogin       = "gym-login"
	ViewGymVerify      = "gym-verify"
	ViewGymDashboard   = "gym-dashboard"
	ViewAdminOverview  = "admin-overview"
	ViewVerifyRequired = "gym-verify-required"
)

// AdminHandler answers admin page requests with view descriptors.
type AdminHandler struct {
	auth         *service.AuthService
	resolver     *auth.Resolver
	tenantPrefix string
	param        string
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService, resolver *auth.Resolver, tenantPrefix, param string) *AdminHandler {
	return &AdminHandler{auth: authService, resolver: resolver, tenantPrefix: tenantPrefix, param: param}
}

// Select lists every tenant so the visitor can pick one to unlock.
func (h *AdminHandler) Select(c *fiber.Ctx) error {
	gyms, err := h.auth.ListGyms(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.GymSummary, 0, len(gyms))
	for _, g := range gyms {
		items = append(items, dto.GymSummaryFromDomain(g))
	}
	return h.render(c, ViewGymSelect, fiber.Map{"gyms": items})
}

// Login describes the owner login page.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	return h.render(c, ViewGymLogin, fiber.Map{})
}

// Verify describes the verify page of one tenant.
func (h *AdminHandler) Verify(c *fiber.Ctx) error {
	raw := c.Params(h.param)
	gymID, ok := auth.ParseTenantID(raw)
	if !ok {
		return apperrors.NewNotFound("gym", map[string]any{"id": raw})
	}
	gym, err := h.auth.GetGym(c.UserContext(), gymID)
	if err != nil {
		return err
	}
	principal, err := h.resolver.ResolveGymIdentity(c, gymID)
	if err != nil {
		return apperrors.NewServiceUnavailable(err)
	}
	return h.render(c, ViewGymVerify, fiber.Map{
		"gym":      dto.GymAccessResponse{ID: gym.ID, Name: gym.Name},
		"unlocked": principal != nil && principal.TenantID() == gymID,
	})
}

// Dashboard describes a tenant's private area. It runs behind
// auth.TenantBoundary, so a principal in context always matches the URL.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	raw := c.Params(h.param)
	gymID, ok := auth.ParseTenantID(raw)
	if !ok {
		return apperrors.NewNotFound("gym", map[string]any{"id": raw})
	}

	principal, ok := auth.GymPrincipalFromContext(c)
	if !ok {
		return h.render(c, ViewVerifyRequired, fiber.Map{
			"gymId":      gymID,
			"verifyPath": auth.TenantRoot(h.tenantPrefix, gymID) + "/verify",
		})
	}

	gym, err := h.auth.GetGym(c.UserContext(), gymID)
	if err != nil {
		return err
	}
	return h.render(c, ViewGymDashboard, fiber.Map{
		"gym":     dto.GymAccessResponse{ID: gym.ID, Name: gym.Name},
		"section": c.Params("*"),
		"principal": fiber.Map{
			"kind":     principal.Kind(),
			"tenantId": principal.TenantID(),
		},
	})
}

// Overview is the admin landing page. It points at the caller's own tenant.
func (h *AdminHandler) Overview(c *fiber.Ctx) error {
	principal, err := h.resolver.ResolveAnyGymIdentity(c)
	if err != nil {
		return apperrors.NewServiceUnavailable(err)
	}
	data := fiber.Map{}
	if principal != nil {
		data["home"] = auth.TenantRoot(h.tenantPrefix, principal.TenantID())
	}
	return h.render(c, ViewAdminOverview, data)
}

func (h *AdminHandler) render(c *fiber.Ctx, view string, data fiber.Map) error {
	data["view"] = view
	if pathname, ok := c.Locals(auth.PathnameLocal).(string); ok {
		data["pathname"] = pathname
	}
	return c.JSON(fiber.Map{"data": data})
}
