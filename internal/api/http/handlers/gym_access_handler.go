package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gym-access/internal/api/dto"
	"github.com/spec-kit/gym-access/internal/auth"
	"github.com/spec-kit/gym-access/internal/domain"
	"github.com/spec-kit/gym-access/internal/service"
	apperrors "github.com/spec-kit/gym-access/pkg/util/errorutil"
)

// GymAccessHandler serves the per-tenant unlock endpoints.
type GymAccessHandler struct {
	auth    *service.AuthService
	cookies *auth.CookieStore
	param   string
}

// NewGymAccessHandler constructs handler. param names the route parameter
// carrying the tenant id.
func NewGymAccessHandler(authService *service.AuthService, cookies *auth.CookieStore, param string) *GymAccessHandler {
	return &GymAccessHandler{auth: authService, cookies: cookies, param: param}
}

// Verify handles POST /api/gym/:gymId/verify.
func (h *GymAccessHandler) Verify(c *fiber.Ctx) error {
	gymID, err := h.tenantID(c)
	if err != nil {
		return err
	}

	var req dto.VerifyAccessRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return apperrors.FromValidation(err)
	}

	gym, cred, err := h.auth.VerifyGymAccess(c.UserContext(), gymID, req.AccessID, c.IP())
	if err != nil {
		return err
	}
	h.cookies.Set(c, cred.Cookie, cred.Token, cred.TTL)

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"gym":        dto.GymAccessResponse{ID: gym.ID, Name: gym.Name},
			"expires_at": cred.ExpiresAt,
		},
	})
}

// Revoke handles DELETE /api/gym/:gymId/verify. Revoking a tenant that was
// never unlocked still succeeds.
func (h *GymAccessHandler) Revoke(c *fiber.Ctx) error {
	gymID, err := h.tenantID(c)
	if err != nil {
		return err
	}
	name := auth.GymAccessCookieName(gymID)
	if _, ok := h.cookies.Get(c, name); ok {
		h.auth.RecordLogout(c.UserContext(), domain.SubjectKindGymAccess, gymID, c.IP())
	}
	h.cookies.Delete(c, name)
	return c.JSON(fiber.Map{"data": fiber.Map{"success": true}})
}

// ChangePassword handles PUT /api/gym/:gymId/password behind
// auth.RequireGymPrincipal.
func (h *GymAccessHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.GymPrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authorized for this gym")
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := req.Validate(); err != nil {
		return apperrors.FromValidation(err)
	}

	if err := h.auth.ChangeGymPassword(c.UserContext(), principal.TenantID(), req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"success": true}})
}

func (h *GymAccessHandler) tenantID(c *fiber.Ctx) (int64, error) {
	raw := c.Params(h.param)
	id, ok := auth.ParseTenantID(raw)
	if !ok {
		return 0, apperrors.NewNotFound("gym", map[string]any{"id": raw})
	}
	return id, nil
}
