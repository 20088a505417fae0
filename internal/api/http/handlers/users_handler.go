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

// UsersHandler exposes auth endpoints for platform accounts.
type UsersHandler struct {
	auth     *service.AuthService
	resolver *auth.Resolver
	cookies  *auth.CookieStore
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, resolver *auth.Resolver, cookies *auth.CookieStore) *UsersHandler {
	return &UsersHandler{auth: authService, resolver: resolver, cookies: cookies}
}

// Register handles POST /api/auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := req.Validate(); err != nil {
		return apperrors.FromValidation(err)
	}

	user, err := h.auth.RegisterUser(c.UserContext(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email, Role: string(user.Role)},
		},
	})
}

// Login handles POST /api/auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return apperrors.FromValidation(err)
	}

	user, cred, err := h.auth.LoginUser(c.UserContext(), req.Email, req.Password, c.IP())
	if err != nil {
		return err
	}
	h.cookies.Set(c, cred.Cookie, cred.Token, cred.TTL)

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user":       dto.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email, Role: string(user.Role)},
			"expires_at": cred.ExpiresAt,
		},
	})
}

// Logout handles POST /api/auth/logout. It succeeds without a session.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	if _, ok := h.cookies.Get(c, auth.UserSessionCookie); ok {
		h.auth.RecordLogout(c.UserContext(), domain.SubjectKindUser, 0, c.IP())
	}
	h.cookies.Delete(c, auth.UserSessionCookie)
	return c.JSON(fiber.Map{"data": fiber.Map{"success": true}})
}

// Me handles GET /api/auth/me. An unauthenticated caller gets a null user.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, err := h.resolver.ResolveUserSession(c)
	if err != nil {
		return apperrors.NewServiceUnavailable(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user": dto.UserFromPrincipal(principal)}})
}

// Account handles GET /api/account behind auth.RequireUser.
func (h *UsersHandler) Account(c *fiber.Ctx) error {
	principal, ok := auth.UserPrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user": dto.UserFromPrincipal(principal)}})
}
