package auth_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/spec-kit/gym-access/internal/auth"
	"github.com/spec-kit/gym-access/internal/domain"
	"github.com/spec-kit/gym-access/internal/repository"
	apperrors "github.com/spec-kit/gym-access/pkg/util/errorutil"
)

var errStoreDown = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

type fixture struct {
	tokens   *auth.TokenManager
	cookies  *auth.CookieStore
	gyms     *repository.MemoryGymRepository
	users    *repository.MemoryUserRepository
	resolver *auth.Resolver
}

func strPtr(s string) *string { return &s }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tokens:  newTestTokens(),
		cookies: auth.NewCookieStore(false),
		gyms: repository.NewMemoryGymRepository(
			domain.Gym{ID: 3, Name: "Iron Temple", Slug: strPtr("iron-temple"), AdminCode: strPtr("ADM3")},
			domain.Gym{ID: 5, Name: "Pulse", Slug: strPtr("pulse"), AdminCode: strPtr("ADM5")},
			domain.Gym{ID: 7, Name: "Core Lab", AdminCode: strPtr("ADM7")},
			domain.Gym{ID: 9, Name: "Forge"},
		),
		users: repository.NewMemoryUserRepository(
			domain.UserAccount{ID: 11, Name: "Ana Ruiz", Email: "ana@example.com", Role: domain.UserRoleMember},
		),
	}
	f.resolver = auth.NewResolver(f.tokens, f.cookies, f.gyms, f.users, zap.NewNop())
	return f
}

func (f *fixture) gymSession(t *testing.T, id int64) string {
	t.Helper()
	token, _, err := f.tokens.Issue(auth.Claims{Kind: domain.SubjectKindGym, SubjectID: id}, time.Hour)
	require.NoError(t, err)
	return token
}

// expiredGymSession issues a 7 day owner session from a clock 8 days back.
func (f *fixture) expiredGymSession(t *testing.T, id int64) string {
	t.Helper()
	past := newTestTokens(auth.WithClock(func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }))
	token, _, err := past.Issue(auth.Claims{Kind: domain.SubjectKindGym, SubjectID: id}, 7*24*time.Hour)
	require.NoError(t, err)
	return token
}

func (f *fixture) visitorAccess(t *testing.T, id int64) string {
	t.Helper()
	token, _, err := f.tokens.Issue(auth.Claims{Kind: domain.SubjectKindGymAccess, SubjectID: id, AccessID: "phrase", Verified: true}, 24*time.Hour)
	require.NoError(t, err)
	return token
}

func (f *fixture) userSession(t *testing.T, id int64) string {
	t.Helper()
	token, _, err := f.tokens.Issue(auth.Claims{Kind: domain.SubjectKindUser, SubjectID: id}, time.Hour)
	require.NoError(t, err)
	return token
}

// ctxWithCookies returns a bare Fiber context carrying the given request cookies.
func ctxWithCookies(t *testing.T, cookies map[string]string) *fiber.Ctx {
	t.Helper()
	app := fiber.New()
	fctx := &fasthttp.RequestCtx{}
	for name, value := range cookies {
		fctx.Request.Header.SetCookie(name, value)
	}
	c := app.AcquireCtx(fctx)
	t.Cleanup(func() { app.ReleaseCtx(c) })
	return c
}

// newTestApp renders errors the way the HTTP layer does.
func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{"code": de.Code}})
		},
	})
}

func cookieHeader(cookies map[string]string) string {
	header := ""
	for name, value := range cookies {
		if header != "" {
			header += "; "
		}
		header += name + "=" + value
	}
	return header
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
