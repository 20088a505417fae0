package auth

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	UserSessionCookie     = "user_session"
	GymSessionCookie      = "gym_session"
	GymAccessCookiePrefix = "gym_access_"
)

// GymAccessCookieName returns the visitor cookie name scoped to one tenant.
func GymAccessCookieName(tenantID int64) string {
	return GymAccessCookiePrefix + strconv.FormatInt(tenantID, 10)
}

// parseGymAccessCookieName extracts the tenant id from a visitor cookie name.
func parseGymAccessCookieName(name string) (int64, bool) {
	suffix, ok := strings.CutPrefix(name, GymAccessCookiePrefix)
	if !ok {
		return 0, false
	}
	return ParseTenantID(suffix)
}

// ParseTenantID accepts only canonical positive decimal ids, so "007" and
// "+7" do not alias tenant 7.
func ParseTenantID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 || strconv.FormatInt(id, 10) != raw {
		return 0, false
	}
	return id, true
}

// CookieStore persists credentials as http-only cookies, one per trust context.
type CookieStore struct {
	secure bool
}

// NewCookieStore builds a store. secure should be true in production.
func NewCookieStore(secure bool) *CookieStore {
	return &CookieStore{secure: secure}
}

// Set stores token under name for ttl.
func (s *CookieStore) Set(c *fiber.Ctx, name, token string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Get returns the cookie value, or false when absent or empty.
func (s *CookieStore) Get(c *fiber.Ctx, name string) (string, bool) {
	val := c.Cookies(name)
	if val == "" {
		return "", false
	}
	return val, true
}

// Delete expires the cookie. Deleting an absent cookie is not an error.
func (s *CookieStore) Delete(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// VisitorTokens maps tenant id to the raw visitor credential for every
// gym_access_<id> cookie on the request. Names with a malformed id are skipped.
func (s *CookieStore) VisitorTokens(c *fiber.Ctx) map[int64]string {
	tokens := make(map[int64]string)
	c.Request().Header.VisitAllCookie(func(key, value []byte) {
		id, ok := parseGymAccessCookieName(string(key))
		if !ok || len(value) == 0 {
			return
		}
		tokens[id] = string(value)
	})
	return tokens
}
