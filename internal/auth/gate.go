package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gym-access/internal/observability"
)

// PathnameLocal and PathnameHeader carry the gated path to downstream layout code.
const (
	PathnameLocal  = "pathname"
	PathnameHeader = "X-Pathname"
)

// GateState classifies a request path.
type GateState int

const (
	GatePublic GateState = iota
	GateUnlockFlow
	GateProtected
)

func (s GateState) String() string {
	switch s {
	case GateUnlockFlow:
		return "unlock_flow"
	case GateProtected:
		return "protected"
	default:
		return "public"
	}
}

// GateConfig describes the admin area.
type GateConfig struct {
	// AdminPrefix is the root of every gated path, e.g. "/admin".
	AdminPrefix string
	// UnlockPrefixes are always let through.
	UnlockPrefixes []string
	// TenantPrefix is the parent of "/<id>/verify" pages, e.g. "/admin/gym".
	TenantPrefix string
	// UnlockEntry is where callers without a credential are sent.
	UnlockEntry string
}

// DefaultGateConfig returns the admin layout served by this service.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		AdminPrefix:    "/admin",
		UnlockPrefixes: []string{"/admin/gym/select", "/admin/gym/login"},
		TenantPrefix:   "/admin/gym",
		UnlockEntry:    "/admin/gym/select",
	}
}

// AccessGate is the coarse admin gate. It only asks whether some gym
// credential verifies; matching it to the tenant in the URL is done later by
// TenantBoundary, once route parameters are known.
type AccessGate struct {
	cfg      GateConfig
	resolver *Resolver
	metrics  *observability.Metrics
}

// NewAccessGate builds the gate. Prefixes are compared case-insensitively.
func NewAccessGate(cfg GateConfig, resolver *Resolver, metrics *observability.Metrics) *AccessGate {
	cfg.AdminPrefix = strings.ToLower(cfg.AdminPrefix)
	cfg.TenantPrefix = strings.ToLower(cfg.TenantPrefix)
	unlock := make([]string, len(cfg.UnlockPrefixes))
	for i, prefix := range cfg.UnlockPrefixes {
		unlock[i] = strings.ToLower(prefix)
	}
	cfg.UnlockPrefixes = unlock
	return &AccessGate{cfg: cfg, resolver: resolver, metrics: metrics}
}

// Classify maps a path onto the gate state machine using prefix comparison.
// The path is lower-cased first so "/Admin" is gated like "/admin" whatever
// the router's case sensitivity.
func (g *AccessGate) Classify(path string) GateState {
	path = strings.ToLower(path)
	if !hasPathPrefix(path, g.cfg.AdminPrefix) {
		return GatePublic
	}
	for _, prefix := range g.cfg.UnlockPrefixes {
		if hasPathPrefix(path, prefix) {
			return GateUnlockFlow
		}
	}
	if g.isVerifyPage(path) {
		return GateUnlockFlow
	}
	return GateProtected
}

// Handle is the Fiber middleware.
func (g *AccessGate) Handle(c *fiber.Ctx) error {
	path := c.Path()
	state := g.Classify(path)

	switch state {
	case GatePublic:
		return c.Next()
	case GateProtected:
		if !g.resolver.HasAnyGymCredential(c) {
			g.metrics.RecordGateDecision(state.String(), "redirect")
			return c.Redirect(g.cfg.UnlockEntry, fiber.StatusFound)
		}
	}

	g.metrics.RecordGateDecision(state.String(), "pass")
	c.Locals(PathnameLocal, path)
	c.Set(PathnameHeader, path)
	return c.Next()
}

// isVerifyPage matches "<TenantPrefix>/<id>/verify[/...]".
func (g *AccessGate) isVerifyPage(path string) bool {
	if g.cfg.TenantPrefix == "" {
		return false
	}
	rest, ok := strings.CutPrefix(path, strings.TrimSuffix(g.cfg.TenantPrefix, "/")+"/")
	if !ok {
		return false
	}
	id, tail, _ := strings.Cut(rest, "/")
	if _, ok := ParseTenantID(id); !ok {
		return false
	}
	return hasPathPrefix("/"+tail, "/verify")
}

// hasPathPrefix reports whether path equals prefix or continues it with a
// new segment, so "/admin" matches "/admin/x" but not "/administrator".
func hasPathPrefix(path, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return true
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
