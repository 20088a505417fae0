package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/gym-access/internal/api/http/handlers"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

var (
	up   = pingerFunc(func(context.Context) error { return nil })
	down = pingerFunc(func(context.Context) error { return errors.New("connection refused") })
)

func readiness(t *testing.T, deps ...handlers.Dependency) (int, map[string]any) {
	t.Helper()
	app := fiber.New()
	h := handlers.NewHealthHandler("gym-access", "test", deps...)
	app.Get("/health/ready", h.Ready)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestReadyAllUp(t *testing.T) {
	status, body := readiness(t,
		handlers.Dependency{Name: "postgres", Pinger: up},
		handlers.Dependency{Name: "redis", Pinger: up, Optional: true},
	)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["status"])
}

func TestReadyDegradedWithoutOptionalDependency(t *testing.T) {
	status, body := readiness(t,
		handlers.Dependency{Name: "postgres", Pinger: up},
		handlers.Dependency{Name: "redis", Pinger: down, Optional: true},
	)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "degraded", body["status"])
}

func TestReadyFailsWithoutTenantStore(t *testing.T) {
	status, body := readiness(t,
		handlers.Dependency{Name: "postgres", Pinger: down},
		handlers.Dependency{Name: "redis", Pinger: up, Optional: true},
	)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", errBody["code"])
}

func TestLive(t *testing.T) {
	app := fiber.New()
	app.Get("/health/live", handlers.NewHealthHandler("gym-access", "v1").Live)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
