package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"whvmatch/internal/cache"
	"whvmatch/internal/config"
	"whvmatch/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthRequired_WSTicket(t *testing.T) {
	_, rdb := testutil.NewRedis(t)

	s := &Server{
		config: &config.Config{JWTSecret: "test-secret"},
		redis:  rdb,
	}

	app := fiber.New()
	handler := func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"userID": c.Locals("userID"),
			"role":   c.Locals("role"),
		})
	}
	app.Get("/api/ws/test", s.AuthRequired(), handler)
	app.Get("/api/other", s.AuthRequired(), handler)

	ctx := context.Background()

	t.Run("WS path consumes the ticket", func(t *testing.T) {
		ticket := "ws-test-ticket-1"
		key := cache.WSTicketKey(ticket)
		require.NoError(t, rdb.Set(ctx, key, "123:employer", time.Minute).Err())

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/ws/test?ticket="+ticket, nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		exists, err := rdb.Exists(ctx, key).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(0), exists, "ticket should be single-use")

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, float64(123), body["userID"])
		assert.Equal(t, "employer", body["role"])
	})

	t.Run("Second use of a ticket fails", func(t *testing.T) {
		ticket := "ws-test-ticket-2"
		require.NoError(t, rdb.Set(ctx, cache.WSTicketKey(ticket), "789:whv", time.Minute).Err())

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/ws/test?ticket="+ticket, nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp2, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/ws/test?ticket="+ticket, nil))
		require.NoError(t, err)
		_ = resp2.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
	})

	t.Run("Non-WS path ignores tickets", func(t *testing.T) {
		ticket := "other-test-ticket-1"
		key := cache.WSTicketKey(ticket)
		require.NoError(t, rdb.Set(ctx, key, "456:whv", time.Minute).Err())

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/other?ticket="+ticket, nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		exists, err := rdb.Exists(ctx, key).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)
	})

	t.Run("Invalid ticket returns 401", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/ws/test?ticket=invalid", nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Malformed ticket value returns 401", func(t *testing.T) {
		ticket := "ws-test-ticket-3"
		require.NoError(t, rdb.Set(ctx, cache.WSTicketKey(ticket), "not-a-user", time.Minute).Err())

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/ws/test?ticket="+ticket, nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestServer_RedeemWSTicketWithoutRedis(t *testing.T) {
	s := &Server{}
	_, _, err := s.redeemWSTicket(context.Background(), "ticket")
	assert.Error(t, err)
}
