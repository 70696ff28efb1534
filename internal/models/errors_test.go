package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewNotAuthenticatedError(nil), fiber.StatusUnauthorized},
		{NewUnauthorizedError("no"), fiber.StatusUnauthorized},
		{NewForbiddenError("no"), fiber.StatusForbidden},
		{NewValidationError("bad"), fiber.StatusBadRequest},
		{NewNotFoundError("User", 1), fiber.StatusNotFound},
		{NewConflictError("dup"), fiber.StatusConflict},
		{NewLikeWriteFailedError(errors.New("db down")), fiber.StatusBadGateway},
		{NewInternalError(errors.New("boom")), fiber.StatusInternalServerError},
		{errors.New("plain"), fiber.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NewValidationError("bad")), fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusForError(tt.err), tt.err.Error())
	}
}

func TestRespondWithError(t *testing.T) {
	app := fiber.New()
	app.Get("/like", func(c *fiber.Ctx) error {
		err := NewLikeWriteFailedError(errors.New("connection refused"))
		return RespondWithError(c, StatusForError(err), err)
	})
	app.Get("/auth", func(c *fiber.Ctx) error {
		err := NewNotAuthenticatedError(errors.New("missing user id"))
		return RespondWithError(c, StatusForError(err), err)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/like", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, CodeLikeWriteFailed, body.Code)
	assert.Empty(t, body.Details)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/auth", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body = ErrorResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, CodeNotAuthenticated, body.Code)
	assert.Equal(t, "missing user id", body.Details)
}
