package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func signClaims(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

// bearerAuth mirrors how the API guards routes with BearerToken, ParseToken and SetIdentity.
func bearerAuth(c *fiber.Ctx) error {
	tokenString, ok := BearerToken(c.Get("Authorization"))
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	claims, err := ParseToken(testSecret, tokenString)
	if err != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	SetIdentity(c, claims.UserID, claims.Role)
	return c.Next()
}

func TestBearerAuthFlow(t *testing.T) {
	app := fiber.New()

	app.Get("/test", bearerAuth, func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"userID": c.Locals("userID"),
			"role":   c.Locals("role"),
		})
	})

	validToken, err := GenerateToken(testSecret, 123, "employer")
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedUserID uint
	}{
		{
			name:           "Happy Path",
			authHeader:     "Bearer " + validToken,
			expectedStatus: http.StatusOK,
			expectedUserID: 123,
		},
		{
			name:           "Missing Header",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid Format",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Malformed Token",
			authHeader:     "Bearer malformed.token.here",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Expired Token",
			authHeader: "Bearer " + signClaims(t, jwt.MapClaims{
				"sub": "123", "iss": TokenIssuer, "aud": TokenAudience,
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Wrong Audience",
			authHeader: "Bearer " + signClaims(t, jwt.MapClaims{
				"sub": "123", "iss": TokenIssuer, "aud": "someone-else",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]interface{}
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, float64(tt.expectedUserID), body["userID"])
				assert.Equal(t, "employer", body["role"])
			}
		})
	}
}

func TestParseToken(t *testing.T) {
	token, err := GenerateToken(testSecret, 42, "whv")
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "whv", claims.Role)
	assert.NotEmpty(t, claims.JTI)

	_, err = ParseToken("another-secret-another-secret-1234", token)
	assert.Error(t, err)

	zero := signClaims(t, jwt.MapClaims{
		"sub": strconv.Itoa(0), "iss": TokenIssuer, "aud": TokenAudience,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err = ParseToken(testSecret, zero)
	assert.Error(t, err)

	_, err = GenerateToken("", 1, "whv")
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	for _, h := range []string{"", "Bearer", "Bearer ", "Token abc", "Bearer a b"} {
		_, ok := BearerToken(h)
		assert.False(t, ok, h)
	}
}
