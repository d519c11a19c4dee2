package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qmotor/car-marketplace/internal/model"
	"github.com/qmotor/car-marketplace/internal/utils"
)

const testSecret = "test-secret"

func protectedRequest(mw echo.MiddlewareFunc, authorization string) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, c
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, model.RoleNormalUser, 15)
	require.NoError(t, err)

	rec, c := protectedRequest(JWTAuth(testSecret), "Bearer "+tok.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(42), c.Get("user_id"))
	assert.Equal(t, model.RoleNormalUser, c.Get("role"))
}

func TestJWTAuthRejects(t *testing.T) {
	good, err := utils.NewAccessToken(testSecret, 42, model.RoleNormalUser, 15)
	require.NoError(t, err)
	wrongKey, err := utils.NewAccessToken("other-secret", 42, model.RoleNormalUser, 15)
	require.NoError(t, err)
	expired, err := utils.NewAccessToken(testSecret, 42, model.RoleNormalUser, -5)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not a bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong signing key", "Bearer " + wrongKey.Token},
		{"expired", "Bearer " + expired.Token},
		{"truncated", "Bearer " + good.Token[:len(good.Token)-4]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, c := protectedRequest(JWTAuth(testSecret), tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Nil(t, c.Get("user_id"))
		})
	}
}

func TestOptionalJWTNeverRejects(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 7, model.RoleNormalUser, 15)
	require.NoError(t, err)

	rec, c := protectedRequest(OptionalJWT(testSecret), "Bearer "+tok.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), c.Get("user_id"))

	rec, c = protectedRequest(OptionalJWT(testSecret), "")
	require.Equal(t, http.StatusOK, rec.Code, "anonymous requests pass")
	assert.Nil(t, c.Get("user_id"))

	rec, c = protectedRequest(OptionalJWT(testSecret), "Bearer garbage")
	require.Equal(t, http.StatusOK, rec.Code, "bad tokens degrade to anonymous")
	assert.Nil(t, c.Get("user_id"))
}

func TestRequireRole(t *testing.T) {
	run := func(role any, allowed ...string) int {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/v1/admin/cars", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		_ = RequireRole(allowed...)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})(c)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run(model.RoleAdmin, model.RoleAdmin))
	assert.Equal(t, http.StatusOK, run(model.RoleNormalUser, model.RoleNormalUser, model.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, run(model.RoleNormalUser, model.RoleAdmin), "normal user on admin route")
	assert.Equal(t, http.StatusForbidden, run(nil, model.RoleAdmin), "missing role")
	assert.Equal(t, http.StatusForbidden, run(42, model.RoleAdmin), "non-string role")
}
