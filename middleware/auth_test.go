package middleware

import (
	"go-donate/utils"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(captured **utils.Claims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := r.Context().Value(UserContextKey).(*utils.Claims); ok && captured != nil {
			*captured = claims
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	utils.JwtKey = []byte("test-secret")

	req := httptest.NewRequest(http.MethodGet, "/driver/active-pickups", nil)
	rec := httptest.NewRecorder()
	AuthMiddleware(okHandler(nil)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareBadFormat(t *testing.T) {
	utils.JwtKey = []byte("test-secret")

	req := httptest.NewRequest(http.MethodGet, "/driver/active-pickups", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	AuthMiddleware(okHandler(nil)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	utils.JwtKey = []byte("test-secret")
	token, err := utils.GenerateJWT("6512bd43d9caa6e02c990b0a", "dave", "driver")
	require.NoError(t, err)

	var captured *utils.Claims
	req := httptest.NewRequest(http.MethodGet, "/driver/active-pickups", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	AuthMiddleware(okHandler(&captured)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "dave", captured.Username)
	assert.Equal(t, "driver", captured.UserType)
}

func TestAuthMiddlewareRejectsResetToken(t *testing.T) {
	utils.JwtKey = []byte("test-secret")
	token, err := utils.GenerateResetJWT("6512bd43d9caa6e02c990b0a", "dave")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/driver/active-pickups", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	AuthMiddleware(okHandler(nil)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDriverMiddleware(t *testing.T) {
	utils.JwtKey = []byte("test-secret")

	run := func(userType string) int {
		token, err := utils.GenerateJWT("6512bd43d9caa6e02c990b0a", "pat", userType)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/driver/active-pickups", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		AuthMiddleware(DriverMiddleware(okHandler(nil))).ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run("driver"))
	assert.Equal(t, http.StatusForbidden, run("donor"))
}
