package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Orbeng/engser/internal/auth"
	"github.com/Orbeng/engser/internal/config"
	"github.com/Orbeng/engser/internal/dto"
	"github.com/Orbeng/engser/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := infra.NewDatabase("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared&_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{
		Env:                 "test",
		APIPrefix:           "/api",
		RateLimit:           1000,
		AppBaseURL:          "http://localhost:5000",
		QuoteNumberPrefix:   "ORC",
		QuoteNumberAttempts: 2,
		DashboardCacheTTL:   time.Minute,
	}
	authn := auth.NewAuthenticator("router-test-secret", time.Hour, 2*time.Hour)
	return New(ctx, cfg, db, nil, authn, nil)
}

func call(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestServer(t)
	for _, path := range []string{"/api/quotes", "/api/companies", "/api/services", "/api/dashboard/stats", "/api/user"} {
		w := call(t, r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRegisterLoginAndUseToken(t *testing.T) {
	r := newTestServer(t)

	w := call(t, r, http.MethodPost, "/api/register", "", dto.RegisterRequest{
		Username: "engenheiro", Password: "segredo123", Name: "Carla Dias",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(t, r, http.MethodPost, "/api/register", "", dto.RegisterRequest{
		Username: "engenheiro", Password: "outrasenha", Name: "Outra Pessoa",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(t, r, http.MethodPost, "/api/login", "", dto.LoginRequest{Username: "engenheiro", Password: "errada"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(t, r, http.MethodPost, "/api/login", "", dto.LoginRequest{Username: "engenheiro", Password: "segredo123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.AccessToken)
	assert.Equal(t, "bearer", login.TokenType)

	w = call(t, r, http.MethodGet, "/api/user", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var user dto.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "engenheiro", user.Username)
	assert.NotNil(t, user.LastLogin)

	w = call(t, r, http.MethodGet, "/api/quotes", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"quotes":[],"totalPages":0,"currentPage":1,"totalCount":0}`, w.Body.String())

	// a refresh token is not accepted as an access token
	w = call(t, r, http.MethodGet, "/api/quotes", login.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(t, r, http.MethodPost, "/api/refresh", "", dto.RefreshRequest{RefreshToken: login.RefreshToken})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPasswordResetRequest_UnknownUserStillOK(t *testing.T) {
	r := newTestServer(t)
	w := call(t, r, http.MethodPost, "/api/reset-password-request", "", dto.PasswordResetRequest{Username: "ninguem"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPublicEndpoints(t *testing.T) {
	r := newTestServer(t)

	w := call(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = call(t, r, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "engser_http_requests_total")
}
