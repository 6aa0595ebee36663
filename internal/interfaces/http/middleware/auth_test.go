package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/stockscan/internal/infrastructure/auth"
	"github.com/erp/stockscan/internal/infrastructure/config"
	"github.com/erp/stockscan/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "scanner-test-secret-0123456789abcdef"

func newTestJWTService(expiration time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.AuthConfig{
		Enabled:         true,
		JWTSecret:       testJWTSecret,
		Issuer:          "stockscan",
		TokenExpiration: expiration,
	})
}

func newAuthRouter(svc *auth.JWTService) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	protected := r.Group("/", JWTAuth(svc))
	protected.GET("/scan", RequireScope(auth.ScopeScan), func(c *gin.Context) {
		c.String(http.StatusOK, GetJWTClaims(c).Subject)
	})
	protected.PUT("/configure", RequireScope(auth.ScopeConfigure), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/open", RequireScope(auth.ScopeScan), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	r := newAuthRouter(svc)

	scanToken, _, err := svc.GenerateToken("handheld-07", auth.ScopeScan)
	require.NoError(t, err)
	expiredToken, _, err := newTestJWTService(-time.Minute).GenerateToken("handheld-07", auth.ScopeScan)
	require.NoError(t, err)

	tests := []struct {
		name       string
		method     string
		path       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"valid token with scope", http.MethodGet, "/scan", "Bearer " + scanToken, http.StatusOK, ""},
		{"missing header", http.MethodGet, "/scan", "", http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"wrong scheme", http.MethodGet, "/scan", "Basic " + scanToken, http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"empty bearer", http.MethodGet, "/scan", "Bearer ", http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"garbage token", http.MethodGet, "/scan", "Bearer not-a-jwt", http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"expired token", http.MethodGet, "/scan", "Bearer " + expiredToken, http.StatusUnauthorized, dto.ErrCodeTokenExpired},
		{"missing scope", http.MethodPut, "/configure", "Bearer " + scanToken, http.StatusForbidden, dto.ErrCodeForbidden},
		{"scope check without auth", http.MethodGet, "/open", "", http.StatusUnauthorized, dto.ErrCodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode == "" {
				assert.Equal(t, "handheld-07", w.Body.String())
				return
			}

			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Bearer")
			}
		})
	}
}

func TestRequireScope_Configure(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	r := newAuthRouter(svc)

	token, _, err := svc.GenerateToken("backoffice", auth.ScopeScan, auth.ScopeConfigure)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/configure", nil)
	req.Header.Set(AuthHeaderKey, "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
