package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dormdesk/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwaggerProtection(t *testing.T) {
	denyAll := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, "missing token"))
	}
	allowAll := func(c *gin.Context) { c.Set("authed", true) }

	tests := []struct {
		name     string
		cfg      SwaggerConfig
		auth     gin.HandlerFunc
		remote   string
		status   int
		wantCode string
	}{
		{"disabled", SwaggerConfig{}, nil, "192.0.2.1:1234", http.StatusNotFound, dto.ErrCodeNotFound},
		{"enabled", SwaggerConfig{Enabled: true}, nil, "192.0.2.1:1234", http.StatusOK, ""},
		{"cidr match", SwaggerConfig{Enabled: true, AllowedIPs: []string{"192.0.2.0/24"}}, nil, "192.0.2.77:1234", http.StatusOK, ""},
		{"single ip match", SwaggerConfig{Enabled: true, AllowedIPs: []string{" 198.51.100.7 "}}, nil, "198.51.100.7:1234", http.StatusOK, ""},
		{"ipv6 match", SwaggerConfig{Enabled: true, AllowedIPs: []string{"2001:db8::1"}}, nil, "[2001:db8::1]:1234", http.StatusOK, ""},
		{"outside list", SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8", "198.51.100.7"}}, nil, "192.0.2.1:1234", http.StatusForbidden, dto.ErrCodeForbidden},
		{"garbage entries ignored", SwaggerConfig{Enabled: true, AllowedIPs: []string{"not-an-ip", "10.0.0.0/99"}}, nil, "192.0.2.1:1234", http.StatusOK, ""},
		{"auth rejects", SwaggerConfig{Enabled: true, RequireAuth: true}, denyAll, "192.0.2.1:1234", http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"auth passes", SwaggerConfig{Enabled: true, RequireAuth: true}, allowAll, "192.0.2.1:1234", http.StatusOK, ""},
		{"auth not required", SwaggerConfig{Enabled: true}, denyAll, "192.0.2.1:1234", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			engine.GET("/docs", SwaggerProtection(tt.cfg, tt.auth), func(c *gin.Context) {
				c.String(http.StatusOK, "docs")
			})

			req := httptest.NewRequest(http.MethodGet, "/docs", nil)
			req.RemoteAddr = tt.remote
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code)
			if tt.wantCode == "" {
				assert.Equal(t, "docs", w.Body.String())
				return
			}
			assert.Contains(t, w.Body.String(), tt.wantCode)
		})
	}
}
