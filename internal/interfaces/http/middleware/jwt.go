package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dormdesk/backend/internal/infrastructure/auth"
	"github.com/dormdesk/backend/internal/infrastructure/logger"
	"github.com/dormdesk/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUIDKey      = "uid"
	JWTRoleKey     = "role"
	JWTTenantIDKey = "tenant_id"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "

	// AccessTokenQueryParam carries the token for clients that cannot set
	// headers, such as browser EventSource
	AccessTokenQueryParam = "access_token"
)

// TokenValidator is implemented by auth.JWTService
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	Validator TokenValidator
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// QueryTokenPaths may pass the token as ?access_token=
	QueryTokenPaths []string
	Logger          *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(validator TokenValidator) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		Validator:       validator,
		SkipPaths:       []string{"/health", "/api/v1/health"},
		QueryTokenPaths: []string{"/api/v1/events/stream"},
	}
}

// JWTAuth authenticates the request and stores the claims in the gin and
// request contexts
func JWTAuth(validator TokenValidator) gin.HandlerFunc {
	return JWTAuthWithConfig(DefaultJWTConfig(validator))
}

// JWTAuthWithConfig creates JWT authentication middleware with custom config
func JWTAuthWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		tokenString, err := extractToken(c, cfg)
		if err != nil {
			handleAuthError(c, cfg, err)
			return
		}

		claims, err := cfg.Validator.Validate(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err)
			return
		}

		setClaims(c, claims)
		if cfg.Logger != nil {
			cfg.Logger.Debug("JWT authentication successful",
				zap.String("uid", claims.UID),
				zap.String("role", claims.Role))
		}
		c.Next()
	}
}

func extractToken(c *gin.Context, cfg JWTMiddlewareConfig) (string, error) {
	if header := c.GetHeader(AuthHeaderKey); header != "" {
		if !strings.HasPrefix(header, BearerPrefix) {
			return "", auth.ErrInvalidToken
		}
		if token := strings.TrimPrefix(header, BearerPrefix); token != "" {
			return token, nil
		}
		return "", auth.ErrInvalidToken
	}
	for _, p := range cfg.QueryTokenPaths {
		if c.Request.URL.Path == p {
			if token := c.Query(AccessTokenQueryParam); token != "" {
				return token, nil
			}
		}
	}
	return "", errMissingToken
}

var errMissingToken = errors.New("missing authorization header")

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(JWTUIDKey, claims.UID)
	c.Set(JWTRoleKey, claims.Role)
	if claims.TenantID != "" {
		c.Set(JWTTenantIDKey, claims.TenantID)
	}

	ctx := logger.WithUser(c.Request.Context(), claims.UID, claims.Role)
	c.Request = c.Request.WithContext(ctx)
}

func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path))
	}

	code, message := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code, message = dto.ErrCodeTokenInvalid, "Token is not yet valid"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrMissingUserID), errors.Is(err, auth.ErrInvalidRole):
		code, message = dto.ErrCodeTokenInvalid, "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, c.GetString(RequestIDKey)))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetUID returns the authenticated uid or ""
func GetUID(c *gin.Context) string {
	return c.GetString(JWTUIDKey)
}

// GetRole returns the authenticated role or ""
func GetRole(c *gin.Context) string {
	return c.GetString(JWTRoleKey)
}

// IsAdmin reports whether the caller holds the admin role
func IsAdmin(c *gin.Context) bool {
	return GetRole(c) == auth.RoleAdmin
}

// GetTenantRecordID returns the tenant record linked to the caller, if any
func GetTenantRecordID(c *gin.Context) *uuid.UUID {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.TenantUUID()
	}
	return nil
}

// RequireRole aborts with 403 unless the caller holds one of roles. It must
// run after JWTAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeForbidden,
			"Access to this resource is forbidden",
			c.GetString(RequestIDKey)))
	}
}
