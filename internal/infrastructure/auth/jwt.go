package auth

import (
	"errors"
	"time"

	"github.com/dormdesk/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Roles carried in the role claim
const (
	RoleAdmin  = "admin"
	RoleTenant = "tenant"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrMissingUserID    = errors.New("missing uid in claims")
	ErrInvalidRole      = errors.New("role must be admin or tenant")
)

// Claims is the identity asserted by the external login service.
// Only uid and role are required; tenant_id links a renter to their
// tenant record and building_id optionally scopes an admin.
type Claims struct {
	jwt.RegisteredClaims
	UID        string `json:"uid"`
	Role       string `json:"role"`
	TenantID   string `json:"tenant_id,omitempty"`
	BuildingID string `json:"building_id,omitempty"`
}

// IssueInput contains input for token generation
type IssueInput struct {
	UID        string
	Role       string
	TenantID   *uuid.UUID
	BuildingID *uuid.UUID
	TTL        time.Duration // zero uses the configured expiration
}

// Token is a signed access token
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"` // Bearer
}

// JWTService signs and validates HS256 access tokens
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
	now        func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	exp := cfg.AccessTokenExpiration
	if exp == 0 {
		exp = time.Hour
	}
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: exp,
		issuer:     cfg.Issuer,
		now:        time.Now,
	}
}

// Issue mints an access token. Production tokens come from the login
// service; this is used by dormctl and tests.
func (s *JWTService) Issue(input IssueInput) (*Token, error) {
	claims := &Claims{UID: input.UID, Role: input.Role}
	if input.TenantID != nil {
		claims.TenantID = input.TenantID.String()
	}
	if input.BuildingID != nil {
		claims.BuildingID = input.BuildingID.String()
	}
	if err := claims.check(); err != nil {
		return nil, err
	}

	ttl := input.TTL
	if ttl == 0 {
		ttl = s.expiration
	}
	now := s.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Issuer:    s.issuer,
		Subject:   input.UID,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &Token{AccessToken: signed, ExpiresAt: now.Add(ttl), TokenType: "Bearer"}, nil
}

// Validate parses an access token and returns its claims
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if err := claims.check(); err != nil {
		return nil, err
	}
	return claims, nil
}

// Expiration returns the default token lifetime
func (s *JWTService) Expiration() time.Duration {
	return s.expiration
}

func (c *Claims) check() error {
	if c.UID == "" {
		return ErrMissingUserID
	}
	switch c.Role {
	case RoleAdmin, RoleTenant:
	default:
		return ErrInvalidRole
	}
	if c.TenantID != "" {
		if _, err := uuid.Parse(c.TenantID); err != nil {
			return ErrInvalidClaims
		}
	}
	if c.BuildingID != "" {
		if _, err := uuid.Parse(c.BuildingID); err != nil {
			return ErrInvalidClaims
		}
	}
	return nil
}

// TenantUUID returns the parsed tenant id, or nil when absent
func (c *Claims) TenantUUID() *uuid.UUID {
	if c.TenantID == "" {
		return nil
	}
	id, err := uuid.Parse(c.TenantID)
	if err != nil {
		return nil
	}
	return &id
}

// BuildingUUID returns the parsed building id, or nil when absent
func (c *Claims) BuildingUUID() *uuid.UUID {
	if c.BuildingID == "" {
		return nil
	}
	id, err := uuid.Parse(c.BuildingID)
	if err != nil {
		return nil
	}
	return &id
}

// IsAdmin reports whether the token carries the admin role
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// ExpiresAtTime returns the token's expiration time as time.Time
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt != nil {
		return c.ExpiresAt.Time
	}
	return time.Time{}
}
