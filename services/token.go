package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/upb/identity-core/config"
	"github.com/upb/identity-core/internal/observability"
	"github.com/upb/identity-core/models"
	"go.uber.org/zap"
)

// Claims are the access token claims. Schema names the tenant schema the
// token acts in and defaults to public.
type Claims struct {
	Role      models.UserRole `json:"role"`
	CompanyID string          `json:"company_id,omitempty"`
	Schema    string          `json:"schema"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies the two token kinds: HS256 JWT access
// tokens and opaque random refresh tokens.
type TokenService struct {
	cfg    config.AuthConfig
	logger *zap.Logger
}

// NewTokenService creates a new token service
func NewTokenService(cfg config.AuthConfig, logger *zap.Logger) *TokenService {
	return &TokenService{
		cfg:    cfg,
		logger: logger,
	}
}

// IssueAccessToken signs an access token for the user acting in the given
// company context and schema. An empty schema means the public schema; a
// nil companyID leaves the company claim unset.
func (s *TokenService) IssueAccessToken(user *models.User, companyID *uuid.UUID, schema string) (string, error) {
	if schema == "" {
		schema = models.PublicSchema
	}

	now := time.Now()
	claims := Claims{
		Role:   user.Role,
		Schema: schema,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.cfg.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
		},
	}

	if companyID != nil {
		claims.CompanyID = companyID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", WrapInternal("failed to sign access token", err)
	}

	observability.AccessTokensIssued.WithLabelValues(string(user.Role)).Inc()
	s.logger.Debug("access token issued",
		zap.String("user_id", user.ID.String()),
		zap.String("schema", claims.Schema),
	)
	return signed, nil
}

// NewRefreshToken generates an opaque refresh token value. 32 random bytes
// hex-encoded, never derived from user data.
func (s *TokenService) NewRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", WrapInternal("failed to generate refresh token", err)
	}
	return hex.EncodeToString(buf), nil
}

// NewRefreshSession generates a refresh token and wraps it in a session
// record for the user, using the configured refresh TTL.
func (s *TokenService) NewRefreshSession(userID uuid.UUID) (*models.RefreshSession, error) {
	token, err := s.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	return models.NewRefreshSession(userID, token, s.cfg.RefreshTokenTTL), nil
}

// Verify parses and validates an access token. Expired tokens come back as
// ErrAccessTokenExpired, everything else invalid as ErrInvalidAccessToken.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, NewDomainError(ErrorTypeUnauthorized, ErrAccessTokenExpired.Message, err)
		}
		return nil, NewDomainError(ErrorTypeUnauthorized, ErrInvalidAccessToken.Message, err)
	}

	if !token.Valid {
		return nil, ErrInvalidAccessToken
	}

	if claims.Schema == "" {
		claims.Schema = models.PublicSchema
	}

	return claims, nil
}

// IsTokenExpired reports whether a verification failure was caused by an
// expired token rather than a malformed or tampered one.
func IsTokenExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}

// UserID returns the subject claim parsed as a UUID
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// HashRefreshToken returns the hex-encoded SHA-256 digest of a refresh
// token value. The session index stores hashes, never raw tokens.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
