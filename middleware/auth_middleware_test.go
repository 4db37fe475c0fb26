package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/identity-core/config"
	"github.com/upb/identity-core/models"
	"github.com/upb/identity-core/services"
	"go.uber.org/zap"
)

func newTestTokens(t *testing.T, ttl time.Duration) *services.TokenService {
	t.Helper()
	return services.NewTokenService(config.AuthConfig{
		JWTSecret:      "test-secret",
		JWTIssuer:      "identity-core-test",
		AccessTokenTTL: ttl,
	}, zap.NewNop())
}

func issueToken(t *testing.T, tokens *services.TokenService, role models.UserRole) string {
	t.Helper()
	user := models.NewUser("jane@example.com", "Jane", "Doe", role, nil)
	token, err := tokens.IssueAccessToken(user, nil, "")
	require.NoError(t, err)
	return token
}

func TestRequireAuth(t *testing.T) {
	tokens := newTestTokens(t, 15*time.Minute)
	mw := NewAuthMiddleware(tokens, zap.NewNop())

	var gotClaims *services.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims = GetClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid token passes claims through", func(t *testing.T) {
		gotClaims = nil
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+issueToken(t, tokens, models.RoleSuperAdmin))
		rec := httptest.NewRecorder()

		mw.RequireAuth(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gotClaims)
		assert.Equal(t, models.RoleSuperAdmin, gotClaims.Role)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		rec := httptest.NewRecorder()

		mw.RequireAuth(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Missing or invalid authorization")
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Token abc123")
		rec := httptest.NewRecorder()

		mw.RequireAuth(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()

		mw.RequireAuth(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid or expired token")
	})

	t.Run("expired token", func(t *testing.T) {
		expired := newTestTokens(t, -time.Minute)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+issueToken(t, expired, models.RoleMember))
		rec := httptest.NewRecorder()

		mw.RequireAuth(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid or expired token")
	})
}

func TestRequireRole(t *testing.T) {
	tokens := newTestTokens(t, 15*time.Minute)
	mw := NewAuthMiddleware(tokens, zap.NewNop())

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	protected := mw.RequireAuth(mw.RequireRole(models.RoleSuperAdmin, models.RolePartnerAdmin)(next))

	t.Run("allowed role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+issueToken(t, tokens, models.RolePartnerAdmin))
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("disallowed role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+issueToken(t, tokens, models.RoleMember))
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "Insufficient permissions")
	})

	t.Run("no claims in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		rec := httptest.NewRecorder()

		mw.RequireRole(models.RoleSuperAdmin)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"standard bearer", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"no header", "", ""},
		{"wrong scheme", "Basic abc123", ""},
		{"scheme only", "Bearer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, extractBearerToken(req))
		})
	}
}
