package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/identity-core/models"
	"github.com/upb/identity-core/services"
	"go.uber.org/zap"
)

// MockSessionRefresher is a mock implementation of SessionRefresher
type MockSessionRefresher struct {
	mock.Mock
}

func (m *MockSessionRefresher) Refresh(ctx context.Context, token string) (*services.AuthPayload, error) {
	args := m.Called(ctx, token)
	if payload := args.Get(0); payload != nil {
		return payload.(*services.AuthPayload), args.Error(1)
	}
	return nil, args.Error(1)
}

func refreshRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh-token", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandleRefreshToken_Success(t *testing.T) {
	sessions := new(MockSessionRefresher)
	handler := NewSessionHandler(sessions, zap.NewNop())

	companyID := uuid.New()
	user := models.NewUser("jane@example.com", "Jane", "Doe", models.RolePartnerAdmin, &companyID)
	sessions.On("Refresh", mock.Anything, "valid-token").Return(&services.AuthPayload{
		AccessToken:  "new-access-token",
		RefreshToken: "valid-token",
		Schema:       "public",
		User:         user,
	}, nil)

	rec := httptest.NewRecorder()
	handler.HandleRefreshToken(rec, refreshRequest(t, `{"input":{"refreshToken":"valid-token"}}`))

	require.Equal(t, http.StatusOK, rec.Code)

	var response AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "new-access-token", response.AccessToken)
	assert.Equal(t, "valid-token", response.RefreshToken)
	assert.Equal(t, "jane@example.com", response.User.Email)
	assert.Equal(t, "Jane", response.User.FirstName)
	assert.Equal(t, companyID.String(), response.User.CompanyID)
}

func TestHandleRefreshToken_InvalidToken(t *testing.T) {
	sessions := new(MockSessionRefresher)
	handler := NewSessionHandler(sessions, zap.NewNop())

	sessions.On("Refresh", mock.Anything, "bad-token").Return(nil, services.ErrInvalidRefreshToken)

	rec := httptest.NewRecorder()
	handler.HandleRefreshToken(rec, refreshRequest(t, `{"input":{"refreshToken":"bad-token"}}`))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Invalid or expired refresh token", body["message"])
}

func TestHandleRefreshToken_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing refresh token", `{"input":{}}`},
		{"no input envelope", `{"refreshToken":"tok"}`},
		{"malformed json", `{"input":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := new(MockSessionRefresher)
			handler := NewSessionHandler(sessions, zap.NewNop())

			rec := httptest.NewRecorder()
			handler.HandleRefreshToken(rec, refreshRequest(t, tt.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			sessions.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
		})
	}
}

func TestHandleRefreshToken_InternalError(t *testing.T) {
	sessions := new(MockSessionRefresher)
	handler := NewSessionHandler(sessions, zap.NewNop())

	sessions.On("Refresh", mock.Anything, "tok").
		Return(nil, services.WrapInternal("scan failed", assert.AnError))

	rec := httptest.NewRecorder()
	handler.HandleRefreshToken(rec, refreshRequest(t, `{"input":{"refreshToken":"tok"}}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// Internal detail must not leak to the client
	assert.NotContains(t, rec.Body.String(), "scan failed")
	assert.Contains(t, rec.Body.String(), "An internal error occurred")
}
