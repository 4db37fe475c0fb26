package handlers

import (
	"context"
	"net/http"

	"github.com/upb/identity-core/models"
	"github.com/upb/identity-core/services"
	"github.com/upb/identity-core/utils"
	"go.uber.org/zap"
)

// SessionRefresher is the service surface the session handler needs
type SessionRefresher interface {
	Refresh(ctx context.Context, token string) (*services.AuthPayload, error)
}

// RefreshTokenInput is the refresh request payload
type RefreshTokenInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// UserPayload is the user representation embedded in auth responses
type UserPayload struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	CompanyID string `json:"companyId,omitempty"`
}

// AuthResponse is the token pair returned by refresh and switch flows
type AuthResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         UserPayload `json:"user"`
}

// SessionHandler handles session-related HTTP requests
type SessionHandler struct {
	sessions SessionRefresher
	logger   *zap.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessions SessionRefresher, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// HandleRefreshToken handles POST /api/v1/auth/refresh-token
func (h *SessionHandler) HandleRefreshToken(w http.ResponseWriter, r *http.Request) {
	input, err := decodeInput[RefreshTokenInput](r)
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	payload, err := h.sessions.Refresh(r.Context(), input.RefreshToken)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	response := AuthResponse{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		User:         toUserPayload(payload.User),
	}

	if err := utils.WriteOK(w, response); err != nil {
		h.logger.Error("failed to write refresh response", zap.Error(err))
	}
}

// toUserPayload converts a user model to its response representation
func toUserPayload(user *models.User) UserPayload {
	payload := UserPayload{
		ID:        user.ID.String(),
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
	}
	if user.CompanyID != nil {
		payload.CompanyID = user.CompanyID.String()
	}
	return payload
}
