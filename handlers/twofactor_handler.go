package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/upb/identity-core/middleware"
	"github.com/upb/identity-core/services"
	"github.com/upb/identity-core/utils"
	"go.uber.org/zap"
)

// TwoFactorEnroller is the service surface the two-factor handler needs
type TwoFactorEnroller interface {
	Enroll(ctx context.Context, userID uuid.UUID) (*services.Enrollment, error)
}

// EnrollResponse carries the secret and QR artifact for authenticator setup
type EnrollResponse struct {
	Secret string `json:"secret"`
	QRCode string `json:"qrCode"`
}

// TwoFactorHandler handles two-factor enrollment HTTP requests
type TwoFactorHandler struct {
	twofactor TwoFactorEnroller
	logger    *zap.Logger
}

// NewTwoFactorHandler creates a new TwoFactorHandler
func NewTwoFactorHandler(twofactor TwoFactorEnroller, logger *zap.Logger) *TwoFactorHandler {
	return &TwoFactorHandler{
		twofactor: twofactor,
		logger:    logger,
	}
}

// HandleEnroll handles POST /api/v1/auth/2fa/enroll. The enrolling user
// is the authenticated principal.
func (h *TwoFactorHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	userID, err := claims.UserID()
	if err != nil {
		_ = utils.WriteUnauthorized(w, "Invalid or expired token")
		return
	}

	enrollment, err := h.twofactor.Enroll(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	response := EnrollResponse{
		Secret: enrollment.Secret,
		QRCode: enrollment.QRCode,
	}

	if err := utils.WriteOK(w, response); err != nil {
		h.logger.Error("failed to write enrollment response", zap.Error(err))
	}
}
