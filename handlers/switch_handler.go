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

// ContextSwitcher is the service surface the switch handler needs
type ContextSwitcher interface {
	SwitchContext(ctx context.Context, principal *services.Claims, targetCompanyID uuid.UUID) (*services.SwitchResult, error)
}

// SwitchCompanyInput is the switch request payload
type SwitchCompanyInput struct {
	CompanyID string `json:"companyId" validate:"required,uuid"`
}

// CompanyPayload is the company representation in switch responses
type CompanyPayload struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Schema string `json:"schema"`
}

// SwitchCompanyResponse is the body returned on a successful switch
type SwitchCompanyResponse struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	User         UserPayload    `json:"user"`
	Company      CompanyPayload `json:"company"`
}

// SwitchHandler handles company context switch HTTP requests
type SwitchHandler struct {
	switcher ContextSwitcher
	logger   *zap.Logger
}

// NewSwitchHandler creates a new SwitchHandler
func NewSwitchHandler(switcher ContextSwitcher, logger *zap.Logger) *SwitchHandler {
	return &SwitchHandler{
		switcher: switcher,
		logger:   logger,
	}
}

// HandleSwitchCompany handles POST /api/v1/auth/switch-company
func (h *SwitchHandler) HandleSwitchCompany(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	input, err := decodeInput[SwitchCompanyInput](r)
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	companyID, err := uuid.Parse(input.CompanyID)
	if err != nil {
		_ = utils.WriteBadRequest(w, "companyId must be a valid UUID", nil)
		return
	}

	result, err := h.switcher.SwitchContext(r.Context(), claims, companyID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	response := SwitchCompanyResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         toUserPayload(result.User),
		Company: CompanyPayload{
			ID:     result.Company.ID.String(),
			Name:   result.Company.Name,
			Schema: result.Company.Schema(),
		},
	}

	if err := utils.WriteOK(w, response); err != nil {
		h.logger.Error("failed to write switch response", zap.Error(err))
	}
}
