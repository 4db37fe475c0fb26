package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/identity-core/internal/observability"
	"github.com/upb/identity-core/models"
	"github.com/upb/identity-core/repositories"
	"go.uber.org/zap"
)

// SwitchResult is the outcome of a company context switch: a fresh token
// pair bound to the target company.
type SwitchResult struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
	Company      *models.Company
}

// SwitcherService moves an elevated user's working context to another
// company. The acting user always lives in the public schema and so do
// the sessions the swap writes.
type SwitcherService struct {
	directory    *DirectoryService
	tokens       *TokenService
	users        repositories.UserRepository
	sessionStore *SessionService
	logger       *zap.Logger
}

// NewSwitcherService creates a new switcher service
func NewSwitcherService(
	directory *DirectoryService,
	tokens *TokenService,
	users repositories.UserRepository,
	sessionStore *SessionService,
	logger *zap.Logger,
) *SwitcherService {
	return &SwitcherService{
		directory:    directory,
		tokens:       tokens,
		users:        users,
		sessionStore: sessionStore,
		logger:       logger,
	}
}

// SwitchContext validates the switch and, on success, replaces the user's
// sessions with a single new one bound to the target company. Checks run
// in a fixed order: role gate, target existence, acting-user read from the
// public schema, hierarchy, then the transactional session swap in the
// session store. Concurrent switches by the same user settle on whichever
// commit lands last.
func (s *SwitcherService) SwitchContext(ctx context.Context, principal *Claims, targetCompanyID uuid.UUID) (*SwitchResult, error) {
	if !principal.Role.Elevated() {
		observability.ContextSwitches.WithLabelValues("forbidden").Inc()
		return nil, ErrRoleNotAllowed
	}

	target, err := s.directory.GetCompany(ctx, targetCompanyID)
	if err != nil {
		if IsNotFoundError(err) {
			observability.ContextSwitches.WithLabelValues("not_found").Inc()
		} else {
			observability.ContextSwitches.WithLabelValues("error").Inc()
		}
		return nil, err
	}
	if target.IsDeleted() {
		observability.ContextSwitches.WithLabelValues("not_found").Inc()
		return nil, ErrCompanyNotFound
	}

	userID, err := principal.UserID()
	if err != nil {
		observability.ContextSwitches.WithLabelValues("error").Inc()
		return nil, NewDomainError(ErrorTypeUnauthorized, ErrInvalidAccessToken.Message, err)
	}

	// The acting user read is not part of a tenant scan, so a failing
	// store here is an outage, not a miss.
	user, err := s.users.GetByID(ctx, models.PublicSchema, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			observability.ContextSwitches.WithLabelValues("not_found").Inc()
			return nil, ErrUserNotFound
		}
		observability.ContextSwitches.WithLabelValues("error").Inc()
		return nil, WrapError(ErrorTypeUnavailable, "identity store unavailable", err)
	}

	if err := s.checkHierarchy(principal, target); err != nil {
		observability.ContextSwitches.WithLabelValues("forbidden").Inc()
		return nil, err
	}

	session, err := s.sessionStore.CreateSession(ctx, models.PublicSchema, user.ID)
	if err != nil {
		observability.ContextSwitches.WithLabelValues("error").Inc()
		return nil, err
	}

	accessToken, err := s.tokens.IssueAccessToken(user, &target.ID, target.Schema())
	if err != nil {
		observability.ContextSwitches.WithLabelValues("error").Inc()
		return nil, err
	}

	observability.ContextSwitches.WithLabelValues("success").Inc()
	s.logger.Info("company context switched",
		zap.String("user_id", user.ID.String()),
		zap.String("company_id", target.ID.String()),
		zap.String("schema", target.Schema()),
	)

	return &SwitchResult{
		AccessToken:  accessToken,
		RefreshToken: session.Token,
		User:         user,
		Company:      target,
	}, nil
}

// checkHierarchy enforces who may switch where. Super admins reach any
// non-deleted company. Partner roles only reach companies whose parent is
// the company the principal is currently acting in.
func (s *SwitcherService) checkHierarchy(principal *Claims, target *models.Company) error {
	if principal.Role == models.RoleSuperAdmin {
		return nil
	}

	if principal.CompanyID == "" || target.ParentCompanyID == nil {
		return ErrNotParentCompany
	}
	if target.ParentCompanyID.String() != principal.CompanyID {
		return ErrNotParentCompany
	}
	return nil
}
