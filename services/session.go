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

// AuthPayload is the token pair returned by the refresh flow together
// with the user it belongs to.
type AuthPayload struct {
	AccessToken  string
	RefreshToken string
	Schema       string
	User         *models.User
}

// SessionService is the session store: it validates refresh tokens and
// maintains the one-active-session-per-user invariant together with the
// session index.
type SessionService struct {
	resolver *ResolverService
	tokens   *TokenService
	sessions repositories.SessionRepository
	index    repositories.SessionIndexRepository
	txMgr    repositories.TransactionManager
	logger   *zap.Logger
}

// NewSessionService creates a new session service
func NewSessionService(
	resolver *ResolverService,
	tokens *TokenService,
	sessions repositories.SessionRepository,
	index repositories.SessionIndexRepository,
	txMgr repositories.TransactionManager,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		resolver: resolver,
		tokens:   tokens,
		sessions: sessions,
		index:    index,
		txMgr:    txMgr,
		logger:   logger,
	}
}

// ValidateRefresh resolves a refresh token to its session and user. Any
// failure to match, including expired and revoked sessions, comes back as
// ErrInvalidRefreshToken so clients cannot probe for the difference.
func (s *SessionService) ValidateRefresh(ctx context.Context, token string) (*SessionMatch, error) {
	if token == "" {
		observability.RefreshValidations.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidRefreshToken
	}

	match, err := s.resolver.ResolveSession(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			observability.RefreshValidations.WithLabelValues("invalid").Inc()
			return nil, ErrInvalidRefreshToken
		}
		observability.RefreshValidations.WithLabelValues("error").Inc()
		return nil, err
	}

	observability.RefreshValidations.WithLabelValues("success").Inc()
	return match, nil
}

// Refresh validates the refresh token and issues a fresh access token for
// the user in their current context. The refresh token itself is returned
// unchanged; refresh tokens are reusable until they expire or the user
// switches context.
func (s *SessionService) Refresh(ctx context.Context, token string) (*AuthPayload, error) {
	match, err := s.ValidateRefresh(ctx, token)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.tokens.IssueAccessToken(match.User, match.User.CompanyID, match.Schema)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("access token refreshed",
		zap.String("user_id", match.User.ID.String()),
		zap.String("schema", match.Schema),
	)

	return &AuthPayload{
		AccessToken:  accessToken,
		RefreshToken: match.Session.Token,
		Schema:       match.Schema,
		User:         match.User,
	}, nil
}

// CreateSession replaces the user's sessions in the given schema with a
// single new one and records it in the session index, all in one
// transaction. Invalidation and insertion share the transaction so a
// context switch never leaves two live sessions behind.
func (s *SessionService) CreateSession(ctx context.Context, schema string, userID uuid.UUID) (*models.RefreshSession, error) {
	session, err := s.tokens.NewRefreshSession(userID)
	if err != nil {
		return nil, err
	}

	err = WithTransaction(ctx, s.txMgr, func(txCtx context.Context) error {
		if err := s.invalidateAll(txCtx, schema, userID); err != nil {
			return err
		}
		if err := s.sessions.Create(txCtx, schema, session); err != nil {
			return err
		}
		return s.index.Upsert(txCtx, HashRefreshToken(session.Token), session.UserID, schema)
	})
	if err != nil {
		return nil, WrapInternal("failed to create session", err)
	}

	return session, nil
}

// invalidateAll deletes the user's sessions and index entries. Callers
// supply the transactional context.
func (s *SessionService) invalidateAll(ctx context.Context, schema string, userID uuid.UUID) error {
	if err := s.sessions.DeleteAllForUser(ctx, schema, userID); err != nil {
		return err
	}
	return s.index.DeleteForUser(ctx, userID)
}

// InvalidateAllSessions removes every session the user holds in the given
// schema along with the index entries.
func (s *SessionService) InvalidateAllSessions(ctx context.Context, schema string, userID uuid.UUID) error {
	err := WithTransaction(ctx, s.txMgr, func(txCtx context.Context) error {
		return s.invalidateAll(txCtx, schema, userID)
	})
	if err != nil {
		return WrapInternal("failed to invalidate sessions", err)
	}

	s.logger.Info("all sessions invalidated",
		zap.String("user_id", userID.String()),
		zap.String("schema", schema),
	)
	return nil
}
