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

// SessionMatch is the result of resolving a refresh token across schemas.
type SessionMatch struct {
	Schema  string
	Session *models.RefreshSession
	User    *models.User
}

// UserMatch is the result of resolving a user id across schemas.
type UserMatch struct {
	Schema string
	User   *models.User
}

// ResolverService locates a record without knowing its tenant up front.
// It checks the public schema first, then every active tenant schema in
// directory order. A failing tenant is logged and skipped so one broken
// schema cannot block the others.
type ResolverService struct {
	directory *DirectoryService
	users     repositories.UserRepository
	sessions  repositories.SessionRepository
	index     repositories.SessionIndexRepository
	logger    *zap.Logger
}

// NewResolverService creates a new resolver service
func NewResolverService(
	directory *DirectoryService,
	users repositories.UserRepository,
	sessions repositories.SessionRepository,
	index repositories.SessionIndexRepository,
	logger *zap.Logger,
) *ResolverService {
	return &ResolverService{
		directory: directory,
		users:     users,
		sessions:  sessions,
		index:     index,
		logger:    logger,
	}
}

// ResolveSession finds the valid refresh session matching the raw token,
// consulting the session index before falling back to the schema scan.
// Returns ErrSessionNotFound when no schema holds a match.
func (s *ResolverService) ResolveSession(ctx context.Context, token string) (*SessionMatch, error) {
	if match := s.resolveSessionFromIndex(ctx, token); match != nil {
		return match, nil
	}

	schemas, err := s.scanOrder(ctx)
	if err != nil {
		return nil, err
	}

	for _, schema := range schemas {
		session, user, err := s.sessions.FindValidByToken(ctx, schema, token)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			s.skipSchema(schema, "session scan failed", err)
			continue
		}
		return &SessionMatch{Schema: schema, Session: session, User: user}, nil
	}

	return nil, ErrSessionNotFound
}

// resolveSessionFromIndex tries the token-hash index. Any miss, stale
// entry or failure returns nil and the caller falls back to the scan.
func (s *ResolverService) resolveSessionFromIndex(ctx context.Context, token string) *SessionMatch {
	schema, err := s.index.Lookup(ctx, HashRefreshToken(token))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			observability.SessionIndexLookups.WithLabelValues("miss").Inc()
		} else {
			observability.SessionIndexLookups.WithLabelValues("error").Inc()
			s.logger.Warn("session index lookup failed", zap.Error(err))
		}
		return nil
	}

	known, err := s.directory.KnownSchema(ctx, schema)
	if err != nil || !known {
		observability.SessionIndexLookups.WithLabelValues("stale").Inc()
		return nil
	}

	session, user, err := s.sessions.FindValidByToken(ctx, schema, token)
	if err != nil {
		observability.SessionIndexLookups.WithLabelValues("stale").Inc()
		if !errors.Is(err, repositories.ErrNotFound) {
			s.logger.Warn("session index pointed at failing schema",
				zap.String("schema", schema),
				zap.Error(err),
			)
		}
		return nil
	}

	observability.SessionIndexLookups.WithLabelValues("hit").Inc()
	return &SessionMatch{Schema: schema, Session: session, User: user}
}

// ResolveUser finds the user by id across schemas. Returns ErrUserNotFound
// when no schema holds a match.
func (s *ResolverService) ResolveUser(ctx context.Context, userID uuid.UUID) (*UserMatch, error) {
	schemas, err := s.scanOrder(ctx)
	if err != nil {
		return nil, err
	}

	for _, schema := range schemas {
		user, err := s.users.GetByID(ctx, schema, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			s.skipSchema(schema, "user scan failed", err)
			continue
		}
		return &UserMatch{Schema: schema, User: user}, nil
	}

	return nil, ErrUserNotFound
}

// scanOrder returns the schemas to visit: public first, then active
// tenants in ascending company-id order.
func (s *ResolverService) scanOrder(ctx context.Context) ([]string, error) {
	tenantSchemas, err := s.directory.ActiveSchemas(ctx)
	if err != nil {
		return nil, err
	}

	schemas := make([]string, 0, len(tenantSchemas)+1)
	schemas = append(schemas, models.PublicSchema)
	schemas = append(schemas, tenantSchemas...)
	return schemas, nil
}

func (s *ResolverService) skipSchema(schema, msg string, err error) {
	observability.TenantScanFailures.WithLabelValues(schema).Inc()
	s.logger.Warn(msg,
		zap.String("schema", schema),
		zap.Error(err),
	)
}
