package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/upb/identity-core/models"
	"github.com/upb/identity-core/repositories"
)

// MockCompanyRepository is a mock implementation of repositories.CompanyRepository
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) Create(ctx context.Context, company *models.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *MockCompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	args := m.Called(ctx, id)
	if company := args.Get(0); company != nil {
		return company.(*models.Company), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCompanyRepository) ListActive(ctx context.Context) ([]*models.Company, error) {
	args := m.Called(ctx)
	if companies := args.Get(0); companies != nil {
		return companies.([]*models.Company), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, schema string, user *models.User) error {
	args := m.Called(ctx, schema, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, schema string, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, schema, id)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, schema string, email string) (*models.User, error) {
	args := m.Called(ctx, schema, email)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) SetTwoFactorSecret(ctx context.Context, schema string, id uuid.UUID, secret string) error {
	args := m.Called(ctx, schema, id, secret)
	return args.Error(0)
}

// MockSessionRepository is a mock implementation of repositories.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) FindValidByToken(ctx context.Context, schema string, token string) (*models.RefreshSession, *models.User, error) {
	args := m.Called(ctx, schema, token)
	var session *models.RefreshSession
	var user *models.User
	if s := args.Get(0); s != nil {
		session = s.(*models.RefreshSession)
	}
	if u := args.Get(1); u != nil {
		user = u.(*models.User)
	}
	return session, user, args.Error(2)
}

func (m *MockSessionRepository) Create(ctx context.Context, schema string, session *models.RefreshSession) error {
	args := m.Called(ctx, schema, session)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteAllForUser(ctx context.Context, schema string, userID uuid.UUID) error {
	args := m.Called(ctx, schema, userID)
	return args.Error(0)
}

// MockSessionIndexRepository is a mock implementation of repositories.SessionIndexRepository
type MockSessionIndexRepository struct {
	mock.Mock
}

func (m *MockSessionIndexRepository) Upsert(ctx context.Context, tokenHash string, userID uuid.UUID, schema string) error {
	args := m.Called(ctx, tokenHash, userID, schema)
	return args.Error(0)
}

func (m *MockSessionIndexRepository) Lookup(ctx context.Context, tokenHash string) (string, error) {
	args := m.Called(ctx, tokenHash)
	return args.String(0), args.Error(1)
}

func (m *MockSessionIndexRepository) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// fakeTransaction is a no-op transaction for exercising transactional flows
type fakeTransaction struct {
	ctx context.Context
}

func (t *fakeTransaction) Commit() error            { return nil }
func (t *fakeTransaction) Rollback() error          { return nil }
func (t *fakeTransaction) Context() context.Context { return t.ctx }

// fakeTxManager runs the transactional function directly, recording
// commit/rollback outcomes.
type fakeTxManager struct {
	beginErr   error
	committed  bool
	rolledBack bool
}

func (m *fakeTxManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	return &fakeTransaction{ctx: ctx}, nil
}

func (m *fakeTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	tx, err := m.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(ctx, tx); err != nil {
		m.rolledBack = true
		return err
	}
	m.committed = true
	return nil
}
