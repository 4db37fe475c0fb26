package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/identity-core/models"
	"github.com/upb/identity-core/repositories"
	"go.uber.org/zap"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return &DB{DB: mockDB, logger: zap.NewNop()}, mock
}

var companyColumns = []string{
	"id", "name", "schema_name", "schema_status", "parent_company_id",
	"created_at", "updated_at", "deleted_at",
}

func TestCompanyRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCompanyRepository(db, zap.NewNop())

	schema := "tenant_acme"
	company := models.NewCompany("Acme", &schema, nil)

	mock.ExpectExec("INSERT INTO companies").
		WithArgs(company.ID, company.Name, company.SchemaName, company.SchemaStatus,
			company.ParentCompanyID, company.CreatedAt, company.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), company)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyRepository_GetByID(t *testing.T) {
	t.Run("found with soft delete marker", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCompanyRepository(db, zap.NewNop())

		id := uuid.New()
		parentID := uuid.New()
		now := time.Now()
		deleted := now.Add(time.Hour)

		mock.ExpectQuery("SELECT (.+) FROM companies").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(companyColumns).
				AddRow(id, "Acme", "tenant_acme", "active", parentID, now, now, deleted))

		company, err := repo.GetByID(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, id, company.ID)
		require.NotNil(t, company.SchemaName)
		assert.Equal(t, "tenant_acme", *company.SchemaName)
		require.NotNil(t, company.ParentCompanyID)
		assert.Equal(t, parentID, *company.ParentCompanyID)
		// Soft-deleted rows come back so callers can tell deleted from missing
		assert.True(t, company.IsDeleted())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCompanyRepository(db, zap.NewNop())

		id := uuid.New()
		mock.ExpectQuery("SELECT (.+) FROM companies").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(companyColumns))

		_, err := repo.GetByID(context.Background(), id)

		require.Error(t, err)
		assert.True(t, errors.Is(err, repositories.ErrNotFound))
	})
}

func TestCompanyRepository_ListActive(t *testing.T) {
	t.Run("filters on active status", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCompanyRepository(db, zap.NewNop())

		now := time.Now()
		firstID := uuid.New()
		secondID := uuid.New()

		mock.ExpectQuery("SELECT (.+) FROM companies WHERE schema_status = (.+) ORDER BY id ASC").
			WithArgs(models.SchemaStatusActive).
			WillReturnRows(sqlmock.NewRows(companyColumns).
				AddRow(firstID, "Acme", "tenant_acme", "active", nil, now, now, nil).
				AddRow(secondID, "HQ", nil, "active", nil, now, now, nil))

		companies, err := repo.ListActive(context.Background())

		require.NoError(t, err)
		require.Len(t, companies, 2)
		assert.Equal(t, firstID, companies[0].ID)
		assert.Nil(t, companies[1].SchemaName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCompanyRepository(db, zap.NewNop())

		mock.ExpectQuery("SELECT (.+) FROM companies").
			WillReturnError(errors.New("connection reset"))

		_, err := repo.ListActive(context.Background())

		assert.Error(t, err)
	})
}
