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

var userRowColumns = []string{
	"id", "email", "first_name", "last_name", "role", "company_id",
	"two_factor_secret", "two_factor_enabled", "created_at", "updated_at", "deleted_at",
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())

	user := models.NewUser("jane@example.com", "Jane", "Doe", models.RoleMember, nil)

	// Queries against a tenant are qualified with the quoted schema name
	mock.ExpectExec(`INSERT INTO "tenant_acme"\.users`).
		WithArgs(user.ID, user.Email, user.FirstName, user.LastName, user.Role,
			user.CompanyID, user.TwoFactorEnabled, user.CreatedAt, user.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), "tenant_acme", user)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())

		id := uuid.New()
		companyID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM "public"\.users WHERE id = (.+) AND deleted_at IS NULL`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(id, "jane@example.com", "Jane", "Doe", "partner_admin",
					companyID, "SECRET", true, now, now, nil))

		user, err := repo.GetByID(context.Background(), "public", id)

		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, models.RolePartnerAdmin, user.Role)
		require.NotNil(t, user.CompanyID)
		assert.Equal(t, companyID, *user.CompanyID)
		require.NotNil(t, user.TwoFactorSecret)
		assert.Equal(t, "SECRET", *user.TwoFactorSecret)
		assert.True(t, user.TwoFactorEnabled)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())

		id := uuid.New()
		mock.ExpectQuery(`SELECT (.+) FROM "public"\.users`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(userRowColumns))

		_, err := repo.GetByID(context.Background(), "public", id)

		require.Error(t, err)
		assert.True(t, errors.Is(err, repositories.ErrNotFound))
	})
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())

	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM "tenant_acme"\.users WHERE email = (.+) AND deleted_at IS NULL`).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(id, "jane@example.com", "Jane", "Doe", "member",
				nil, nil, false, now, now, nil))

	user, err := repo.GetByEmail(context.Background(), "tenant_acme", "jane@example.com")

	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Nil(t, user.CompanyID)
	assert.Nil(t, user.TwoFactorSecret)
}

func TestUserRepository_SetTwoFactorSecret(t *testing.T) {
	t.Run("updates pending secret", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())

		id := uuid.New()
		mock.ExpectExec(`UPDATE "tenant_acme"\.users SET two_factor_secret = (.+) two_factor_enabled = false`).
			WithArgs(id, "NEWSECRET", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SetTwoFactorSecret(context.Background(), "tenant_acme", id, "NEWSECRET")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("user missing or deleted", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())

		id := uuid.New()
		mock.ExpectExec(`UPDATE "public"\.users`).
			WithArgs(id, "NEWSECRET", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SetTwoFactorSecret(context.Background(), "public", id, "NEWSECRET")

		require.Error(t, err)
		assert.True(t, errors.Is(err, repositories.ErrNotFound))
	})
}
