package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-table-reservation/internal/domain/identity"
	"github.com/sanosuguru/go-table-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-table-reservation/internal/domain/user"
)

func createUser(t *testing.T, tm *TxManager, repo *UserRepository, u *user.User) error {
	t.Helper()
	return transaction.Run(context.Background(), tm, func(tx transaction.Tx) error {
		return repo.Create(context.Background(), tx, u, &user.Credentials{UserID: u.ID, PasswordHash: "hash"})
	})
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	tm := NewTxManager(db)
	ctx := context.Background()

	u := user.NewUser("Taro@Example.com", "山田太郎", identity.RoleGuest, identity.RoleEmployee)
	require.NoError(t, createUser(t, tm, repo, u))

	got, err := repo.GetByEmail(ctx, "taro@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "山田太郎", got.Name)
	assert.ElementsMatch(t, []identity.Role{identity.RoleGuest, identity.RoleEmployee}, got.Roles)

	creds, err := repo.GetCredentials(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", creds.PasswordHash)

	_, err = repo.GetByID(ctx, "44444444-4444-4444-4444-444444444444")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	tm := NewTxManager(db)

	require.NoError(t, createUser(t, tm, repo, user.NewUser("dup@example.com", "A", identity.RoleGuest)))
	err := createUser(t, tm, repo, user.NewUser("dup@example.com", "B", identity.RoleGuest))
	assert.ErrorIs(t, err, user.ErrEmailAlreadyExists)
}

func TestUserRepository_CreateWithoutSQLTx(t *testing.T) {
	repo := NewUserRepository(nil)
	err := repo.Create(context.Background(), nil, user.NewUser("a@example.com", "A", identity.RoleGuest), &user.Credentials{})
	assert.Error(t, err)
}
