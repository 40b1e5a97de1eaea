package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-table-reservation/internal/domain/identity"
	"github.com/sanosuguru/go-table-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-table-reservation/internal/domain/user"
)

// uniqueViolation は PostgreSQL の一意制約違反コード
const uniqueViolation = "23505"

type userRow struct {
	ID        string         `db:"id"`
	Email     string         `db:"email"`
	Name      string         `db:"name"`
	Roles     pq.StringArray `db:"roles"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

type UserRepository struct{ db *sqlx.DB }

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, tx transaction.Tx, u *user.User, c *user.Credentials) error {
	sqlTx := UnwrapTx(tx)
	if sqlTx == nil {
		return fmt.Errorf("ユーザー作成には sqlx のトランザクションが必要です")
	}
	_, err := sqlTx.ExecContext(ctx,
		`INSERT INTO users (id, email, name, roles, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, u.Name, pq.Array(u.Identity().RoleStrings()), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.ErrEmailAlreadyExists
		}
		return fmt.Errorf("ユーザー作成に失敗: %w", err)
	}
	if _, err := sqlTx.ExecContext(ctx,
		`INSERT INTO user_credentials (user_id, password_hash) VALUES ($1, $2)`,
		c.UserID, c.PasswordHash); err != nil {
		return fmt.Errorf("資格情報作成に失敗: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	if !isUUID(id) {
		return nil, user.ErrUserNotFound
	}
	return r.getOne(ctx, `SELECT id, email, name, roles, created_at, updated_at FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getOne(ctx, `SELECT id, email, name, roles, created_at, updated_at FROM users WHERE email = $1`, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg interface{}) (*user.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("ユーザー取得に失敗: %w", err)
	}
	return &user.User{
		ID: row.ID, Email: row.Email, Name: row.Name,
		Roles:     identity.ParseRoles(row.Roles),
		CreatedAt: row.CreatedAt.UTC(), UpdatedAt: row.UpdatedAt.UTC(),
	}, nil
}

func (r *UserRepository) GetCredentials(ctx context.Context, userID string) (*user.Credentials, error) {
	if !isUUID(userID) {
		return nil, user.ErrUserNotFound
	}
	var c struct {
		UserID       string `db:"user_id"`
		PasswordHash string `db:"password_hash"`
	}
	if err := r.db.GetContext(ctx, &c, `SELECT user_id, password_hash FROM user_credentials WHERE user_id = $1`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("資格情報取得に失敗: %w", err)
	}
	return &user.Credentials{UserID: c.UserID, PasswordHash: c.PasswordHash}, nil
}

var _ user.Repository = (*UserRepository)(nil)
