package user

import (
	"context"

	"github.com/sanosuguru/go-table-reservation/internal/domain/transaction"
)

// Repository はユーザーリポジトリのインターフェース
type Repository interface {
	// Create はユーザーと資格情報を保存する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, u *User, c *Credentials) error

	// GetByID はIDからユーザーを取得する
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail はメールアドレスからユーザーを取得する
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetCredentials はユーザーの資格情報を取得する
	GetCredentials(ctx context.Context, userID string) (*Credentials, error)
}
