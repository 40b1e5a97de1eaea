package user

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-table-reservation/internal/domain/identity"
)

// MinPasswordLength はパスワードの最小文字数
const MinPasswordLength = 8

// User は利用者ディレクトリのエンティティを表す
type User struct {
	ID        string
	Email     string
	Name      string
	Roles     []identity.Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Credentials はパスワードハッシュを保持する
type Credentials struct {
	UserID       string
	PasswordHash string
}

// NewUser は新しいユーザーを作成する
func NewUser(email, name string, roles ...identity.Role) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.NewString(),
		Email:     NormalizeEmail(email),
		Name:      strings.TrimSpace(name),
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NormalizeEmail はメールアドレスを比較用に正規化する
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Identity はユーザーを呼び出し元として表現する
func (u *User) Identity() *identity.Identity {
	return &identity.Identity{UserID: u.ID, Name: u.Name, Roles: u.Roles}
}

// Validate はユーザーの検証を行う
func (u *User) Validate() error {
	if u.Email == "" {
		return ErrEmailRequired
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrInvalidEmail
	}
	if u.Name == "" {
		return ErrNameRequired
	}
	if len(u.Roles) == 0 {
		return ErrRolesRequired
	}
	return nil
}

// ValidatePassword はパスワードの長さを検証する
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
