package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sanosuguru/go-table-reservation/internal/domain/identity"
	"github.com/sanosuguru/go-table-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-table-reservation/internal/domain/user"
	redisinfra "github.com/sanosuguru/go-table-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-table-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-table-reservation/internal/pkg/metrics"
)

// 同一メールアドレスでの同時登録を防ぐロック
const (
	signupLockTTL        = 5 * time.Second
	signupLockRetries    = 3
	signupLockRetryDelay = 50 * time.Millisecond
)

// TokenIssuer は認証トークンを発行する
type TokenIssuer interface {
	Issue(u *user.User) (token string, expiresAt time.Time, err error)
}

// NameCache は表示名のキャッシュ
type NameCache interface {
	GetName(ctx context.Context, userID string) (string, error)
	SetName(ctx context.Context, userID, name string, ttl time.Duration) error
}

type UserService struct {
	txManager   transaction.Manager
	userRepo    user.Repository
	guard       Authorizer
	tokens      TokenIssuer
	lockManager redisinfra.LockManagerInterface
	nameCache   NameCache
	nameTTL     time.Duration
	metrics     *metrics.Metrics
	hashCost    int
}

// NewUserService はユーザーディレクトリのサービスを作成する
// lm, cache, m は nil 可
func NewUserService(
	tm transaction.Manager,
	ur user.Repository,
	guard Authorizer,
	tokens TokenIssuer,
	lm redisinfra.LockManagerInterface,
	cache NameCache,
	nameTTL time.Duration,
	m *metrics.Metrics,
) *UserService {
	return &UserService{
		txManager:   tm,
		userRepo:    ur,
		guard:       guard,
		tokens:      tokens,
		lockManager: lm,
		nameCache:   cache,
		nameTTL:     nameTTL,
		metrics:     m,
		hashCost:    bcrypt.DefaultCost,
	}
}

type SignUpInput struct {
	Email    string
	Name     string
	Password string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *user.User
}

// SignUp はゲストとして利用者を登録する
func (s *UserService) SignUp(ctx context.Context, input SignUpInput) (*user.User, error) {
	return s.signUpWithRoles(ctx, input, identity.RoleGuest)
}

// SignUpEmployee は従業員を登録する（管理者のみ）
func (s *UserService) SignUpEmployee(ctx context.Context, caller *identity.Identity, input SignUpInput) (*user.User, error) {
	if err := s.guard.Permit(caller, AnyOf(identity.RoleAdmin), ""); err != nil {
		return nil, err
	}
	u, err := s.signUpWithRoles(ctx, input, identity.RoleEmployee)
	if err != nil {
		return nil, err
	}
	logger.Info("従業員を登録しました", zap.String("user_id", u.ID), zap.String("created_by", caller.UserID))
	return u, nil
}

func (s *UserService) signUpWithRoles(ctx context.Context, input SignUpInput, roles ...identity.Role) (*user.User, error) {
	if err := user.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	u := user.NewUser(input.Email, input.Name, roles...)
	if err := u.Validate(); err != nil {
		return nil, err
	}

	if s.lockManager != nil {
		start := time.Now()
		lock, err := s.lockManager.AcquireLockWithRetry(ctx, "signup:"+u.Email, signupLockTTL, signupLockRetries, signupLockRetryDelay)
		s.metrics.ObserveLock("acquire", start, err)
		if err != nil {
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				return nil, user.ErrEmailAlreadyExists
			}
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		defer func() {
			start := time.Now()
			err := lock.Release(ctx)
			s.metrics.ObserveLock("release", start, err)
		}()
	}

	if _, err := s.userRepo.GetByEmail(ctx, u.Email); err == nil {
		return nil, user.ErrEmailAlreadyExists
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return nil, fmt.Errorf("ユーザー確認に失敗: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗: %w", err)
	}
	creds := &user.Credentials{UserID: u.ID, PasswordHash: string(hash)}

	err = transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		return s.userRepo.Create(ctx, tx, u, creds)
	})
	if err != nil {
		return nil, err
	}

	s.cacheName(ctx, u.ID, u.Name)
	logger.Info("ユーザーを登録しました", zap.String("user_id", u.ID), zap.Strings("roles", u.Identity().RoleStrings()))
	return u, nil
}

// Login は資格情報を検証してトークンを発行する
// メールアドレス不明とパスワード不一致は区別しない
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	res, err := s.login(ctx, email, password)
	s.metrics.RecordLogin(err == nil)
	return res, err
}

func (s *UserService) login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.userRepo.GetByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrInvalidCredentials
		}
		return nil, err
	}
	creds, err := s.userRepo.GetCredentials(ctx, u.ID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		return nil, user.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(u)
	if err != nil {
		return nil, fmt.Errorf("トークン発行に失敗: %w", err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

// Me は呼び出し元自身のユーザー情報を返す
func (s *UserService) Me(ctx context.Context, caller *identity.Identity) (*user.User, error) {
	if err := s.guard.Permit(caller, Authenticated(), ""); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, caller.UserID)
}

// DisplayName はユーザーIDから表示名を解決する
// 見つからない場合は空文字を返し、エラーにはしない
func (s *UserService) DisplayName(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", nil
	}
	if s.nameCache != nil {
		if name, err := s.nameCache.GetName(ctx, userID); err == nil {
			return name, nil
		}
	}
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", nil
		}
		return "", err
	}
	s.cacheName(ctx, u.ID, u.Name)
	return u.Name, nil
}

// DisplayNames は複数ユーザーの表示名をまとめて解決する
func (s *UserService) DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		if _, ok := names[id]; ok {
			continue
		}
		name, err := s.DisplayName(ctx, id)
		if err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, nil
}

func (s *UserService) cacheName(ctx context.Context, userID, name string) {
	if s.nameCache == nil {
		return
	}
	if err := s.nameCache.SetName(ctx, userID, name, s.nameTTL); err != nil {
		logger.Warn("表示名のキャッシュ保存に失敗", zap.String("user_id", userID), zap.Error(err))
	}
}
