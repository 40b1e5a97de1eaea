package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-table-reservation/internal/application"
	"github.com/sanosuguru/go-table-reservation/internal/domain/identity"
	"github.com/sanosuguru/go-table-reservation/internal/domain/user"
)

// MockUserService はUserServiceInterfaceのモック
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) user(args mock.Arguments) (*user.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) SignUp(ctx context.Context, input application.SignUpInput) (*user.User, error) {
	return m.user(m.Called(ctx, input))
}

func (m *MockUserService) SignUpEmployee(ctx context.Context, caller *identity.Identity, input application.SignUpInput) (*user.User, error) {
	return m.user(m.Called(ctx, caller, input))
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (*application.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.LoginResult), args.Error(1)
}

func (m *MockUserService) Me(ctx context.Context, caller *identity.Identity) (*user.User, error) {
	return m.user(m.Called(ctx, caller))
}

var testAdmin = &identity.Identity{UserID: "admin-1", Roles: []identity.Role{identity.RoleAdmin}}

func TestUserHandler_SignUp(t *testing.T) {
	e := NewTestEcho()

	t.Run("ゲストとして登録できる", func(t *testing.T) {
		svc := new(MockUserService)
		u := user.NewUser("guest@example.com", "山田太郎", identity.RoleGuest)
		svc.On("SignUp", mock.Anything, application.SignUpInput{Email: "guest@example.com", Name: "山田太郎", Password: "password123"}).Return(u, nil)

		h := NewUserHandler(svc)
		c, rec := newContext(e, http.MethodPost, "/users/signup", `{"email":"guest@example.com","name":"山田太郎","password":"password123"}`, nil)

		require.NoError(t, h.SignUp(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp UserResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, u.ID, resp.ID)
		assert.Equal(t, []string{"guest"}, resp.Roles)
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("入力不正は400", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"メール形式", `{"email":"invalid","name":"A","password":"password123"}`},
			{"名前なし", `{"email":"a@example.com","password":"password123"}`},
			{"パスワードが短い", `{"email":"a@example.com","name":"A","password":"short"}`},
			{"JSON不正", `{`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				h := NewUserHandler(new(MockUserService))
				c, _ := newContext(e, http.MethodPost, "/users/signup", tt.body, nil)

				assertHTTPError(t, h.SignUp(c), http.StatusBadRequest)
			})
		}
	})

	t.Run("メールアドレス重複は409", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("SignUp", mock.Anything, mock.Anything).Return(nil, user.ErrEmailAlreadyExists)

		h := NewUserHandler(svc)
		c, _ := newContext(e, http.MethodPost, "/users/signup", `{"email":"dup@example.com","name":"A","password":"password123"}`, nil)

		assertHTTPError(t, h.SignUp(c), http.StatusConflict)
	})
}

func TestUserHandler_SignUpEmployee(t *testing.T) {
	e := NewTestEcho()
	body := `{"email":"staff@example.com","name":"佐藤","password":"password123"}`

	t.Run("管理者は従業員を登録できる", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("SignUpEmployee", mock.Anything, testAdmin, mock.Anything).
			Return(user.NewUser("staff@example.com", "佐藤", identity.RoleEmployee), nil)

		h := NewUserHandler(svc)
		c, rec := newContext(e, http.MethodPost, "/users/employees", body, testAdmin)

		require.NoError(t, h.SignUpEmployee(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"roles":["employee"]`)
	})

	t.Run("管理者以外は403", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("SignUpEmployee", mock.Anything, testGuest, mock.Anything).Return(nil, identity.ErrForbidden)

		h := NewUserHandler(svc)
		c, _ := newContext(e, http.MethodPost, "/users/employees", body, testGuest)

		assertHTTPError(t, h.SignUpEmployee(c), http.StatusForbidden)
	})
}

func TestUserHandler_Login(t *testing.T) {
	e := NewTestEcho()

	t.Run("トークンを返す", func(t *testing.T) {
		svc := new(MockUserService)
		expiresAt := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
		svc.On("Login", mock.Anything, "guest@example.com", "password123").Return(&application.LoginResult{
			Token:     "jwt-token",
			ExpiresAt: expiresAt,
			User:      user.NewUser("guest@example.com", "山田太郎", identity.RoleGuest),
		}, nil)

		h := NewUserHandler(svc)
		c, rec := newContext(e, http.MethodPost, "/users/login", `{"email":"guest@example.com","password":"password123"}`, nil)

		require.NoError(t, h.Login(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "jwt-token", resp.Token)
		assert.True(t, expiresAt.Equal(resp.ExpiresAt))
		assert.Equal(t, "guest@example.com", resp.User.Email)
	})

	t.Run("資格情報不一致は401", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("Login", mock.Anything, "guest@example.com", "wrong").Return(nil, user.ErrInvalidCredentials)

		h := NewUserHandler(svc)
		c, _ := newContext(e, http.MethodPost, "/users/login", `{"email":"guest@example.com","password":"wrong"}`, nil)

		assertHTTPError(t, h.Login(c), http.StatusUnauthorized)
	})

	t.Run("パスワードなしは400", func(t *testing.T) {
		h := NewUserHandler(new(MockUserService))
		c, _ := newContext(e, http.MethodPost, "/users/login", `{"email":"guest@example.com"}`, nil)

		assertHTTPError(t, h.Login(c), http.StatusBadRequest)
	})
}

func TestUserHandler_Me(t *testing.T) {
	e := NewTestEcho()

	t.Run("自分の情報を返す", func(t *testing.T) {
		svc := new(MockUserService)
		u := &user.User{ID: testGuest.UserID, Email: "guest@example.com", Name: "山田太郎", Roles: testGuest.Roles}
		svc.On("Me", mock.Anything, testGuest).Return(u, nil)

		h := NewUserHandler(svc)
		c, rec := newContext(e, http.MethodGet, "/users/me", "", testGuest)

		require.NoError(t, h.Me(c))
		assert.Contains(t, rec.Body.String(), `"id":"guest-1"`)
	})

	t.Run("匿名は401", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("Me", mock.Anything, (*identity.Identity)(nil)).Return(nil, identity.ErrUnauthenticated)

		h := NewUserHandler(svc)
		c, _ := newContext(e, http.MethodGet, "/users/me", "", nil)

		assertHTTPError(t, h.Me(c), http.StatusUnauthorized)
	})
}
