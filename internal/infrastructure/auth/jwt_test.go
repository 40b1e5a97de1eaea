package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-table-reservation/internal/config"
	"github.com/sanosuguru/go-table-reservation/internal/domain/identity"
	"github.com/sanosuguru/go-table-reservation/internal/domain/user"
)

func newTestService() *TokenService {
	return NewTokenService(&config.AuthConfig{JWTSecret: "test-secret", Issuer: "test", TokenTTL: time.Hour})
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	s := newTestService()
	u := user.NewUser("staff@example.com", "佐藤", identity.RoleGuest, identity.RoleEmployee)

	token, expiresAt, err := s.Issue(u)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	id, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, "佐藤", id.Name)
	assert.True(t, id.IsEmployee())
	assert.True(t, id.HasRole(identity.RoleGuest))
}

func TestTokenService_Verify_Errors(t *testing.T) {
	s := newTestService()
	u := user.NewUser("guest@example.com", "ゲスト", identity.RoleGuest)
	valid, _, err := s.Issue(u)
	require.NoError(t, err)

	otherSecret := NewTokenService(&config.AuthConfig{JWTSecret: "other", Issuer: "test", TokenTTL: time.Hour})
	forged, _, _ := otherSecret.Issue(u)

	otherIssuer := NewTokenService(&config.AuthConfig{JWTSecret: "test-secret", Issuer: "someone-else", TokenTTL: time.Hour})
	wrongIssuer, _, _ := otherIssuer.Issue(u)

	expiredSvc := newTestService()
	expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, _ := expiredSvc.Issue(u)

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: u.ID}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
	}{
		{"空文字", ""},
		{"形式不正", "not-a-token"},
		{"署名鍵が異なる", forged},
		{"発行者が異なる", wrongIssuer},
		{"有効期限切れ", expired},
		{"署名なし", none},
		{"改ざん", valid + "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := s.Verify(tt.token)
			assert.Nil(t, id)
			assert.ErrorIs(t, err, identity.ErrUnauthenticated)
		})
	}
}
