package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-table-reservation/internal/domain/identity"
	"github.com/sanosuguru/go-table-reservation/internal/pkg/logger"
)

const identityKey = "identity"

// TokenVerifier はベアラートークンから呼び出し元を復元する
type TokenVerifier interface {
	Verify(token string) (*identity.Identity, error)
}

// Authenticate は Authorization ヘッダーを検証して呼び出し元をコンテキストに格納する
// ヘッダーがない場合は匿名のまま通し、認可判定はサービス層に任せる
func Authenticate(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}
			token, ok := bearerToken(header)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization ヘッダーの形式が不正です")
			}
			id, err := verifier.Verify(token)
			if err != nil {
				if !errors.Is(err, identity.ErrUnauthenticated) {
					logger.Error("トークン検証に失敗", zap.Error(err))
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "認証に失敗しました")
			}
			SetIdentity(c, id)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// SetIdentity は検証済みの呼び出し元をコンテキストに格納する
func SetIdentity(c echo.Context, id *identity.Identity) {
	c.Set(identityKey, id)
}

// CurrentIdentity はコンテキストの呼び出し元を返す（匿名なら nil）
func CurrentIdentity(c echo.Context) *identity.Identity {
	id, _ := c.Get(identityKey).(*identity.Identity)
	return id
}
