package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sanosuguru/go-table-reservation/internal/pkg/metrics"
)

// SetupMiddleware は共通ミドルウェアを設定する
// verifier が nil の場合は認証ミドルウェアを登録しない
func SetupMiddleware(e *echo.Echo, verifier TokenVerifier, m *metrics.Metrics) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.PUT, echo.PATCH, echo.POST, echo.DELETE},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	if m != nil {
		e.Use(PrometheusMiddleware(m))
	}
	if verifier != nil {
		e.Use(Authenticate(verifier))
	}

	// 構造化リクエストログ（zap）
	e.Use(RequestLogger())
}
