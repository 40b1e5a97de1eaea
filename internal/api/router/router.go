package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanosuguru/go-table-reservation/internal/api"
	"github.com/sanosuguru/go-table-reservation/internal/api/handler"
	"github.com/sanosuguru/go-table-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-table-reservation/internal/config"
	"github.com/sanosuguru/go-table-reservation/internal/pkg/metrics"
)

// Deps はルーティングに必要な依存
type Deps struct {
	Reservations handler.ReservationServiceInterface
	Users        handler.UserServiceInterface
	Names        handler.NameResolver
	Verifier     middleware.TokenVerifier
	Metrics      *metrics.Metrics
	// MetricsAuth が nil なら /metrics を公開しない
	MetricsAuth *config.MetricsConfig
	RateLimit   config.RateLimitConfig
	Health      map[string]handler.Pinger
}

// New はミドルウェアとルートを設定した Echo を返す
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler

	middleware.SetupMiddleware(e, d.Verifier, d.Metrics)

	health := handler.NewHealthHandler(d.Health)
	e.GET("/health", health.Check)
	e.GET("/health/ready", health.Ready)

	if d.MetricsAuth != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(d.MetricsAuth))
	}

	v1 := e.Group("/api/v1")

	users := handler.NewUserHandler(d.Users)
	limiter := middleware.NewIPRateLimiter(&d.RateLimit)
	v1.POST("/users/signup", users.SignUp, limiter.Middleware())
	v1.POST("/users/login", users.Login, limiter.Middleware())
	v1.POST("/users/employees", users.SignUpEmployee)
	v1.GET("/users/me", users.Me)

	reservations := handler.NewReservationHandler(d.Reservations, d.Names)
	v1.POST("/reservations", reservations.Create)
	v1.GET("/reservations", reservations.List)
	v1.GET("/reservations/:id", reservations.GetByID)
	v1.PUT("/reservations/:id", reservations.Update)
	v1.POST("/reservations/:id/cancel", reservations.Cancel)
	v1.POST("/reservations/:id/complete", reservations.Complete)

	return e
}
