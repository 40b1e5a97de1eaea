package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-table-reservation/internal/api/handler"
	"github.com/sanosuguru/go-table-reservation/internal/api/router"
	"github.com/sanosuguru/go-table-reservation/internal/application"
	"github.com/sanosuguru/go-table-reservation/internal/config"
	"github.com/sanosuguru/go-table-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-table-reservation/internal/infrastructure/auth"
	"github.com/sanosuguru/go-table-reservation/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-table-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-table-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-table-reservation/internal/pkg/metrics"
	"github.com/sanosuguru/go-table-reservation/internal/worker"
)

const defaultJWTSecret = "change-me-in-production"

func main() {
	// .env は任意（本番では環境変数を直接設定する）
	envErr := godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.Env)
	defer logger.Sync()

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn(".env の読み込みに失敗", zap.Error(envErr))
	}
	if cfg.IsProduction() && cfg.Auth.JWTSecret == defaultJWTSecret {
		logger.Fatal("本番環境では JWT_SECRET を設定してください")
	}

	m := metrics.Init()

	// PostgreSQL
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗", zap.Error(err))
	}
	defer db.Close()
	if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("マイグレーションに失敗", zap.Error(err))
	}
	healthDeps := map[string]handler.Pinger{
		"postgres": func(ctx context.Context) error { return postgres.Ping(ctx, db) },
	}

	// Redis は任意。接続できない場合はロックとキャッシュなしで起動する
	var (
		lockManager redisinfra.LockManagerInterface
		nameCache   application.NameCache
	)
	rc, err := redisinfra.NewClient(&cfg.Redis)
	if err != nil {
		logger.Warn("Redisに接続できないため、ロックと表示名キャッシュを無効化します", zap.Error(err))
	} else {
		defer rc.Close()
		lockManager = redisinfra.NewLockManager(rc)
		nameCache = redisinfra.NewNameCache(rc)
		healthDeps["redis"] = func(ctx context.Context) error { return redisinfra.Ping(ctx, rc) }
	}

	guard := application.NewGuard()
	tokens := auth.NewTokenService(&cfg.Auth)
	reservationRepo := postgres.NewReservationRepository(db)

	reservationService := application.NewReservationService(
		reservationRepo,
		guard,
		reservation.Page{DefaultLimit: cfg.Pagination.DefaultLimit, MaxLimit: cfg.Pagination.MaxLimit},
		m,
	)
	userService := application.NewUserService(
		postgres.NewTxManager(db),
		postgres.NewUserRepository(db),
		guard,
		tokens,
		lockManager,
		nameCache,
		cfg.Redis.NameCacheTTL,
		m,
	)

	e := router.New(router.Deps{
		Reservations: reservationService,
		Users:        userService,
		Names:        userService,
		Verifier:     tokens,
		Metrics:      m,
		MetricsAuth:  &cfg.Metrics,
		RateLimit:    cfg.RateLimit,
		Health:       healthDeps,
	})
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stats := worker.NewReservationStatsCollector(reservationRepo, m, cfg.Worker.StatsInterval)
	go stats.Start(ctx)

	go func() {
		logger.Info("サーバーを起動します", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")
	stats.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
