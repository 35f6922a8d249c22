package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/ignatzorin/turismo/internal/config"
	"github.com/ignatzorin/turismo/internal/db"
	"github.com/ignatzorin/turismo/internal/goroutine"
	httpHandlers "github.com/ignatzorin/turismo/internal/http/handlers"
	"github.com/ignatzorin/turismo/internal/http/middleware"
	httpRouter "github.com/ignatzorin/turismo/internal/http/router"
	"github.com/ignatzorin/turismo/internal/logger"
	"github.com/ignatzorin/turismo/internal/repository"
	"github.com/ignatzorin/turismo/internal/service"
	"github.com/ignatzorin/turismo/internal/telemetry"
	"github.com/ignatzorin/turismo/internal/web"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.IsProduction() {
		logger.Init("info")
	} else {
		logger.Init("debug")
		logger.SetTextFormatter()
	}

	tracing, err := telemetry.Init(ctx, cfg.ServiceName, cfg.OTLPEndpoint, cfg.Env)
	if err != nil {
		logger.Log.Fatalf("main: ошибка инициализации трейсинга: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			logger.Log.Warnf("main: ошибка остановки трейсинга: %v", err)
		}
	}()

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		logger.Log.Fatalf("main: ошибка миграций: %v", err)
	}

	redisClient, err := db.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Log.Fatalf("main: %v", err)
	}
	if redisClient != nil {
		defer closeRedis(redisClient)
	}

	limiterStore, err := middleware.NewRateLimitStore(redisClient)
	if err != nil {
		logger.Log.Fatalf("main: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	activityRepo := repository.NewActivityRepository(dbConn)
	favoriteRepo := repository.NewFavoriteRepository(dbConn)

	// Сервисы.
	cache := service.NewCacheService(ctx)
	sessionManager := service.NewSessionManager(cfg.SecretKey)
	authService := service.NewAuthService(userRepo, sessionManager, cfg.SessionTTL)
	catalogService := service.NewCatalogService(activityRepo, favoriteRepo, cache, cfg.CatalogCacheTTL)
	favoriteService := service.NewFavoriteService(favoriteRepo, activityRepo)

	if cfg.SeedDemoData {
		if _, err := service.NewSeedService(activityRepo).SeedDemoActivities(ctx); err != nil {
			logger.Log.Warnf("main: не удалось заполнить демо-каталог: %v", err)
		}
	}

	templates, err := web.Templates()
	if err != nil {
		logger.Log.Fatalf("main: %v", err)
	}

	sessions := middleware.NewSessions(authService, sessionManager, cfg.CookieSecure)

	// Хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService, sessions)
	activityHandler := httpHandlers.NewActivityHandler(catalogService)
	favoriteHandler := httpHandlers.NewFavoriteHandler(favoriteService, sessions)
	healthHandler := httpHandlers.NewHealthHandler(dbConn, redisClient)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, templates, limiterStore, sessions, authHandler, activityHandler, favoriteHandler, healthHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	goroutine.SafeGo(ctx, "http shutdown", func(ctx context.Context) {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Errorf("main: ошибка остановки http сервера: %v", err)
		}
	})

	logger.Log.WithField("port", cfg.HTTPPort).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}

	// Ждём остановки сервера и фоновых задач.
	goroutine.Wait()
	logger.Log.Info("main: сервер остановлен")
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.Log.Warnf("main: ошибка закрытия базы: %v", err)
	}
}

func closeRedis(client *redis.Client) {
	if err := client.Close(); err != nil {
		logger.Log.Warnf("main: ошибка закрытия redis: %v", err)
	}
}
