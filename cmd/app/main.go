package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mkuznetsov/todo-api/internal/auth"
	"github.com/mkuznetsov/todo-api/internal/config"
	"github.com/mkuznetsov/todo-api/internal/event"
	"github.com/mkuznetsov/todo-api/internal/handler"
	"github.com/mkuznetsov/todo-api/internal/repo"
	"github.com/mkuznetsov/todo-api/internal/service"
)

func main() {
	// Подключаем логгер
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Загрузка конфигурации
	cfg := config.Load()

	// Стратегия проверки токенов: verified по умолчанию, unverified
	// только по явному AUTH_MODE
	verifier, err := auth.NewVerifier(cfg.AuthMode, cfg.JWTSecret)
	if err != nil {
		logger.Fatal("Invalid auth configuration", zap.Error(err))
	}
	if cfg.AuthMode == auth.ModeUnverified {
		logger.Warn("Token signature verification is DISABLED - never run this mode in production")
	}

	// Подключаем БД
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to Database.") // Fatal потому что дальнейшая работа теряет смысл
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal("Failed to ping the Database.")
	}
	logger.Info("Successfully connected to the Database!")

	// Опциональный кэш списков
	var cache repo.TaskCache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("Invalid REDIS_URL", zap.Error(err))
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("Failed to ping Redis", zap.Error(err))
		}
		defer rdb.Close()
		cache = repo.NewRedisTaskCache(rdb)
		logger.Info("Redis list cache enabled")
	}

	// Опциональный поток событий
	var events event.Publisher
	if cfg.KafkaBroker != "" {
		producer := event.NewKafkaProducer(cfg.KafkaBroker, cfg.KafkaTopic, logger)
		defer producer.Close()
		events = producer
		logger.Info("Kafka task events enabled", zap.String("topic", cfg.KafkaTopic))
	}

	taskRepo := repo.NewTaskRepo(pool)
	taskService := service.NewTaskService(taskRepo, cache, events)
	taskHandler := handler.NewTaskHandler(taskService, logger)

	r := handler.NewRouter(taskHandler, verifier, cfg.CORSOrigins)

	srv := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.Logger(r),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started at ", zap.String("port", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed: ", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Shutdown error: ", zap.Error(err))
	}
	logger.Info("Server stopped succsessfully!")
}
