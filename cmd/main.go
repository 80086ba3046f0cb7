package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/shenikar/wildfire_broadcasting_system/internal/broadcast"
	"github.com/shenikar/wildfire_broadcasting_system/internal/config"
	"github.com/shenikar/wildfire_broadcasting_system/internal/evolution"
	"github.com/shenikar/wildfire_broadcasting_system/internal/grid"
	v1 "github.com/shenikar/wildfire_broadcasting_system/internal/handler/http/v1"
	"github.com/shenikar/wildfire_broadcasting_system/internal/models"
	"github.com/shenikar/wildfire_broadcasting_system/internal/observability"
	"github.com/shenikar/wildfire_broadcasting_system/internal/repository"
	"github.com/shenikar/wildfire_broadcasting_system/internal/seed"
	"github.com/shenikar/wildfire_broadcasting_system/internal/service"
	"github.com/shenikar/wildfire_broadcasting_system/internal/webhook"
	"github.com/shenikar/wildfire_broadcasting_system/pkg/logger"
	redisclient "github.com/shenikar/wildfire_broadcasting_system/pkg/redis"

	_ "github.com/shenikar/wildfire_broadcasting_system/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Wildfire Broadcasting System API
// @version 1.0
// @description Wildfire incident registry with grid queries and a live update stream.
// @host localhost:8080
// @BasePath /api/v1
func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Fatalf("Server stopped with error: %v", err)
	}
	log.Info("Server gracefully stopped")
}

func run(cfg *config.Config, log *logrus.Logger) error {
	// Контекст для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	metrics := observability.NewMetrics()

	catalog := grid.DefaultCatalog()
	if cfg.RegionsFile != "" {
		loaded, err := grid.LoadCatalog(cfg.RegionsFile)
		if err != nil {
			return fmt.Errorf("failed to load regions: %w", err)
		}
		catalog = loaded
	}

	// Хранилище инцидентов
	incidentRepo, closeRepo, err := repository.Open(ctx, cfg, clock, log)
	if err != nil {
		return fmt.Errorf("failed to open incident store: %w", err)
	}
	defer closeRepo()

	// Redis: кеш и очередь вебхуков
	var (
		redisClient *redis.Client
		opts        []service.Option
	)
	if cfg.RedisAddr != "" {
		redisClient, err = redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer redisClient.Close()
		log.Info("Successfully connected to Redis")

		opts = append(opts,
			service.WithCache(repository.NewIncidentCache(redisClient, cfg.CacheTTL)),
			service.WithWebhooks(webhook.NewRedisWebhookPublisher(redisClient)),
		)
	} else {
		log.Warn("REDIS_ADDR is empty, cache and webhooks are disabled")
	}

	// Хаб трансляции берет снимок у сервиса, а сервис публикует в хаб
	var incidentService service.IncidentService
	hub := broadcast.NewHub(
		broadcast.SnapshotFunc(func(ctx context.Context, limit int) ([]*models.Incident, error) {
			return incidentService.RecentIncidents(ctx, limit)
		}),
		cfg.StreamSnapshotSize, cfg.StreamBufferSize, clock, log, metrics,
	)
	defer hub.Close()

	opts = append(opts, service.WithPublisher(hub))
	incidentService = service.NewIncidentService(incidentRepo, catalog, log, metrics, opts...)

	// Хранилище в памяти пустое при старте
	if cfg.StorageDriver == config.StorageDriverMemory {
		gen := seed.NewGenerator(catalog, cfg.EvolutionSeed, clock)
		if err := seed.Seed(ctx, incidentService, gen, seed.DefaultCount, log); err != nil {
			return err
		}
	}

	// Инициализация хэндлеров
	handler := v1.NewHandler(incidentService, hub, log, cfg)

	// Настройка Gin роутера
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), v1.RequestLogger(log))
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("HTTP server started on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting HTTP server: %w", err)
		}
		return nil
	})

	if cfg.EvolutionEnabled {
		rules := evolution.Rules{
			ContainProbability:    cfg.ContainProbability,
			ExtinguishProbability: cfg.ExtinguishProbability,
		}
		engine := evolution.NewEngine(incidentService, rules, cfg.EvolutionInterval, cfg.EvolutionSeed, clock, log, metrics)
		g.Go(func() error {
			return engine.Run(gctx)
		})
	}

	if redisClient != nil {
		worker := webhook.NewWebhookWorker(redisClient, log, cfg, metrics)
		g.Go(func() error {
			return worker.Run(gctx)
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Received shutdown signal, shutting down server...")

		// Стримы держат соединения открытыми: сначала закрываем подписки
		hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
