// Команда seed очищает хранилище и наполняет его синтетическими инцидентами.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/wildfire_broadcasting_system/internal/config"
	"github.com/shenikar/wildfire_broadcasting_system/internal/grid"
	"github.com/shenikar/wildfire_broadcasting_system/internal/observability"
	"github.com/shenikar/wildfire_broadcasting_system/internal/repository"
	"github.com/shenikar/wildfire_broadcasting_system/internal/seed"
	"github.com/shenikar/wildfire_broadcasting_system/internal/service"
	"github.com/shenikar/wildfire_broadcasting_system/pkg/logger"
	redisclient "github.com/shenikar/wildfire_broadcasting_system/pkg/redis"
)

func main() {
	count := flag.Int("count", seed.DefaultCount, "number of incidents to insert")
	randomSeed := flag.Uint64("seed", 0, "random seed (0 = random)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog := grid.DefaultCatalog()
	if cfg.RegionsFile != "" {
		if catalog, err = grid.LoadCatalog(cfg.RegionsFile); err != nil {
			log.Fatalf("Failed to load regions: %v", err)
		}
	}

	clock := clockwork.NewRealClock()
	incidentRepo, closeRepo, err := repository.Open(ctx, cfg, clock, log)
	if err != nil {
		log.Fatalf("Failed to open incident store: %v", err)
	}
	defer closeRepo()

	// Кеш сбрасывается вместе с хранилищем, иначе сервер отдаст старые записи
	var opts []service.Option
	if cfg.RedisAddr != "" {
		redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		opts = append(opts, service.WithCache(repository.NewIncidentCache(redisClient, cfg.CacheTTL)))
	}

	incidentService := service.NewIncidentService(incidentRepo, catalog, log, observability.NewMetrics(), opts...)

	gen := seed.NewGenerator(catalog, *randomSeed, clock)
	if err := seed.Seed(ctx, incidentService, gen, *count, log); err != nil {
		log.Fatalf("Error seeding database: %v", err)
	}
	log.Infof("%d incidents inserted into the store", *count)
}
