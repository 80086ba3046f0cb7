package evolution

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/wildfire_broadcasting_system/internal/models"
	"github.com/shenikar/wildfire_broadcasting_system/internal/observability"
)

// Registry - часть реестра, нужная движку. Публикация обновления происходит внутри UpdateIncident.
type Registry interface {
	PickRandom(ctx context.Context) (*models.Incident, error)
	UpdateIncident(ctx context.Context, id string, patch models.IncidentPatch) (*models.Incident, error)
}

// Engine - фоновый движок эволюции пожаров
type Engine struct {
	registry Registry
	rules    Rules
	interval time.Duration
	clock    clockwork.Clock
	logger   *logrus.Logger
	metrics  *observability.Metrics

	tickMu sync.Mutex // один тик в работе; rng используется только под ним
	rng    *rand.Rand
}

// NewEngine создает движок. seed == 0 - случайное зерно.
func NewEngine(registry Registry, rules Rules, interval time.Duration, seed uint64, clock clockwork.Clock, logger *logrus.Logger, metrics *observability.Metrics) *Engine {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Engine{
		registry: registry,
		rules:    rules,
		interval: interval,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Run тикает с интервалом до отмены контекста. Ошибка тика не останавливает цикл.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.WithField("interval", e.interval.String()).Info("Starting evolution engine...")
	ticker := e.clock.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Stopping evolution engine.")
			return nil
		case <-ticker.Chan():
			// Тик выполняется синхронно: следующий не начнется, пока не закончится текущий
			if _, err := e.Tick(ctx); err != nil && ctx.Err() == nil {
				e.logger.WithError(err).Error("Evolution tick failed")
			}
		}
	}
}

// Tick выполняет один шаг эволюции и возвращает обновленный инцидент.
// Пустой реестр - не ошибка: возвращается (nil, nil) и ничего не публикуется.
func (e *Engine) Tick(ctx context.Context) (*models.Incident, error) {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	start := e.clock.Now()
	defer func() {
		e.metrics.TickDuration.Observe(e.clock.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, e.interval)
	defer cancel()

	incident, err := e.registry.PickRandom(ctx)
	if err != nil {
		if errors.Is(err, models.ErrEmpty) {
			e.metrics.EngineTicks.WithLabelValues("empty").Inc()
			e.logger.Debug("No incidents to evolve, skipping tick")
			return nil, nil
		}
		e.metrics.EngineTicks.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("evolution: could not pick incident: %w", err)
	}

	working := incident.Clone()
	kinds := Apply(working, ChooseKinds(e.rng), e.rng, e.rules, e.clock.Now().UTC())
	for _, k := range kinds {
		e.metrics.MutationsApplied.WithLabelValues(k.String()).Inc()
	}

	updated, err := e.registry.UpdateIncident(ctx, incident.ID, models.Diff(incident, working))
	if err != nil {
		e.metrics.EngineTicks.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("evolution: could not update incident %s: %w", incident.ID, err)
	}

	e.metrics.EngineTicks.WithLabelValues("updated").Inc()
	e.logger.WithFields(logrus.Fields{
		"incident_id": updated.ID,
		"status":      updated.Status,
		"mutations":   kinds,
	}).Debug("Incident evolved")
	return updated, nil
}
