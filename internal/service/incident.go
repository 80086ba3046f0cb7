package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/wildfire_broadcasting_system/internal/grid"
	"github.com/shenikar/wildfire_broadcasting_system/internal/models"
	"github.com/shenikar/wildfire_broadcasting_system/internal/observability"
	"github.com/shenikar/wildfire_broadcasting_system/internal/webhook"
)

//go:generate mockgen -source=incident.go -destination=mocks/incident_mock.go -package=mocks

// IncidentRepository определяет контракт для хранилища инцидентов
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id string) (*models.Incident, error)
	// List возвращает инциденты по фильтру, отсортированные по updated_at (сначала новые)
	List(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error)
	Count(ctx context.Context) (int, error)
	// GetNth возвращает n-й инцидент в порядке id; ErrNotFound, если n вне диапазона
	GetNth(ctx context.Context, n int) (*models.Incident, error)
	// Update атомарно сливает патч с текущей записью и выставляет updated_at
	Update(ctx context.Context, id string, patch models.IncidentPatch) (before, after *models.Incident, err error)
	Clear(ctx context.Context) error
}

// IncidentCache - кеш инцидентов по id. Промах - (nil, nil).
type IncidentCache interface {
	GetIncident(ctx context.Context, id string) (*models.Incident, error)
	SetIncident(ctx context.Context, incident *models.Incident) error
	InvalidateIncident(ctx context.Context, id string) error
}

// Publisher получает каждое успешно записанное состояние инцидента
type Publisher interface {
	Publish(incident *models.Incident)
}

// IncidentService определяет контракт для бизнес-логики реестра пожаров
type IncidentService interface {
	CreateIncident(ctx context.Context, incident *models.Incident) error
	GetIncident(ctx context.Context, id string) (*models.Incident, error)
	ListIncidents(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error)
	FindInGridRange(ctx context.Context, r models.GridRange) (*models.GridRangeResult, error)
	UpdateIncident(ctx context.Context, id string, patch models.IncidentPatch) (*models.Incident, error)
	PickRandom(ctx context.Context) (*models.Incident, error)
	RecentIncidents(ctx context.Context, limit int) ([]*models.Incident, error)
	ClearIncidents(ctx context.Context) error
	Regions() []grid.Region
}

type incidentService struct {
	repo      IncidentRepository
	cache     IncidentCache
	publisher Publisher
	webhooks  webhook.WebhookPublisher
	catalog   *grid.Catalog
	logger    *logrus.Logger
	metrics   *observability.Metrics
	intN      func(n int) int
}

// Option настраивает необязательные зависимости сервиса
type Option func(*incidentService)

// WithCache включает read-through/write-through кеш
func WithCache(cache IncidentCache) Option {
	return func(s *incidentService) { s.cache = cache }
}

// WithPublisher подключает получателя обновлений (хаб трансляции)
func WithPublisher(p Publisher) Option {
	return func(s *incidentService) { s.publisher = p }
}

// WithWebhooks включает уведомления о смене статуса
func WithWebhooks(p webhook.WebhookPublisher) Option {
	return func(s *incidentService) { s.webhooks = p }
}

// WithRandom подменяет источник случайности для PickRandom
func WithRandom(intN func(n int) int) Option {
	return func(s *incidentService) { s.intN = intN }
}

func NewIncidentService(repo IncidentRepository, catalog *grid.Catalog, logger *logrus.Logger, metrics *observability.Metrics, opts ...Option) IncidentService {
	s := &incidentService{
		repo:    repo,
		cache:   noopCache{},
		catalog: catalog,
		logger:  logger,
		metrics: metrics,
		intN:    rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateIncident проверяет и сохраняет новый инцидент
func (s *incidentService) CreateIncident(ctx context.Context, incident *models.Incident) error {
	if incident.ID == "" {
		incident.ID = uuid.NewString()
	}
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "CreateIncident",
		"incident_id": incident.ID,
	})
	log.Debug("Attempting to create a new incident")

	if err := incident.Validate(); err != nil {
		log.WithError(err).Warn("Rejected invalid incident")
		return fmt.Errorf("service: could not create incident: %w", err)
	}
	c := incident.Location.GridCell
	if !s.catalog.Validate(incident.Location.Region, c.X, c.Y) {
		err := fmt.Errorf("%w: cell (%d,%d) is outside the %s grid", models.ErrValidation, c.X, c.Y, incident.Location.Region)
		log.WithError(err).Warn("Rejected incident outside region grid")
		return fmt.Errorf("service: could not create incident: %w", err)
	}

	if err := s.repo.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return fmt.Errorf("service: could not create incident: %w", err)
	}

	log.Debug("Incident created successfully")
	return nil
}

// GetIncident получает инцидент по ID, сначала из кеша
func (s *incidentService) GetIncident(ctx context.Context, id string) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "GetIncident",
		"incident_id": id,
	})

	cached, err := s.cache.GetIncident(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to read incident from cache")
	}
	if cached != nil {
		log.Debug("Incident served from cache")
		return cached, nil
	}

	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Debug("Incident not found")
		} else {
			log.WithError(err).Error("Failed to get incident in repository")
		}
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	if err := s.cache.SetIncident(ctx, incident); err != nil {
		log.WithError(err).Warn("Failed to fill incident cache")
	}
	return incident, nil
}

// ListIncidents возвращает инциденты по фильтру
func (s *incidentService) ListIncidents(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ListIncidents",
	})

	incidents, err := s.repo.List(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	log.WithField("count", len(incidents)).Debug("Incidents listed successfully")
	return incidents, nil
}

// FindInGridRange возвращает инциденты региона внутри прямоугольника ячеек
func (s *incidentService) FindInGridRange(ctx context.Context, r models.GridRange) (*models.GridRangeResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "FindInGridRange",
		"region":  r.Region,
	})

	if err := r.Validate(); err != nil {
		log.WithError(err).Debug("Rejected grid range")
		return nil, fmt.Errorf("service: %w", err)
	}

	incidents, err := s.repo.List(ctx, models.IncidentFilter{Range: &r})
	if err != nil {
		log.WithError(err).Error("Failed to query grid range")
		return nil, fmt.Errorf("service: could not query grid range: %w", err)
	}

	return &models.GridRangeResult{
		Region: r.Region,
		GridRange: models.GridRangeBounds{
			X: models.Bounds{Min: r.MinX, Max: r.MaxX},
			Y: models.Bounds{Min: r.MinY, Max: r.MaxY},
		},
		Count:     len(incidents),
		Incidents: incidents,
	}, nil
}

// UpdateIncident сливает патч с инцидентом и рассылает новое состояние.
// Это единственная точка публикации обновлений: и для движка, и для внешних запросов.
func (s *incidentService) UpdateIncident(ctx context.Context, id string, patch models.IncidentPatch) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "UpdateIncident",
		"incident_id": id,
	})

	before, after, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			s.metrics.IncidentUpdates.WithLabelValues("not_found").Inc()
			log.Debug("Attempted to update a non-existent incident")
		case errors.Is(err, models.ErrValidation):
			s.metrics.IncidentUpdates.WithLabelValues("invalid").Inc()
			log.WithError(err).Warn("Rejected incident update")
		default:
			s.metrics.IncidentUpdates.WithLabelValues("error").Inc()
			log.WithError(err).Error("Failed to update incident in repository")
		}
		return nil, fmt.Errorf("service: could not update incident: %w", err)
	}
	s.metrics.IncidentUpdates.WithLabelValues("ok").Inc()

	if err := s.cache.SetIncident(ctx, after); err != nil {
		log.WithError(err).Warn("Failed to write incident to cache, invalidating")
		if err := s.cache.InvalidateIncident(ctx, id); err != nil {
			log.WithError(err).Error("Failed to invalidate incident cache")
		}
	}

	if s.publisher != nil {
		s.publisher.Publish(after)
	}

	if s.webhooks != nil && before.Status != after.Status {
		if err := s.webhooks.Publish(ctx, webhook.NewStatusChangeEvent(before, after)); err != nil {
			log.WithError(err).Error("Failed to enqueue status change webhook")
		}
	}

	log.WithField("status", after.Status).Debug("Incident updated successfully")
	return after, nil
}

// PickRandom выбирает инцидент равновероятно; ErrEmpty, если реестр пуст
func (s *incidentService) PickRandom(ctx context.Context) (*models.Incident, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: could not count incidents: %w", err)
	}
	if count == 0 {
		return nil, models.ErrEmpty
	}

	incident, err := s.repo.GetNth(ctx, s.intN(count))
	if err != nil {
		// Реестр уменьшился между Count и GetNth
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrEmpty
		}
		return nil, fmt.Errorf("service: could not pick incident: %w", err)
	}
	return incident, nil
}

// RecentIncidents - последние обновленные инциденты для снимка подписчику
func (s *incidentService) RecentIncidents(ctx context.Context, limit int) ([]*models.Incident, error) {
	incidents, err := s.repo.List(ctx, models.IncidentFilter{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("service: could not list recent incidents: %w", err)
	}
	return incidents, nil
}

// ClearIncidents удаляет все инциденты и их записи в кеше
func (s *incidentService) ClearIncidents(ctx context.Context) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ClearIncidents",
	})

	existing, err := s.repo.List(ctx, models.IncidentFilter{})
	if err != nil {
		return fmt.Errorf("service: could not list incidents: %w", err)
	}
	if err := s.repo.Clear(ctx); err != nil {
		log.WithError(err).Error("Failed to clear repository")
		return fmt.Errorf("service: could not clear incidents: %w", err)
	}
	for _, incident := range existing {
		if err := s.cache.InvalidateIncident(ctx, incident.ID); err != nil {
			log.WithError(err).WithField("incident_id", incident.ID).Warn("Failed to invalidate incident cache")
		}
	}

	log.WithField("count", len(existing)).Info("Incidents cleared")
	return nil
}

// Regions возвращает каталог сеток регионов
func (s *incidentService) Regions() []grid.Region {
	return s.catalog.Regions()
}

type noopCache struct{}

func (noopCache) GetIncident(context.Context, string) (*models.Incident, error) { return nil, nil }
func (noopCache) SetIncident(context.Context, *models.Incident) error          { return nil }
func (noopCache) InvalidateIncident(context.Context, string) error             { return nil }
