package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shenikar/wildfire_broadcasting_system/internal/models"
	"github.com/shenikar/wildfire_broadcasting_system/internal/service"
)

// setIfNewer записывает значение, только если сохраненная версия не новее переданной.
// KEYS[1] - данные, KEYS[2] - версия; ARGV: данные, версия, TTL в мс.
var setIfNewer = redis.NewScript(`
local current = redis.call('GET', KEYS[2])
if current and tonumber(current) > tonumber(ARGV[2]) then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// IncidentCache - кеш инцидентов в Redis
type IncidentCache struct {
	redisClient *redis.Client
	ttl         time.Duration
}

const defaultCacheTTL = 5 * time.Minute

func NewIncidentCache(redisClient *redis.Client, ttl time.Duration) service.IncidentCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &IncidentCache{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

func cacheKey(id string) string {
	return fmt.Sprintf("incident:%s", id)
}

func versionKey(id string) string {
	return fmt.Sprintf("incident:%s:version", id)
}

// cacheVersion - версия записи для сравнения в Redis
func cacheVersion(incident *models.Incident) int64 {
	return incident.UpdatedAt.UnixNano()
}

// GetIncident пытается получить инцидент из Redis
func (c *IncidentCache) GetIncident(ctx context.Context, id string) (*models.Incident, error) {
	val, err := c.redisClient.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incident from cache: %w", err)
	}

	incident := &models.Incident{}
	if err := json.Unmarshal(val, incident); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident from cache: %w", err)
	}
	return incident, nil
}

// SetIncident сохраняет инцидент в Redis, если в кеше нет более новой версии
func (c *IncidentCache) SetIncident(ctx context.Context, incident *models.Incident) error {
	val, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("failed to marshal incident for cache: %w", err)
	}
	keys := []string{cacheKey(incident.ID), versionKey(incident.ID)}
	if err := setIfNewer.Run(ctx, c.redisClient, keys, val, cacheVersion(incident), c.ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("failed to set incident in cache: %w", err)
	}
	return nil
}

// InvalidateIncident удаляет данные инцидента; версия остается, чтобы устаревшее чтение не вернуло старое значение
func (c *IncidentCache) InvalidateIncident(ctx context.Context, id string) error {
	if err := c.redisClient.Del(ctx, cacheKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate incident cache: %w", err)
	}
	return nil
}
