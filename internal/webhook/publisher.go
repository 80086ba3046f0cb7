package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/wildfire_broadcasting_system/internal/models"
)

//go:generate mockgen -source=publisher.go -destination=mocks/publisher_mock.go -package=mocks

const (
	webhookQueueKey = "wildfire:webhook_events"
)

// WebhookEvent - уведомление о смене статуса пожара
type WebhookEvent struct {
	IncidentID     string           `json:"incident_id"`
	Region         string           `json:"region"`
	PreviousStatus models.Status    `json:"previous_status"`
	Status         models.Status    `json:"status"`
	Timestamp      time.Time        `json:"timestamp"`
	Incident       *models.Incident `json:"incident,omitempty"` // Полное состояние после изменения
}

// NewStatusChangeEvent собирает событие по состоянию до и после обновления
func NewStatusChangeEvent(before, after *models.Incident) WebhookEvent {
	return WebhookEvent{
		IncidentID:     after.ID,
		Region:         after.Location.Region,
		PreviousStatus: before.Status,
		Status:         after.Status,
		Timestamp:      after.UpdatedAt,
		Incident:       after,
	}
}

// WebhookPublisher - интерфейс для публикации вебхуков
type WebhookPublisher interface {
	Publish(ctx context.Context, event WebhookEvent) error
}

// RedisWebhookPublisher - реализация WebhookPublisher, использующая Redis
type RedisWebhookPublisher struct {
	redisClient *redis.Client
}

// NewRedisWebhookPublisher создает новый RedisWebhookPublisher
func NewRedisWebhookPublisher(client *redis.Client) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
	}
}

// Publish публикует событие вебхука в очередь Redis
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event WebhookEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	// LPUSH в голову списка, воркер забирает с хвоста через BRPOP
	if err := p.redisClient.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish webhook event to Redis: %w", err)
	}
	return nil
}
