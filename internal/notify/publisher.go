package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	notificationQueueKey = "notification_events"
)

// EventType - тип события диспетчеризации, по которому формируются уведомления
type EventType string

const (
	EventIncidentAssigned   EventType = "incident_assigned"
	EventIncidentQueued     EventType = "incident_queued"
	EventIncidentReassigned EventType = "incident_reassigned"
	EventIncidentUnassigned EventType = "incident_unassigned"
)

// Recipient - получатель уведомления с готовым текстом
type Recipient struct {
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Event - событие для воркера уведомлений. Отправляется fire-and-forget:
// сбой публикации логируется вызывающей стороной и не влияет на назначение.
type Event struct {
	Type       EventType      `json:"type"`
	IncidentID uuid.UUID      `json:"incident_id"`
	Recipients []Recipient    `json:"recipients"`
	Data       map[string]any `json:"data,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Publisher - интерфейс для публикации событий уведомлений
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// RedisPublisher - реализация Publisher, использующая очередь в Redis
type RedisPublisher struct {
	redisClient *redis.Client
}

// NewRedisPublisher создает новый RedisPublisher
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		redisClient: client,
	}
}

// Publish публикует событие уведомления в очередь Redis
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	// Используем LPUSH для добавления события в левую часть списка (очереди)
	if err := p.redisClient.LPush(ctx, notificationQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification event to Redis: %w", err)
	}
	return nil
}
