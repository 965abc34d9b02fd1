package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/incident_dispatch_system/internal/config"
	"github.com/shenikar/incident_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
)

// NotificationStore определяет контракт сохранения записей уведомлений
type NotificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Worker - воркер, разбирающий очередь событий и создающий записи уведомлений
type Worker struct {
	redisClient *redis.Client
	store       NotificationStore
	logger      *logrus.Logger
	cfg         *config.Config
}

// NewWorker создает новый Worker
func NewWorker(redisClient *redis.Client, store NotificationStore, logger *logrus.Logger, cfg *config.Config) *Worker {
	return &Worker{
		redisClient: redisClient,
		store:       store,
		logger:      logger,
		cfg:         cfg,
	}
}

// Start запускает горутину для обработки очереди уведомлений
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting notification worker...")
	go func() {
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("Stopping notification worker.")
				return
			default:
				// BRPOP - блокирующее извлечение из правой части списка (очереди)
				// 0 означает бесконечное ожидание
				result, err := w.redisClient.BRPop(ctx, 0, notificationQueueKey).Result()
				if err != nil {
					if errors.Is(err, context.Canceled) {
						continue // Контекст отменен, но не ошибка Redis
					}
					w.logger.WithError(err).Error("Failed to pop notification event from Redis")
					time.Sleep(w.cfg.NotifyBaseDelay) // Ждем перед повторной попыткой
					continue
				}

				// result[0] - ключ, result[1] - значение
				var event Event
				if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
					w.logger.WithError(err).Error("Failed to unmarshal notification event from Redis")
					continue
				}

				w.processEvent(ctx, event)
			}
		}
	}()
}

// processEvent создает запись уведомления для каждого получателя события.
// Сбой сохранения никогда не поднимается выше воркера: после исчерпания
// повторов событие логируется и отбрасывается.
func (w *Worker) processEvent(ctx context.Context, event Event) {
	log := w.logger.WithFields(logrus.Fields{
		"event_type":  event.Type,
		"incident_id": event.IncidentID,
	})
	log.Debug("Processing notification event...")

	for _, recipient := range event.Recipients {
		data := map[string]any{"incident_id": event.IncidentID.String()}
		for k, v := range event.Data {
			data[k] = v
		}

		notification := &models.Notification{
			UserID:  recipient.UserID,
			Title:   recipient.Title,
			Message: recipient.Message,
			Type:    string(event.Type),
			Data:    data,
		}

		delay := w.cfg.NotifyBaseDelay
		saved := false
		for i := 0; i < w.cfg.NotifyMaxRetries; i++ {
			if err := w.store.Create(ctx, notification); err != nil {
				log.WithError(err).Warnf("Failed to save notification. Retrying in %v. Retries left: %d", delay, w.cfg.NotifyMaxRetries-1-i)
				time.Sleep(delay)
				delay *= 2 // Экспоненциальная задержка
				continue
			}
			saved = true
			break
		}

		if !saved {
			log.WithField("user_id", recipient.UserID).Errorf("Failed to save notification after %d retries.", w.cfg.NotifyMaxRetries)
			continue
		}
		log.WithField("user_id", recipient.UserID).Info("Notification saved successfully.")
	}
}
