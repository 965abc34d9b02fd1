package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/incident_dispatch_system/internal/models"
	"github.com/shenikar/incident_dispatch_system/internal/notify"
)

type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) notify.NotificationStore {
	return &NotificationRepository{
		db: db,
	}
}

// Create сохраняет запись уведомления в бд
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, title, message, type, read, data)
		VALUES ($1, $2, $3, $4, FALSE, $5) RETURNING id, created_at;
	`
	err := r.db.QueryRow(ctx, query,
		notification.UserID,
		notification.Title,
		notification.Message,
		notification.Type,
		notification.Data,
	).Scan(&notification.ID, &notification.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}
