package models

import (
	"time"
)

// Notification - запись уведомления для пользователя (заявителя или ответственного).
// Создается воркером уведомлений, этим сервисом никогда не читается.
type Notification struct {
	ID        int64          `json:"id"`
	UserID    string         `json:"user_id"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Type      string         `json:"type"`
	Read      bool           `json:"read"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
