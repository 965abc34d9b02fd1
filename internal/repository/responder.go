package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/incident_dispatch_system/internal/models"
	"github.com/shenikar/incident_dispatch_system/internal/service"
)

const responderColumns = `
	id,
	name,
	responder_type,
	availability_status,
	approval_status,
	latitude,
	longitude,
	current_load,
	last_assigned_at,
	created_at,
	updated_at`

type ResponderRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewResponderRepository(db *pgxpool.Pool, redisClient *redis.Client, cacheTTL time.Duration) service.ResponderRepository {
	return &ResponderRepository{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

// Create создает новую запись об ответственном в бд
func (r *ResponderRepository) Create(ctx context.Context, responder *models.Responder) error {
	query := `
		INSERT INTO responders (name, responder_type, availability_status, approval_status, latitude, longitude, current_load)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		responder.Name,
		responder.ResponderType,
		responder.AvailabilityStatus,
		responder.ApprovalStatus,
		responder.Latitude,
		responder.Longitude,
		responder.CurrentLoad,
	).Scan(&responder.ID, &responder.CreatedAt, &responder.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create responder: %w", err)
	}
	return nil
}

// GetByID возвращает ответственного по его UUID
func (r *ResponderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Responder, error) {
	query := `SELECT ` + responderColumns + ` FROM responders WHERE id = $1;`

	responder, err := scanResponderRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("responder with id %s: %w", id, service.ErrResponderNotFound)
		}
		return nil, fmt.Errorf("failed to get responder by id: %w", err)
	}
	return responder, nil
}

// ListResponders возвращает список ответственных с пагинацией
func (r *ResponderRepository) ListResponders(ctx context.Context, page, pageSize int) ([]*models.Responder, error) {
	offset := (page - 1) * pageSize

	query := `SELECT ` + responderColumns + `
		FROM responders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2;`

	rows, err := r.db.Query(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list responders: %w", err)
	}
	defer rows.Close()

	return scanResponderRows(rows)
}

// FindEligible возвращает всех кандидатов для диспетчеризации по категории:
// совпадающий тип, approved и available. Пустой список - не ошибка.
// Результат кешируется в Redis с коротким TTL; любая ошибка кеша
// трактуется как промах и выборка уходит в Postgres.
func (r *ResponderRepository) FindEligible(ctx context.Context, category models.IncidentCategory) ([]*models.Responder, error) {
	cacheKey := eligibleCacheKey(category)
	if cached, err := r.redisClient.Get(ctx, cacheKey).Bytes(); err == nil {
		responders := make([]*models.Responder, 0)
		if err := json.Unmarshal(cached, &responders); err == nil {
			return responders, nil
		}
	}

	query := `SELECT ` + responderColumns + `
		FROM responders
		WHERE responder_type = $1 AND availability_status = $2 AND approval_status = $3
		ORDER BY id;`

	rows, err := r.db.Query(ctx, query, category, models.AvailabilityAvailable, models.ApprovalApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to find eligible responders: %w", err)
	}
	defer rows.Close()

	responders, err := scanResponderRows(rows)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(responders); err == nil {
		// Кеш best-effort: сбой записи не мешает ответить из Postgres
		r.redisClient.Set(ctx, cacheKey, payload, r.cacheTTL)
	}
	return responders, nil
}

// UpdateAvailability меняет статус доступности ответственного
func (r *ResponderRepository) UpdateAvailability(ctx context.Context, id uuid.UUID, status models.AvailabilityStatus) error {
	query := `
		UPDATE responders SET
			availability_status = $1,
			updated_at = NOW()
		WHERE id = $2;
	`
	cmdTag, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update responder availability: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("responder with id %s: %w", id, service.ErrResponderNotFound)
	}
	return nil
}

// UpdateApproval меняет статус проверки ответственного
func (r *ResponderRepository) UpdateApproval(ctx context.Context, id uuid.UUID, status models.ApprovalStatus) error {
	query := `
		UPDATE responders SET
			approval_status = $1,
			updated_at = NOW()
		WHERE id = $2;
	`
	cmdTag, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update responder approval: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("responder with id %s: %w", id, service.ErrResponderNotFound)
	}
	return nil
}

// UpdateLocation сохраняет координаты ответственного
func (r *ResponderRepository) UpdateLocation(ctx context.Context, id uuid.UUID, lat, lon float64) error {
	query := `
		UPDATE responders SET
			latitude = $1,
			longitude = $2,
			updated_at = NOW()
		WHERE id = $3;
	`
	cmdTag, err := r.db.Exec(ctx, query, lat, lon, id)
	if err != nil {
		return fmt.Errorf("failed to update responder location: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("responder with id %s: %w", id, service.ErrResponderNotFound)
	}
	return nil
}

// InvalidateEligibleCache удаляет кеш каталога кандидатов для категории
func (r *ResponderRepository) InvalidateEligibleCache(ctx context.Context, responderType models.IncidentCategory) error {
	if err := r.redisClient.Del(ctx, eligibleCacheKey(responderType)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate eligible responder cache: %w", err)
	}
	return nil
}

func eligibleCacheKey(category models.IncidentCategory) string {
	return fmt.Sprintf("eligible_responders:%s", category)
}

func scanResponderRow(row pgx.Row) (*models.Responder, error) {
	responder := &models.Responder{}
	err := row.Scan(
		&responder.ID,
		&responder.Name,
		&responder.ResponderType,
		&responder.AvailabilityStatus,
		&responder.ApprovalStatus,
		&responder.Latitude,
		&responder.Longitude,
		&responder.CurrentLoad,
		&responder.LastAssignedAt,
		&responder.CreatedAt,
		&responder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return responder, nil
}

func scanResponderRows(rows pgx.Rows) ([]*models.Responder, error) {
	responders := make([]*models.Responder, 0)
	for rows.Next() {
		responder, err := scanResponderRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan responder row: %w", err)
		}
		responders = append(responders, responder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error responder rows iteration: %w", err)
	}
	return responders, nil
}
