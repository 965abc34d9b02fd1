package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/incident_dispatch_system/internal/models"
	"github.com/shenikar/incident_dispatch_system/internal/service"
)

const incidentColumns = `
	id,
	reporter_id,
	category,
	description,
	latitude,
	longitude,
	status,
	assigned_responder_id,
	assigned_responder_name,
	created_at,
	assigned_at,
	reassigned_at`

type IncidentRepository struct {
	db *pgxpool.Pool
}

func NewIncidentRepository(db *pgxpool.Pool) service.IncidentRepository {
	return &IncidentRepository{
		db: db,
	}
}

// Create создает новую запись об инциденте в бд
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	query := `
		INSERT INTO incidents (reporter_id, category, description, latitude, longitude, status)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at;
	`
	err := r.db.QueryRow(ctx, query,
		incident.ReporterID,
		incident.Category,
		incident.Description,
		incident.Latitude,
		incident.Longitude,
		incident.Status,
	).Scan(&incident.ID, &incident.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// GetByID возвращает инцидент по его UUID
func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1;`

	incident, err := scanIncidentRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s: %w", id, service.ErrIncidentNotFound)
		}
		return nil, fmt.Errorf("failed to get incident by id: %w", err)
	}
	return incident, nil
}

// ListIncidents возвращает список инцидентов с пагинацией
func (r *IncidentRepository) ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error) {
	// рассчитываем смещение
	offset := (page - 1) * pageSize

	query := `SELECT ` + incidentColumns + `
		FROM incidents
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2;`

	rows, err := r.db.Query(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	return scanIncidentRows(rows)
}

// ListActiveByResponder возвращает незавершенные инциденты, закрепленные
// за ответственным. Статус задается одной константой модели, чтобы выборка
// свипа и запись при назначении не разошлись.
func (r *IncidentRepository) ListActiveByResponder(ctx context.Context, responderID uuid.UUID) ([]*models.Incident, error) {
	query := `SELECT ` + incidentColumns + `
		FROM incidents
		WHERE assigned_responder_id = $1 AND status = $2
		ORDER BY created_at;`

	rows, err := r.db.Query(ctx, query, responderID, models.ActiveAssignmentStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to list active incidents by responder: %w", err)
	}
	defer rows.Close()

	return scanIncidentRows(rows)
}

// Assign закрепляет инцидент за ответственным одной транзакцией.
// Запись по ответственному условная: если он перестал быть available
// между выборкой и коммитом, транзакция откатывается с ErrResponderBusy
// и вызывающая сторона выбирает другого кандидата.
func (r *IncidentRepository) Assign(ctx context.Context, incidentID uuid.UUID, responder *models.Responder) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin assignment transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	responderQuery := `
		UPDATE responders SET
			availability_status = $1,
			current_load = current_load + 1,
			last_assigned_at = NOW(),
			updated_at = NOW()
		WHERE id = $2 AND availability_status = $3 AND approval_status = $4;
	`
	cmdTag, err := tx.Exec(ctx, responderQuery,
		models.AvailabilityBusy,
		responder.ID,
		models.AvailabilityAvailable,
		models.ApprovalApproved,
	)
	if err != nil {
		return fmt.Errorf("failed to update responder for assignment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return service.ErrResponderBusy
	}

	incidentQuery := `
		UPDATE incidents SET
			status = $1,
			assigned_responder_id = $2,
			assigned_responder_name = $3,
			assigned_at = NOW()
		WHERE id = $4 AND status = ANY($5);
	`
	cmdTag, err = tx.Exec(ctx, incidentQuery,
		models.ActiveAssignmentStatus,
		responder.ID,
		responder.Name,
		incidentID,
		assignableStatuses(),
	)
	if err != nil {
		return fmt.Errorf("failed to update incident for assignment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return service.ErrIncidentNotAssignable
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit assignment transaction: %w", err)
	}
	return nil
}

// Reassign перекрепляет инцидент с одного ответственного на другого одной
// транзакцией: новый условно занимается, нагрузка старого уменьшается
func (r *IncidentRepository) Reassign(ctx context.Context, incidentID uuid.UUID, fromResponderID uuid.UUID, to *models.Responder) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin reassignment transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	newResponderQuery := `
		UPDATE responders SET
			availability_status = $1,
			current_load = current_load + 1,
			last_assigned_at = NOW(),
			updated_at = NOW()
		WHERE id = $2 AND availability_status = $3 AND approval_status = $4;
	`
	cmdTag, err := tx.Exec(ctx, newResponderQuery,
		models.AvailabilityBusy,
		to.ID,
		models.AvailabilityAvailable,
		models.ApprovalApproved,
	)
	if err != nil {
		return fmt.Errorf("failed to update new responder for reassignment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return service.ErrResponderBusy
	}

	incidentQuery := `
		UPDATE incidents SET
			status = $1,
			assigned_responder_id = $2,
			assigned_responder_name = $3,
			reassigned_at = NOW()
		WHERE id = $4 AND assigned_responder_id = $5;
	`
	cmdTag, err = tx.Exec(ctx, incidentQuery,
		models.ActiveAssignmentStatus,
		to.ID,
		to.Name,
		incidentID,
		fromResponderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update incident for reassignment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return service.ErrIncidentNotAssignable
	}

	oldResponderQuery := `
		UPDATE responders SET
			current_load = GREATEST(current_load - 1, 0),
			updated_at = NOW()
		WHERE id = $1;
	`
	if _, err := tx.Exec(ctx, oldResponderQuery, fromResponderID); err != nil {
		return fmt.Errorf("failed to decrement load of previous responder: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reassignment transaction: %w", err)
	}
	return nil
}

// MarkQueued переводит инцидент из pending в очередь ожидания
func (r *IncidentRepository) MarkQueued(ctx context.Context, incidentID uuid.UUID) error {
	query := `
		UPDATE incidents SET status = $1
		WHERE id = $2 AND status = $3;
	`
	cmdTag, err := r.db.Exec(ctx, query, models.IncidentStatusQueued, incidentID, models.IncidentStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark incident as queued: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return service.ErrIncidentNotAssignable
	}
	return nil
}

// MarkUnassigned снимает назначение с инцидента и уменьшает нагрузку
// прежнего ответственного одной транзакцией
func (r *IncidentRepository) MarkUnassigned(ctx context.Context, incidentID uuid.UUID, fromResponderID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin unassign transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	incidentQuery := `
		UPDATE incidents SET
			status = $1,
			assigned_responder_id = NULL,
			assigned_responder_name = ''
		WHERE id = $2 AND assigned_responder_id = $3;
	`
	cmdTag, err := tx.Exec(ctx, incidentQuery, models.IncidentStatusUnassigned, incidentID, fromResponderID)
	if err != nil {
		return fmt.Errorf("failed to mark incident as unassigned: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return service.ErrIncidentNotAssignable
	}

	responderQuery := `
		UPDATE responders SET
			current_load = GREATEST(current_load - 1, 0),
			updated_at = NOW()
		WHERE id = $1;
	`
	if _, err := tx.Exec(ctx, responderQuery, fromResponderID); err != nil {
		return fmt.Errorf("failed to decrement load of previous responder: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit unassign transaction: %w", err)
	}
	return nil
}

// assignableStatuses - статусы, из которых инцидент можно назначить
func assignableStatuses() []string {
	return []string{
		string(models.IncidentStatusPending),
		string(models.IncidentStatusQueued),
		string(models.IncidentStatusUnassigned),
	}
}

func scanIncidentRow(row pgx.Row) (*models.Incident, error) {
	incident := &models.Incident{}
	err := row.Scan(
		&incident.ID,
		&incident.ReporterID,
		&incident.Category,
		&incident.Description,
		&incident.Latitude,
		&incident.Longitude,
		&incident.Status,
		&incident.AssignedResponderID,
		&incident.AssignedResponderName,
		&incident.CreatedAt,
		&incident.AssignedAt,
		&incident.ReassignedAt,
	)
	if err != nil {
		return nil, err
	}
	return incident, nil
}

func scanIncidentRows(rows pgx.Rows) ([]*models.Incident, error) {
	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncidentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error incident rows iteration: %w", err)
	}
	return incidents, nil
}
