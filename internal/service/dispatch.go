package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/incident_dispatch_system/internal/config"
	"github.com/shenikar/incident_dispatch_system/internal/models"
	"github.com/shenikar/incident_dispatch_system/internal/notify"
	"github.com/shenikar/incident_dispatch_system/pkg/geo"
	"github.com/sirupsen/logrus"
)

// IncidentRepository определяет контракт для работы с бд инцидентов
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error)
	ListActiveByResponder(ctx context.Context, responderID uuid.UUID) ([]*models.Incident, error)
	Assign(ctx context.Context, incidentID uuid.UUID, responder *models.Responder) error
	Reassign(ctx context.Context, incidentID uuid.UUID, fromResponderID uuid.UUID, to *models.Responder) error
	MarkQueued(ctx context.Context, incidentID uuid.UUID) error
	MarkUnassigned(ctx context.Context, incidentID uuid.UUID, fromResponderID uuid.UUID) error
}

// ResponderRepository определяет контракт для работы с бд ответственных
type ResponderRepository interface {
	Create(ctx context.Context, responder *models.Responder) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Responder, error)
	ListResponders(ctx context.Context, page, pageSize int) ([]*models.Responder, error)
	FindEligible(ctx context.Context, category models.IncidentCategory) ([]*models.Responder, error)
	UpdateAvailability(ctx context.Context, id uuid.UUID, status models.AvailabilityStatus) error
	UpdateApproval(ctx context.Context, id uuid.UUID, status models.ApprovalStatus) error
	UpdateLocation(ctx context.Context, id uuid.UUID, lat, lon float64) error
	InvalidateEligibleCache(ctx context.Context, responderType models.IncidentCategory) error
}

// DispatchService определяет контракт бизнес-логики диспетчеризации инцидентов
type DispatchService interface {
	ReportIncident(ctx context.Context, incident *models.Incident) (*models.DispatchDecision, error)
	GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error)
	ChangeAvailability(ctx context.Context, responderID uuid.UUID, status models.AvailabilityStatus) (*models.SweepResult, error)
}

type dispatchService struct {
	incidentRepo  IncidentRepository
	responderRepo ResponderRepository
	logger        *logrus.Logger
	cfg           *config.Config
	publisher     notify.Publisher
}

func NewDispatchService(incidentRepo IncidentRepository, responderRepo ResponderRepository, logger *logrus.Logger, cfg *config.Config, publisher notify.Publisher) DispatchService {
	return &dispatchService{
		incidentRepo:  incidentRepo,
		responderRepo: responderRepo,
		logger:        logger,
		cfg:           cfg,
		publisher:     publisher,
	}
}

// ReportIncident создает инцидент и пытается назначить ближайшего подходящего
// ответственного. При отсутствии кандидатов инцидент ставится в очередь.
func (s *dispatchService) ReportIncident(ctx context.Context, incident *models.Incident) (*models.DispatchDecision, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "dispatch",
		"method":   "ReportIncident",
		"category": incident.Category,
	})
	log.Info("Attempting to report and route a new incident")

	if !geo.Valid(incident.Latitude, incident.Longitude) {
		log.Warn("Incident has invalid coordinates")
		return nil, fmt.Errorf("service: incident coordinates: %w", geo.ErrInvalidCoordinate)
	}

	incident.Status = models.IncidentStatusPending
	if err := s.incidentRepo.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return nil, fmt.Errorf("service: could not create incident: %w", err)
	}
	log = log.WithField("incident_id", incident.ID)

	// Повторяем выборку при конфликте условной записи: кто-то успел занять
	// выбранного кандидата между чтением и коммитом
	exclude := map[uuid.UUID]struct{}{}
	for attempt := 0; attempt < s.cfg.MaxAssignAttempts; attempt++ {
		best, distance, err := s.selectNearest(ctx, incident, exclude)
		if err != nil {
			return nil, err
		}
		if best == nil {
			break
		}

		if err := s.incidentRepo.Assign(ctx, incident.ID, best); err != nil {
			if errors.Is(err, ErrResponderBusy) {
				log.WithField("responder_id", best.ID).Warn("Responder became busy before commit, re-routing")
				exclude[best.ID] = struct{}{}
				continue
			}
			log.WithError(err).Error("Failed to commit assignment")
			return nil, fmt.Errorf("service: could not assign incident: %w", err)
		}

		s.invalidateDirectory(ctx, incident.Category, log)
		s.publishAssignment(ctx, incident, best, distance, notify.EventIncidentAssigned, log)

		log.WithFields(logrus.Fields{
			"responder_id": best.ID,
			"distance_km":  distance,
		}).Info("Incident assigned successfully")
		return &models.DispatchDecision{
			Outcome:       models.OutcomeAssigned,
			ResponderID:   best.ID,
			ResponderName: best.Name,
			DistanceKm:    distance,
		}, nil
	}

	// Кандидатов нет - инцидент уходит в очередь, это не ошибка
	if err := s.incidentRepo.MarkQueued(ctx, incident.ID); err != nil {
		log.WithError(err).Error("Failed to mark incident as queued")
		return nil, fmt.Errorf("service: could not queue incident: %w", err)
	}
	s.publishQueued(ctx, incident, log)

	log.Info("No eligible responder, incident queued")
	return &models.DispatchDecision{
		Outcome: models.OutcomeQueued,
		Reason:  models.QueuedReasonNoResponder,
	}, nil
}

// GetIncident получает инцидент по ID
func (s *dispatchService) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "GetIncident",
		"incident_id": id,
	})

	incident, err := s.incidentRepo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to get incident from repository")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}
	return incident, nil
}

// ListIncidents возвращает список инцидентов с пагинацией
func (s *dispatchService) ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":   "dispatch",
		"method":    "ListIncidents",
		"page":      page,
		"page_size": pageSize,
	})

	incidents, err := s.incidentRepo.ListIncidents(ctx, page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}
	return incidents, nil
}

// ChangeAvailability сохраняет новый статус доступности ответственного.
// При уходе в offline выполняется свип: каждый активный инцидент этого
// ответственного либо переназначается на другого, либо помечается unassigned.
func (s *dispatchService) ChangeAvailability(ctx context.Context, responderID uuid.UUID, status models.AvailabilityStatus) (*models.SweepResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":      "dispatch",
		"method":       "ChangeAvailability",
		"responder_id": responderID,
		"new_status":   status,
	})
	log.Info("Changing responder availability")

	responder, err := s.responderRepo.GetByID(ctx, responderID)
	if err != nil {
		log.WithError(err).Warn("Responder not found for availability change")
		return nil, fmt.Errorf("service: responder %s: %w", responderID, err)
	}

	// До одобрения заявки ответственный не управляет своей доступностью
	if responder.ApprovalStatus != models.ApprovalApproved {
		log.Warn("Rejected availability change of an unapproved responder")
		return nil, fmt.Errorf("service: responder %s: %w", responderID, ErrResponderNotApproved)
	}

	if err := s.responderRepo.UpdateAvailability(ctx, responderID, status); err != nil {
		log.WithError(err).Error("Failed to update responder availability")
		return nil, fmt.Errorf("service: could not update availability: %w", err)
	}
	s.invalidateDirectory(ctx, responder.ResponderType, log)

	result := &models.SweepResult{}
	if status == models.AvailabilityAvailable {
		return result, nil
	}

	incidents, err := s.incidentRepo.ListActiveByResponder(ctx, responderID)
	if err != nil {
		log.WithError(err).Error("Failed to list active incidents for sweep")
		return nil, fmt.Errorf("service: could not list incidents for sweep: %w", err)
	}

	// Последовательный свип: сбой на одном инциденте не останавливает остальные
	for _, incident := range incidents {
		reassigned, err := s.sweepIncident(ctx, incident, responderID, log)
		if err != nil {
			log.WithError(err).WithField("incident_id", incident.ID).Error("Failed to sweep incident")
			continue
		}
		if reassigned {
			result.Reassigned++
		} else {
			result.Unassigned++
		}
	}

	log.WithFields(logrus.Fields{
		"reassigned": result.Reassigned,
		"unassigned": result.Unassigned,
	}).Info("Availability sweep completed")
	return result, nil
}

// sweepIncident пытается переназначить один инцидент на другого ответственного,
// иначе помечает его unassigned
func (s *dispatchService) sweepIncident(ctx context.Context, incident *models.Incident, fromResponderID uuid.UUID, log *logrus.Entry) (bool, error) {
	exclude := map[uuid.UUID]struct{}{fromResponderID: {}}

	if geo.Valid(incident.Latitude, incident.Longitude) {
		for attempt := 0; attempt < s.cfg.MaxAssignAttempts; attempt++ {
			best, distance, err := s.selectNearest(ctx, incident, exclude)
			if err != nil {
				return false, err
			}
			if best == nil {
				break
			}

			if err := s.incidentRepo.Reassign(ctx, incident.ID, fromResponderID, best); err != nil {
				if errors.Is(err, ErrResponderBusy) {
					log.WithField("responder_id", best.ID).Warn("Responder became busy before reassign commit, re-routing")
					exclude[best.ID] = struct{}{}
					continue
				}
				return false, fmt.Errorf("service: could not reassign incident: %w", err)
			}

			s.invalidateDirectory(ctx, incident.Category, log)
			s.publishAssignment(ctx, incident, best, distance, notify.EventIncidentReassigned, log)
			return true, nil
		}
	} else {
		log.WithField("incident_id", incident.ID).Warn("Incident has invalid coordinates, skipping reassignment")
	}

	if err := s.incidentRepo.MarkUnassigned(ctx, incident.ID, fromResponderID); err != nil {
		return false, fmt.Errorf("service: could not mark incident unassigned: %w", err)
	}
	s.publishUnassigned(ctx, incident, log)
	return false, nil
}

// selectNearest выбирает ближайшего подходящего кандидата. Кандидаты без
// координат пропускаются. При равных расстояниях побеждает меньший id,
// чтобы выбор был детерминированным при любом порядке выборки из бд.
func (s *dispatchService) selectNearest(ctx context.Context, incident *models.Incident, exclude map[uuid.UUID]struct{}) (*models.Responder, float64, error) {
	candidates, err := s.responderRepo.FindEligible(ctx, incident.Category)
	if err != nil {
		return nil, 0, fmt.Errorf("service: could not find eligible responders: %w", err)
	}

	var best *models.Responder
	var bestDistance float64
	for _, candidate := range candidates {
		if _, excluded := exclude[candidate.ID]; excluded {
			continue
		}
		if !candidate.HasLocation() {
			continue
		}

		distance, err := geo.DistanceKm(incident.Latitude, incident.Longitude, *candidate.Latitude, *candidate.Longitude)
		if err != nil {
			// Кандидат с битыми координатами не валит маршрутизацию
			s.logger.WithField("responder_id", candidate.ID).Debug("Skipping responder with invalid coordinates")
			continue
		}

		if best == nil || distance < bestDistance ||
			(distance == bestDistance && candidate.ID.String() < best.ID.String()) {
			best = candidate
			bestDistance = distance
		}
	}

	return best, bestDistance, nil
}

// invalidateDirectory сбрасывает кеш каталога доступных ответственных.
// Назначение уже закоммичено, поэтому сбой только логируется
func (s *dispatchService) invalidateDirectory(ctx context.Context, responderType models.IncidentCategory, log *logrus.Entry) {
	if err := s.responderRepo.InvalidateEligibleCache(ctx, responderType); err != nil {
		log.WithError(err).Warn("Failed to invalidate eligible responder cache, assignment stands")
	}
}

func (s *dispatchService) publishAssignment(ctx context.Context, incident *models.Incident, responder *models.Responder, distance float64, eventType notify.EventType, log *logrus.Entry) {
	event := notify.Event{
		Type:       eventType,
		IncidentID: incident.ID,
		Recipients: []notify.Recipient{
			{
				UserID:  incident.ReporterID,
				Title:   "Responder assigned",
				Message: fmt.Sprintf("%s is on the way (%.1f km from the incident)", responder.Name, distance),
			},
			{
				UserID:  responder.ID.String(),
				Title:   "New incident assigned",
				Message: fmt.Sprintf("You have been assigned a %s incident", incident.Category),
			},
		},
		Data: map[string]any{
			"responder_id": responder.ID.String(),
			"distance_km":  distance,
		},
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.WithError(err).Warn("Failed to publish assignment notification event")
	}
}

func (s *dispatchService) publishQueued(ctx context.Context, incident *models.Incident, log *logrus.Entry) {
	event := notify.Event{
		Type:       notify.EventIncidentQueued,
		IncidentID: incident.ID,
		Recipients: []notify.Recipient{
			{
				UserID:  incident.ReporterID,
				Title:   "Incident queued",
				Message: "No responder currently available, you will be notified",
			},
		},
		Data:      map[string]any{"reason": models.QueuedReasonNoResponder},
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.WithError(err).Warn("Failed to publish queued notification event")
	}
}

func (s *dispatchService) publishUnassigned(ctx context.Context, incident *models.Incident, log *logrus.Entry) {
	event := notify.Event{
		Type:       notify.EventIncidentUnassigned,
		IncidentID: incident.ID,
		Recipients: []notify.Recipient{
			{
				UserID:  incident.ReporterID,
				Title:   "Incident unassigned",
				Message: "The assigned responder is no longer available, we are looking for a replacement",
			},
		},
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.WithError(err).Warn("Failed to publish unassigned notification event")
	}
}
