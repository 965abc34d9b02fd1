package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/incident_dispatch_system/internal/models"
	"github.com/shenikar/incident_dispatch_system/pkg/geo"
	"github.com/sirupsen/logrus"
)

// ResponderService определяет контракт бизнес-логики управления ответственными
type ResponderService interface {
	RegisterResponder(ctx context.Context, responder *models.Responder) error
	GetResponder(ctx context.Context, id uuid.UUID) (*models.Responder, error)
	ListResponders(ctx context.Context, page, pageSize int) ([]*models.Responder, error)
	UpdateApproval(ctx context.Context, id uuid.UUID, status models.ApprovalStatus) error
	UpdateLocation(ctx context.Context, id uuid.UUID, lat, lon float64) error
}

type responderService struct {
	repo   ResponderRepository
	logger *logrus.Logger
}

func NewResponderService(repo ResponderRepository, logger *logrus.Logger) ResponderService {
	return &responderService{
		repo:   repo,
		logger: logger,
	}
}

// RegisterResponder регистрирует нового ответственного. До проверки
// администратором он не участвует в диспетчеризации.
func (s *responderService) RegisterResponder(ctx context.Context, responder *models.Responder) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":        "responder",
		"method":         "RegisterResponder",
		"responder_type": responder.ResponderType,
	})
	log.Info("Attempting to register a new responder")

	responder.ApprovalStatus = models.ApprovalPending
	responder.AvailabilityStatus = models.AvailabilityUnavailable
	responder.CurrentLoad = 0

	if err := s.repo.Create(ctx, responder); err != nil {
		log.WithError(err).Error("Failed to create responder in repository")
		return fmt.Errorf("service: could not register responder: %w", err)
	}

	log.WithField("responder_id", responder.ID).Info("Responder registered successfully")
	return nil
}

// GetResponder получает ответственного по ID
func (s *responderService) GetResponder(ctx context.Context, id uuid.UUID) (*models.Responder, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":      "responder",
		"method":       "GetResponder",
		"responder_id": id,
	})

	responder, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to get responder from repository")
		return nil, fmt.Errorf("service: could not get responder: %w", err)
	}
	return responder, nil
}

// ListResponders возвращает список ответственных с пагинацией
func (s *responderService) ListResponders(ctx context.Context, page, pageSize int) ([]*models.Responder, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":   "responder",
		"method":    "ListResponders",
		"page":      page,
		"page_size": pageSize,
	})

	responders, err := s.repo.ListResponders(ctx, page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list responders from repository")
		return nil, fmt.Errorf("service: could not list responders: %w", err)
	}
	return responders, nil
}

// UpdateApproval меняет статус проверки ответственного
func (s *responderService) UpdateApproval(ctx context.Context, id uuid.UUID, status models.ApprovalStatus) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":      "responder",
		"method":       "UpdateApproval",
		"responder_id": id,
		"new_status":   status,
	})
	log.Info("Updating responder approval status")

	responder, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to update approval of a non-existent responder")
		return fmt.Errorf("service: responder %s: %w", id, err)
	}

	if err := s.repo.UpdateApproval(ctx, id, status); err != nil {
		log.WithError(err).Error("Failed to update responder approval in repository")
		return fmt.Errorf("service: could not update approval: %w", err)
	}

	// Смена approval влияет на состав каталога кандидатов
	if err := s.repo.InvalidateEligibleCache(ctx, responder.ResponderType); err != nil {
		log.WithError(err).Warn("Failed to invalidate eligible responder cache")
	}

	log.Info("Responder approval updated successfully")
	return nil
}

// UpdateLocation сохраняет координаты, присланные клиентом ответственного
func (s *responderService) UpdateLocation(ctx context.Context, id uuid.UUID, lat, lon float64) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":      "responder",
		"method":       "UpdateLocation",
		"responder_id": id,
	})

	if !geo.Valid(lat, lon) {
		log.Warn("Rejected invalid responder coordinates")
		return fmt.Errorf("service: responder coordinates: %w", geo.ErrInvalidCoordinate)
	}

	responder, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to update location of a non-existent responder")
		return fmt.Errorf("service: responder %s: %w", id, err)
	}

	if err := s.repo.UpdateLocation(ctx, id, lat, lon); err != nil {
		log.WithError(err).Error("Failed to update responder location in repository")
		return fmt.Errorf("service: could not update location: %w", err)
	}

	// Кеш каталога хранит координаты, после перемещения он устарел
	if err := s.repo.InvalidateEligibleCache(ctx, responder.ResponderType); err != nil {
		log.WithError(err).Warn("Failed to invalidate eligible responder cache")
	}

	log.Debug("Responder location updated")
	return nil
}
