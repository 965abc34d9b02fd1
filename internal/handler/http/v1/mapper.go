package v1

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/incident_dispatch_system/internal/models"
)

// ReportDTOToIncidentModel преобразует DTO сообщения об инциденте в доменную модель
func ReportDTOToIncidentModel(dto ReportIncidentRequest) *models.Incident {
	return &models.Incident{
		ReporterID:  dto.ReporterID,
		Category:    models.IncidentCategory(dto.Category),
		Description: dto.Description,
		Latitude:    dto.Latitude,
		Longitude:   dto.Longitude,
	}
}

// RegisterDTOToResponderModel преобразует DTO регистрации в доменную модель
func RegisterDTOToResponderModel(dto RegisterResponderRequest) *models.Responder {
	return &models.Responder{
		Name:          dto.Name,
		ResponderType: models.IncidentCategory(dto.ResponderType),
		Latitude:      dto.Latitude,
		Longitude:     dto.Longitude,
	}
}

// DecisionToDispatchResponse преобразует решение диспетчера в DTO для ответа
func DecisionToDispatchResponse(incidentID uuid.UUID, decision *models.DispatchDecision) *DispatchResponse {
	if decision.Outcome == models.OutcomeAssigned {
		return &DispatchResponse{
			Success:    true,
			Message:    fmt.Sprintf("responder %s assigned, %.1f km away", decision.ResponderName, decision.DistanceKm),
			IncidentID: incidentID,
			Responder: &AssignedResponderResponse{
				ID:         decision.ResponderID,
				Name:       decision.ResponderName,
				DistanceKm: decision.DistanceKm,
			},
		}
	}
	return &DispatchResponse{
		Success:    true,
		Message:    "no responder currently available, you will be notified",
		IncidentID: incidentID,
	}
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	return &IncidentResponse{
		ID:                    model.ID,
		ReporterID:            model.ReporterID,
		Category:              string(model.Category),
		Description:           model.Description,
		Latitude:              model.Latitude,
		Longitude:             model.Longitude,
		Status:                string(model.Status),
		AssignedResponderID:   model.AssignedResponderID,
		AssignedResponderName: model.AssignedResponderName,
		CreatedAt:             model.CreatedAt,
		AssignedAt:            model.AssignedAt,
		ReassignedAt:          model.ReassignedAt,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

// ModelToResponderResponse преобразует доменную модель в DTO для ответа
func ModelToResponderResponse(model *models.Responder) *ResponderResponse {
	return &ResponderResponse{
		ID:                 model.ID,
		Name:               model.Name,
		ResponderType:      string(model.ResponderType),
		AvailabilityStatus: string(model.AvailabilityStatus),
		ApprovalStatus:     string(model.ApprovalStatus),
		Latitude:           model.Latitude,
		Longitude:          model.Longitude,
		CurrentLoad:        model.CurrentLoad,
		LastAssignedAt:     model.LastAssignedAt,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

// ModelsToResponderResponses преобразует слайс моделей в слайс DTO
func ModelsToResponderResponses(models []*models.Responder) []*ResponderResponse {
	responses := make([]*ResponderResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToResponderResponse(model)
	}
	return responses
}
