package v1

import (
	"time"

	"github.com/google/uuid"
)

// ReportIncidentRequest DTO для сообщения об инциденте
// @Description DTO для сообщения об инциденте
type ReportIncidentRequest struct {
	ReporterID  string  `json:"reporter_id" validate:"required"`
	Category    string  `json:"category" validate:"required,oneof=medical fire police traffic"`
	Description string  `json:"description,omitempty"`
	Latitude    float64 `json:"latitude" validate:"required,latitude"`
	Longitude   float64 `json:"longitude" validate:"required,longitude"`
}

// AssignedResponderResponse DTO с назначенным ответственным
// @Description DTO с назначенным ответственным
type AssignedResponderResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	DistanceKm float64   `json:"distance_km"`
}

// DispatchResponse DTO для ответа на сообщение об инциденте
// @Description DTO для ответа на сообщение об инциденте
type DispatchResponse struct {
	Success    bool                       `json:"success"`
	Message    string                     `json:"message"`
	IncidentID uuid.UUID                  `json:"incident_id,omitempty"`
	Responder  *AssignedResponderResponse `json:"responder,omitempty"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID                    uuid.UUID  `json:"id"`
	ReporterID            string     `json:"reporter_id"`
	Category              string     `json:"category"`
	Description           string     `json:"description,omitempty"`
	Latitude              float64    `json:"latitude"`
	Longitude             float64    `json:"longitude"`
	Status                string     `json:"status"`
	AssignedResponderID   *uuid.UUID `json:"assigned_responder_id,omitempty"`
	AssignedResponderName string     `json:"assigned_responder_name,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	AssignedAt            *time.Time `json:"assigned_at,omitempty"`
	ReassignedAt          *time.Time `json:"reassigned_at,omitempty"`
}

// RegisterResponderRequest DTO для регистрации ответственного
// @Description DTO для регистрации ответственного
type RegisterResponderRequest struct {
	Name          string   `json:"name" validate:"required,min=2,max=255"`
	ResponderType string   `json:"responder_type" validate:"required,oneof=medical fire police traffic"`
	Latitude      *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude     *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

// ResponderResponse DTO для ответа с информацией об ответственном
// @Description DTO для ответа с информацией об ответственном
type ResponderResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	ResponderType      string     `json:"responder_type"`
	AvailabilityStatus string     `json:"availability_status"`
	ApprovalStatus     string     `json:"approval_status"`
	Latitude           *float64   `json:"latitude,omitempty"`
	Longitude          *float64   `json:"longitude,omitempty"`
	CurrentLoad        int        `json:"current_load"`
	LastAssignedAt     *time.Time `json:"last_assigned_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// UpdateApprovalRequest DTO для решения по заявке ответственного
// @Description DTO для решения по заявке ответственного
type UpdateApprovalRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// UpdateLocationRequest DTO для координат ответственного
// @Description DTO для координат ответственного
type UpdateLocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"required,latitude"`
	Longitude float64 `json:"longitude" validate:"required,longitude"`
}

// ChangeAvailabilityRequest DTO для смены статуса доступности
// @Description DTO для смены статуса доступности
type ChangeAvailabilityRequest struct {
	Status string `json:"status" validate:"required,oneof=available busy unavailable"`
}

// SweepResponse DTO с итогами обработки инцидентов при смене доступности
// @Description DTO с итогами обработки инцидентов при смене доступности
type SweepResponse struct {
	Reassigned int `json:"reassigned"`
	Unassigned int `json:"unassigned"`
}
