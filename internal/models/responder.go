package models

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilityStatus - доступность ответственного для назначения
type AvailabilityStatus string

const (
	AvailabilityAvailable   AvailabilityStatus = "available"
	AvailabilityBusy        AvailabilityStatus = "busy"
	AvailabilityUnavailable AvailabilityStatus = "unavailable"
)

// ApprovalStatus - статус проверки ответственного администратором
type ApprovalStatus string

const (
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Responder представляет ответственного, который может быть назначен на инцидент.
// Кандидат для диспетчеризации только при approved + available.
type Responder struct {
	ID                 uuid.UUID          `json:"id"`
	Name               string             `json:"name"`
	ResponderType      IncidentCategory   `json:"responder_type"`
	AvailabilityStatus AvailabilityStatus `json:"availability_status"`
	ApprovalStatus     ApprovalStatus     `json:"approval_status"`
	Latitude           *float64           `json:"latitude,omitempty"`
	Longitude          *float64           `json:"longitude,omitempty"`
	CurrentLoad        int                `json:"current_load"`
	LastAssignedAt     *time.Time         `json:"last_assigned_at,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// HasLocation сообщает, передавал ли клиент ответственного свои координаты
func (r *Responder) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}
