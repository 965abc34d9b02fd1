package models

import (
	"time"

	"github.com/google/uuid"
)

// IncidentCategory - категория инцидента, совпадает с типом ответственного
type IncidentCategory string

const (
	CategoryMedical IncidentCategory = "medical"
	CategoryFire    IncidentCategory = "fire"
	CategoryPolice  IncidentCategory = "police"
	CategoryTraffic IncidentCategory = "traffic"
)

// IncidentStatus - статус жизненного цикла инцидента
type IncidentStatus string

const (
	IncidentStatusPending    IncidentStatus = "pending"
	IncidentStatusAssigned   IncidentStatus = "assigned"
	IncidentStatusQueued     IncidentStatus = "queued"
	IncidentStatusUnassigned IncidentStatus = "unassigned"
	IncidentStatusInProgress IncidentStatus = "in_progress"
	IncidentStatusResolved   IncidentStatus = "resolved"
)

// ActiveAssignmentStatus - единственное значение статуса "есть ответственный,
// инцидент не завершен". Используется и при назначении, и в выборке свипа,
// чтобы значения в двух местах не разошлись.
const ActiveAssignmentStatus = IncidentStatusAssigned

type Incident struct {
	ID                    uuid.UUID        `json:"id"`
	ReporterID            string           `json:"reporter_id"`
	Category              IncidentCategory `json:"category"`
	Description           string           `json:"description"`
	Latitude              float64          `json:"latitude"`
	Longitude             float64          `json:"longitude"`
	Status                IncidentStatus   `json:"status"`
	AssignedResponderID   *uuid.UUID       `json:"assigned_responder_id,omitempty"`
	AssignedResponderName string           `json:"assigned_responder_name,omitempty"`
	CreatedAt             time.Time        `json:"created_at"`
	AssignedAt            *time.Time       `json:"assigned_at,omitempty"`
	ReassignedAt          *time.Time       `json:"reassigned_at,omitempty"`
}
