package models

import (
	"github.com/google/uuid"
)

// DispatchOutcome - исход маршрутизации инцидента
type DispatchOutcome string

const (
	OutcomeAssigned DispatchOutcome = "assigned"
	OutcomeQueued   DispatchOutcome = "queued"
)

// QueuedReasonNoResponder - причина постановки в очередь при пустом наборе кандидатов
const QueuedReasonNoResponder = "no_available_responder"

// DispatchDecision - решение диспетчера по одному вызову маршрутизации.
// Не сохраняется в бд, живет только до ответа вызывающей стороне.
type DispatchDecision struct {
	Outcome       DispatchOutcome `json:"outcome"`
	ResponderID   uuid.UUID       `json:"responder_id,omitempty"`
	ResponderName string          `json:"responder_name,omitempty"`
	DistanceKm    float64         `json:"distance_km,omitempty"`
	Reason        string          `json:"reason,omitempty"`
}

// SweepResult - итог обработки инцидентов ответственного, ушедшего в offline
type SweepResult struct {
	Reassigned int `json:"reassigned"`
	Unassigned int `json:"unassigned"`
}
