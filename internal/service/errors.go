package service

import "errors"

var (
	// ErrResponderBusy возвращается условной записью назначения, когда ответственный
	// перестал быть available между выборкой кандидатов и коммитом транзакции
	ErrResponderBusy = errors.New("responder is no longer available")

	// ErrIncidentNotAssignable возвращается, когда инцидент уже назначен или завершен
	ErrIncidentNotAssignable = errors.New("incident is not in an assignable state")

	// ErrResponderNotApproved возвращается при попытке сменить доступность
	// до одобрения заявки администратором
	ErrResponderNotApproved = errors.New("responder is not approved")

	ErrResponderNotFound = errors.New("responder not found")
	ErrIncidentNotFound  = errors.New("incident not found")
)
