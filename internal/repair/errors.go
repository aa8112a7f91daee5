package repair

import (
	"errors"

	"repairdesk/internal/workflow"
)

var (
	ErrDeviceNotFound   = errors.New("device not found")
	ErrActionNotAllowed = errors.New("action is not allowed")
	ErrNotesRequired    = workflow.ErrNotesRequired
	ErrAlreadyInStatus  = errors.New("device is already in the requested status")
	ErrPaymentsPending  = errors.New("pending payments must be completed first")
	ErrUpdateRejected   = errors.New("status update was rejected")
	ErrUpdateFailed     = errors.New("status update failed")
	ErrMessageFailed    = errors.New("message was not delivered")
	ErrNoCustomerPhone  = errors.New("customer has no phone number")
	ErrInvalidInput     = errors.New("invalid input")
)

// ValidationError — предикат правила не прошёл; Message показывается пользователю.
type ValidationError struct {
	Action  string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Action == "" {
		return e.Message
	}
	return e.Action + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	if e.Err == nil {
		return ErrActionNotAllowed
	}
	return e.Err
}
