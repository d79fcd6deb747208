package service

import (
	"encoding/json"

	"bouw-backoffice/internal/model"
	"bouw-backoffice/pkg/apperror"
	"bouw-backoffice/pkg/validator"

	"github.com/google/uuid"
)

// Broadcaster pushes a payload to every connected WebSocket client.
type Broadcaster interface {
	BroadcastMessage(payload []byte)
}

// WarningPublisher accepts stock warnings for asynchronous delivery.
type WarningPublisher interface {
	Publish(evt model.StockWarningRaised)
}

// Actor identifies the authenticated user behind a write.
type Actor struct {
	ID    uuid.UUID
	Name  string
	Email string
}

func (a Actor) payload() map[string]interface{} {
	return map[string]interface{}{
		"id":    a.ID,
		"name":  a.Name,
		"email": a.Email,
	}
}

// validate runs struct validation and reports the first failure.
func validate(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return apperror.Validation(validator.FirstError(errs))
	}
	return nil
}

func broadcast(b Broadcaster, payload map[string]interface{}) {
	if b == nil {
		return
	}
	msg, err := json.Marshal(payload)
	if err != nil {
		return
	}
	b.BroadcastMessage(msg)
}

// referenceError reports a missing referenced record as a validation failure
// and wraps anything else as a store error.
func referenceError(err error, msg string) error {
	err = apperror.Store(err)
	if apperror.IsNotFound(err) {
		return apperror.Validation(msg)
	}
	return err
}
