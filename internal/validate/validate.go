// Package validate gates event payloads before they are submitted: required
// fields, a known event type, and a strictly future date.
package validate

import (
	"time"

	"github.com/go-playground/validator/v10"

	"eventhub/pkg/faults"
	"eventhub/pkg/models"
)

// ErrPastOrPresentDate rejects event dates that are not strictly in the
// future at the instant of submission.
var ErrPastOrPresentDate = faults.New(faults.Validation, "event date must be in the future")

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	// eventtype restricts a field to the platform's closed set.
	_ = val.RegisterValidation("eventtype", func(fl validator.FieldLevel) bool {
		return models.ValidEventType(models.EventType(fl.Field().String()))
	})
	return val
}

// EventDate enforces the future-date gate. The check is evaluated against
// the submit instant, not the instant the form was opened, and applies
// identically on create and update.
func EventDate(candidate, now time.Time) error {
	if !candidate.After(now) {
		return ErrPastOrPresentDate
	}
	return nil
}

// CreateEvent checks a create payload, including the date gate against now.
func CreateEvent(req models.CreateEventRequest, now time.Time) error {
	if err := v.Struct(req); err != nil {
		return faults.Wrap(faults.Validation, "invalid event payload", err)
	}
	return EventDate(req.Date, now)
}

// UpdateEvent checks a patch payload. A zero date means the date is not
// being changed and the gate does not apply.
func UpdateEvent(req models.UpdateEventRequest, now time.Time) error {
	if err := v.Struct(req); err != nil {
		return faults.Wrap(faults.Validation, "invalid event payload", err)
	}
	if !req.Date.IsZero() {
		return EventDate(req.Date, now)
	}
	return nil
}
