// Package schema validates attempt records before they are persisted.
package schema

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"explanation-coach-service/internal/models"
)

// ErrInvalidAttempt wraps every validation failure.
var ErrInvalidAttempt = errors.New("invalid attempt")

// Validator checks attempt records.
type Validator struct{}

// New creates a Validator.
func New() *Validator {
	return &Validator{}
}

// Validate checks the fields the store relies on: a UUID attempt id, an
// ISO-8601 timestamp and a non-empty concept.
func (v *Validator) Validate(a *models.Attempt) error {
	if a == nil {
		return fmt.Errorf("%w: nil attempt", ErrInvalidAttempt)
	}
	if _, err := uuid.Parse(a.AttemptID); err != nil {
		return fmt.Errorf("%w: attempt_id %q is not a UUID", ErrInvalidAttempt, a.AttemptID)
	}
	if _, err := time.Parse(time.RFC3339Nano, a.Timestamp); err != nil {
		return fmt.Errorf("%w: timestamp %q is not ISO-8601", ErrInvalidAttempt, a.Timestamp)
	}
	if strings.TrimSpace(a.Concept) == "" {
		return fmt.Errorf("%w: concept is empty", ErrInvalidAttempt)
	}
	return nil
}
