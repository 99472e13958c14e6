package service

import (
	"errors"
	"fmt"
)

// Sentinel kinds for mutation errors.
var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition is returned when a view transition is not allowed
	// from the session's current state.
	ErrInvalidTransition = errors.New("invalid view transition")
)

// Validation fields, also used as metric labels.
const (
	FieldTopicName     = "topic_name"
	FieldAttributes    = "attributes"
	FieldAttributeName = "attribute_name"
	FieldImportance    = "importance"
	FieldSubjectName   = "subject_name"
	FieldScores        = "scores"
)

// ValidationError rejects an entity before it is committed. It is reported to
// the caller for re-prompting and never used for control flow.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
