package workflow

import "errors"

var (
	// ErrReportNotFound is returned when the report id resolves to nothing
	ErrReportNotFound = errors.New("report not found")

	// ErrForbidden is returned when the actor's role may not perform the action
	ErrForbidden = errors.New("actor role not permitted")

	// ErrValidation is returned for a malformed or incomplete request
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition is returned when the target stage is not a legal
	// successor of the report's current stage
	ErrInvalidTransition = errors.New("invalid stage transition")

	// ErrTransitionConflict is returned when a concurrent transition won the
	// race; the caller may re-read the report and retry
	ErrTransitionConflict = errors.New("concurrent transition conflict")
)
