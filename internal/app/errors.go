package service

import "errors"

var (
	// ErrNoGradedSubmissions is returned when the selected assignment has
	// nothing graded to work from.
	ErrNoGradedSubmissions = errors.New("assignment has no graded submissions")

	// ErrNoRubric is returned when a mastery assignment ends up without a
	// usable rubric.
	ErrNoRubric = errors.New("no rubric available")

	// ErrSyncDeclined is returned when the operator declines the publish
	// step the scan-service sync requires.
	ErrSyncDeclined = errors.New("cannot proceed without syncing the scan service")

	// ErrNoOutcomes is returned when the course has no outcomes to build
	// an exam rubric from.
	ErrNoOutcomes = errors.New("course has no outcomes")
)
