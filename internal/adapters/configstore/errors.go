package configstore

import "errors"

var (
	// ErrCourseExists is returned when adding a course name already in use.
	ErrCourseExists = errors.New("course already exists")

	// ErrCourseNotFound is returned when no course matches the given name.
	ErrCourseNotFound = errors.New("course not found")

	// ErrInvalidName is returned for reserved or malformed course names.
	ErrInvalidName = errors.New("invalid course name")

	// ErrLoadStore is returned when the store file cannot be read.
	ErrLoadStore = errors.New("failed to load course registry")

	// ErrSaveStore is returned when the store file cannot be written.
	ErrSaveStore = errors.New("failed to save course registry")
)
