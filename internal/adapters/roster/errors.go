package roster

import "errors"

var (
	// ErrNoSubmissions is returned when an export holds no usable rows.
	ErrNoSubmissions = errors.New("file contains no submissions")

	// ErrMissingColumn is returned when an export lacks a required column.
	ErrMissingColumn = errors.New("file is missing a required column")

	// ErrDuplicateStudent is returned when merged exports repeat a student.
	ErrDuplicateStudent = errors.New("files contain duplicate student emails")
)
