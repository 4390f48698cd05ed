package rubric

import "errors"

// Sentinel kinds for rubric mapping errors.
var (
	// ErrEmptyRubric means a rubric criterion carried no rating bands.
	ErrEmptyRubric = errors.New("rubric has no rating bands")

	// ErrInvalidMaxScore means the maximum achievable score is not positive.
	ErrInvalidMaxScore = errors.New("maximum score must be positive")

	// ErrInvalidBound marks an out-of-range operator input. It is
	// recovered inside Negotiate by re-prompting and never escapes it.
	ErrInvalidBound = errors.New("invalid threshold bound")
)
