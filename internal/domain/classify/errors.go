package classify

import "errors"

// Sentinel kinds for classification errors.
var (
	// ErrUnclassifiable means a score matched no rating band. Callers
	// skip the affected student and continue the batch.
	ErrUnclassifiable = errors.New("score matches no rating band")
)
