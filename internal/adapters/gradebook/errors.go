package gradebook

import "errors"

// Sentinel kinds for gradebook service errors.
var (
	// ErrRemoteService wraps any failed call to the service. Callers
	// report it to the operator; no retries are performed.
	ErrRemoteService = errors.New("gradebook service call failed")

	// ErrJobFailed means a bulk job reached the failed state. The
	// remaining post-grades steps must be skipped.
	ErrJobFailed = errors.New("bulk job failed")
)
