package accommodation

import "errors"

// Sentinel kinds for accommodation errors.
var (
	// ErrNoAccommodations means no qualifying records remained after
	// filtering. The workflow aborts instead of uploading an empty batch.
	ErrNoAccommodations = errors.New("no time accommodations found")
)
