package rubric

import "github.com/coursekit/mastery/pkg/logger"

// Option applies a configuration option to the Mapper.
type Option func(*Mapper)

// WithStrictBounds rejects first-band thresholds above the maximum score
// instead of warning and accepting them.
func WithStrictBounds(strict bool) Option {
	return func(m *Mapper) {
		m.strict = strict
	}
}

// WithLogger sets a custom logger for the mapper.
func WithLogger(l logger.Logger) Option {
	return func(m *Mapper) {
		if l != nil {
			m.logger = l
		}
	}
}
