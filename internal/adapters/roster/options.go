package roster

import "github.com/coursekit/mastery/pkg/logger"

// Option configures the importer.
type Option func(*Importer)

// WithTestStudentID drops rows whose school id matches the course's test
// student, which accommodation exports include.
func WithTestStudentID(id string) Option {
	return func(im *Importer) {
		im.testStudentID = id
	}
}

// WithLogger sets the importer's logger.
func WithLogger(l logger.Logger) Option {
	return func(im *Importer) {
		im.logger = l
	}
}
