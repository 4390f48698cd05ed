// Package classify applies a finalized threshold map to raw scores.
package classify

import (
	"fmt"

	"github.com/coursekit/mastery/internal/domain/rubric"
	"github.com/coursekit/mastery/pkg/metrics"
)

// Score is one student's raw score on the receptacle assignment.
type Score struct {
	StudentID int64
	Value     float64
}

// Result is one student's classified rating points.
type Result struct {
	StudentID int64
	Points    float64
}

// Classify returns the points of the band admitting score: the largest
// bound at or below it. Bounds strictly decrease, so the result is
// unique. Pure and safe for concurrent use.
func Classify(score float64, m rubric.ThresholdMap) (float64, error) {
	if len(m) == 0 {
		return 0, fmt.Errorf("%w: empty threshold map", ErrUnclassifiable)
	}

	// Bounds descend, so the first satisfied bound is the largest one
	// at or below the score.
	for _, t := range m {
		if t.Bound <= score {
			return t.Points, nil
		}
	}
	return 0, fmt.Errorf("%w: no bound at or below score %g", ErrUnclassifiable, score)
}

// Batch classifies every score, returning results for matches and the
// scores that had no matching band. Callers report and skip the misses
// rather than aborting the batch.
func Batch(scores []Score, m rubric.ThresholdMap) ([]Result, []Score) {
	results := make([]Result, 0, len(scores))
	var skipped []Score

	for _, s := range scores {
		points, err := Classify(s.Value, m)
		if err != nil {
			metrics.RecordStudentSkipped()
			skipped = append(skipped, s)
			continue
		}
		metrics.RecordScoreClassified()
		results = append(results, Result{StudentID: s.StudentID, Points: points})
	}

	return results, skipped
}

// ExactMatch returns the band whose points equal score exactly. Scanning
// services report band points directly as question scores, so no
// threshold negotiation applies there.
func ExactMatch(score float64, bands []rubric.RatingBand) (rubric.RatingBand, error) {
	for _, b := range bands {
		if b.Points == score {
			return b, nil
		}
	}
	return rubric.RatingBand{}, fmt.Errorf("%w: no rating with points %g", ErrUnclassifiable, score)
}
