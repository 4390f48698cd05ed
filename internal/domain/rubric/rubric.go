// Package rubric implements the score-to-rating threshold mapper.
//
// A rubric is an ordered list of rating bands, best to worst. The mapper
// negotiates one minimum-score bound per band with the operator so that
// every non-negative score classifies into exactly one band.
package rubric

import "sort"

// RatingBand is one qualitative level of a rubric criterion.
type RatingBand struct {
	Points      float64
	Description string
}

// Threshold pairs an inclusive minimum score bound with the points value
// of the band it admits.
type Threshold struct {
	Bound  float64
	Points float64
}

// ThresholdMap is an ordered set of thresholds, bounds strictly
// decreasing. The final bound is always 0 so every non-negative score
// classifies. It is built once per grading session and treated as
// immutable after Negotiate returns it.
type ThresholdMap []Threshold

// Valid reports whether bounds strictly decrease and end at 0.
func (m ThresholdMap) Valid() bool {
	if len(m) == 0 {
		return false
	}
	for i := 1; i < len(m); i++ {
		if m[i].Bound >= m[i-1].Bound {
			return false
		}
	}
	return m[len(m)-1].Bound == 0
}

// sortBands returns a copy of bands ordered by points descending.
func sortBands(bands []RatingBand) []RatingBand {
	sorted := make([]RatingBand, len(bands))
	copy(sorted, bands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Points > sorted[j].Points
	})
	return sorted
}
