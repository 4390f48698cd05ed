// Package revision selects students who need a follow-up opportunity.
//
// Two independent policies exist: exact-score matching for partial-credit
// revisions, and mastery counting for checkpoint opportunities.
package revision

import "sort"

// Submission is one student's most recent score on an assessment.
type Submission struct {
	StudentID int64
	Score     float64
}

// OutcomeScore is one outcome-aligned score from any historical attempt.
type OutcomeScore struct {
	StudentID int64
	Score     float64
}

// ByScoreTarget returns students whose score equals target exactly.
// Partial credit in the observed rubrics is always a fixed discrete
// value, so the comparison is deliberately exact rather than a range.
// The result is deduplicated and sorted by student id.
func ByScoreTarget(submissions []Submission, target float64) []int64 {
	seen := make(map[int64]struct{})
	var eligible []int64

	for _, s := range submissions {
		if s.Score != target {
			continue
		}
		if _, ok := seen[s.StudentID]; ok {
			continue
		}
		seen[s.StudentID] = struct{}{}
		eligible = append(eligible, s.StudentID)
	}

	sort.Slice(eligible, func(i, j int) bool { return eligible[i] < eligible[j] })
	return eligible
}

// ByMasteryCount returns the roster students who have fewer than required
// scores at or above cutoff across all attempts. Students meeting the
// count are mastered and excluded; roster students with no scores at all
// are eligible. The result is deduplicated and sorted by student id.
func ByMasteryCount(scores []OutcomeScore, cutoff float64, required int, roster []int64) []int64 {
	counts := make(map[int64]int)
	for _, s := range scores {
		if s.Score >= cutoff {
			counts[s.StudentID]++
		}
	}

	seen := make(map[int64]struct{})
	var eligible []int64
	for _, id := range roster {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if counts[id] >= required {
			continue
		}
		eligible = append(eligible, id)
	}

	sort.Slice(eligible, func(i, j int) bool { return eligible[i] < eligible[j] })
	return eligible
}
