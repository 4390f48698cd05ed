// Package accommodation merges stacked time-accommodation flags into a
// single extra-time grant per student.
package accommodation

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"time"
)

// Record is one (student, accommodation-type) flag from a roster export.
// The percentage is carried by the accommodation type, not summed across
// duplicate rows.
type Record struct {
	StudentID  int64
	Name       string
	Multiplier float64
}

// ExtraTime is the derived grant for one student on a timed assessment.
type ExtraTime struct {
	StudentID int64
	Extra     time.Duration
}

// Minutes returns the grant in whole minutes, the unit the gradebook
// service expects for quiz extensions.
func (e ExtraTime) Minutes() int {
	return int(e.Extra / time.Minute)
}

// percentPattern matches the percentage embedded in an accommodation
// column name, e.g. "Exams- 50%-Extended Time".
var percentPattern = regexp.MustCompile(`([0-9]{1,3})%`)

// MultiplierFromName extracts the percentage multiplier from an
// accommodation type's name. Returns false when the name carries none.
func MultiplierFromName(name string) (float64, bool) {
	m := percentPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	pct, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return float64(pct) / 100, true
}

// Aggregate merges records into one grant per student: duplicate rows for
// the same (student, type) collapse by max, then the max across types
// wins. Stacked accommodations never sum. The grant is
// ceil(base minutes * multiplier), rounded up so accommodated time is
// never under-granted. Output is sorted by student id, so shuffled input
// yields identical results.
func Aggregate(records []Record, base time.Duration) ([]ExtraTime, error) {
	// (student, type) -> max multiplier; repeated export rows collapse here.
	byType := make(map[int64]map[string]float64)
	for _, r := range records {
		if r.Multiplier <= 0 {
			continue
		}
		types, ok := byType[r.StudentID]
		if !ok {
			types = make(map[string]float64)
			byType[r.StudentID] = types
		}
		if r.Multiplier > types[r.Name] {
			types[r.Name] = r.Multiplier
		}
	}

	if len(byType) == 0 {
		return nil, ErrNoAccommodations
	}

	grants := make([]ExtraTime, 0, len(byType))
	for studentID, types := range byType {
		best := 0.0
		for _, mult := range types {
			if mult > best {
				best = mult
			}
		}
		extraMinutes := math.Ceil(base.Minutes() * best)
		grants = append(grants, ExtraTime{
			StudentID: studentID,
			Extra:     time.Duration(extraMinutes) * time.Minute,
		})
	}

	sort.Slice(grants, func(i, j int) bool { return grants[i].StudentID < grants[j].StudentID })
	return grants, nil
}
