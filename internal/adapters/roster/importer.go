// Package roster reads student-facing CSV exports: accommodation rosters
// from the accessibility office and score exports from the exam-scanning
// service. Rows are keyed by email and resolved against the course
// enrollment before anything downstream sees them.
package roster

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/coursekit/mastery/internal/domain/accommodation"
	"github.com/coursekit/mastery/pkg/logger"
)

const (
	columnSchoolID   = "School ID"
	columnEmail      = "Email"
	columnStatus     = "Status"
	columnTotalScore = "Total Score"
	columnMaxPoints  = "Max Points"

	statusMissing = "Missing"
	flagGranted   = "Yes"
)

var (
	// accommodationColumn matches exam accommodation columns such as
	// "Exams- 50%-Extended Time".
	accommodationColumn = regexp.MustCompile(`^Exams- ?[0-9]{1,3}%-`)

	// questionColumn matches per-question score columns such as
	// "1: Chain Rule [Q3] (3.0 pts)".
	questionColumn = regexp.MustCompile(`^[0-9]+: (.*?) \([0-9.]+ pts\)$`)
)

// Importer loads CSV exports and resolves emails to gradebook user ids.
type Importer struct {
	testStudentID string
	logger        logger.Logger
}

func NewImporter(opts ...Option) *Importer {
	im := &Importer{
		logger: logger.Named("roster"),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Accommodations reads an accommodation roster export. Each granted exam
// accommodation becomes one Record carrying the multiplier embedded in
// its column name. Rows for the configured test student are dropped,
// rows whose email is not enrolled are skipped with a warning, and two
// rows resolving to the same student are an error.
func (im *Importer) Accommodations(ctx context.Context, path string, emails map[string]int64) ([]accommodation.Record, error) {
	rows, _, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	var records []accommodation.Record
	seen := make(map[int64]bool)
	for _, row := range rows {
		if im.testStudentID != "" && row[columnSchoolID] == im.testStudentID {
			continue
		}
		email := strings.TrimSpace(row[columnEmail])
		if email == "" {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, columnEmail)
		}
		studentID, ok := emails[email]
		if !ok {
			im.logger.Warn(ctx, "skipping accommodation row for unenrolled email",
				logger.String("email", email))
			continue
		}
		if seen[studentID] {
			return nil, fmt.Errorf("%w: student %d", ErrDuplicateStudent, studentID)
		}
		seen[studentID] = true
		for column, value := range row {
			if !accommodationColumn.MatchString(column) || value != flagGranted {
				continue
			}
			mult, ok := accommodation.MultiplierFromName(column)
			if !ok {
				continue
			}
			records = append(records, accommodation.Record{
				StudentID:  studentID,
				Name:       column,
				Multiplier: mult,
			})
		}
	}
	return records, nil
}

// ExamSubmission is one resolved row of a scan-service score export.
type ExamSubmission struct {
	StudentID  int64
	TotalScore float64
	MaxPoints  float64
	Questions  map[string]float64
}

// ExamTable is a score export with its question columns in file order.
type ExamTable struct {
	Questions []string
	Rows      []ExamSubmission
}

// QuestionTitle extracts the question text from a score column header,
// e.g. "1: Chain Rule [Q3] (3.0 pts)" yields "Chain Rule [Q3]".
func QuestionTitle(column string) (string, bool) {
	m := questionColumn.FindStringSubmatch(column)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// MaxPoints returns the export's points possible, taken from the first
// row since the scan service repeats it on every row.
func (t *ExamTable) MaxPoints() float64 {
	if len(t.Rows) == 0 {
		return 0
	}
	return t.Rows[0].MaxPoints
}

// ExamScores reads a scan-service score export. Rows whose status is
// "Missing" are dropped, rows whose email is not enrolled are skipped
// with a warning, and two rows resolving to the same student are an
// error. Question columns keep their file order.
func (im *Importer) ExamScores(ctx context.Context, path string, emails map[string]int64) (*ExamTable, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	table := &ExamTable{}
	for _, column := range header {
		if questionColumn.MatchString(column) {
			table.Questions = append(table.Questions, column)
		}
	}

	seen := make(map[int64]bool)
	for _, row := range rows {
		if row[columnStatus] == statusMissing {
			continue
		}
		email := strings.TrimSpace(row[columnEmail])
		if email == "" {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, columnEmail)
		}
		studentID, ok := emails[email]
		if !ok {
			im.logger.Warn(ctx, "skipping score row for unenrolled email",
				logger.String("email", email))
			continue
		}
		if seen[studentID] {
			return nil, fmt.Errorf("%w: student %d", ErrDuplicateStudent, studentID)
		}
		seen[studentID] = true

		sub := ExamSubmission{
			StudentID:  studentID,
			TotalScore: parseScore(row[columnTotalScore]),
			MaxPoints:  parseScore(row[columnMaxPoints]),
			Questions:  make(map[string]float64, len(table.Questions)),
		}
		for _, column := range table.Questions {
			if value := strings.TrimSpace(row[column]); value != "" {
				sub.Questions[column] = parseScore(value)
			}
		}
		table.Rows = append(table.Rows, sub)
	}

	if len(table.Rows) == 0 {
		return nil, ErrNoSubmissions
	}
	return table, nil
}

// MergeExamTables combines score exports from multiple assessments into
// one table, such as several section-specific quizzes revised together.
// A student appearing in more than one export is an error since the
// merged scores would be ambiguous.
func MergeExamTables(tables ...*ExamTable) (*ExamTable, error) {
	merged := &ExamTable{}
	seenQuestion := make(map[string]bool)
	seenStudent := make(map[int64]bool)
	for _, t := range tables {
		for _, q := range t.Questions {
			if !seenQuestion[q] {
				seenQuestion[q] = true
				merged.Questions = append(merged.Questions, q)
			}
		}
		for _, row := range t.Rows {
			if seenStudent[row.StudentID] {
				return nil, fmt.Errorf("%w: student %d", ErrDuplicateStudent, row.StudentID)
			}
			seenStudent[row.StudentID] = true
			merged.Rows = append(merged.Rows, row)
		}
	}
	if len(merged.Rows) == 0 {
		return nil, ErrNoSubmissions
	}
	return merged, nil
}

// readCSV loads a file as ordered header names plus one map per row.
// gocsv's map form keeps arbitrary columns, which these exports have, but
// discards column order, so the header is read separately.
func readCSV(path string) ([]map[string]string, []string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read export: %w", err)
	}

	header, err := csv.NewReader(bytes.NewReader(raw)).Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoSubmissions, path)
	}

	rows, err := gocsv.CSVToMaps(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("parse export: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, ErrNoSubmissions
	}
	return rows, header, nil
}

func parseScore(value string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return v
}
