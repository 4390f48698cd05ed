package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/coursekit/mastery/internal/adapters/gradebook"
	"github.com/coursekit/mastery/internal/adapters/roster"
	"github.com/coursekit/mastery/internal/domain/classify"
	"github.com/coursekit/mastery/pkg/metrics"
)

// tokenPattern extracts the bracketed tag shared between a question
// title and its outcome, e.g. "[Q3]" in "Chain Rule [Q3]".
var tokenPattern = regexp.MustCompile(`\[(.*?)\]`)

// scanExamSource grades a scanned exam from a score export: one rubric
// criterion per exam question, each built from the course outcome the
// question maps to. Question scores equal band points.
type scanExamSource struct {
	s *Service
}

func (e *scanExamSource) name() string { return "Scan-service exam" }

func (e *scanExamSource) fetchScores(ctx context.Context) (*gradeRun, error) {
	receptacle, err := e.s.selectOrCreateAssignment(ctx, "receptacle")
	if err != nil {
		return nil, err
	}

	emails, err := e.s.gradebook.EmailIndex(ctx)
	if err != nil {
		return nil, err
	}
	path, err := e.s.surface.AskText(ctx, "Enter path to the score export (CSV):")
	if err != nil {
		return nil, err
	}
	table, err := e.s.importer.ExamScores(ctx, path, emails)
	if err != nil {
		return nil, err
	}
	_ = e.s.surface.Say(ctx, fmt.Sprintf("Found %d submissions across %d questions.",
		len(table.Rows), len(table.Questions)))

	if err := e.pushRawScores(ctx, receptacle, table); err != nil {
		return nil, err
	}

	scores := make([]classify.Score, len(table.Rows))
	for i, row := range table.Rows {
		scores[i] = classify.Score{StudentID: row.StudentID, Value: row.TotalScore}
	}
	return &gradeRun{receptacle: receptacle, scores: scores, exam: table}, nil
}

// pushRawScores optionally mirrors the export's total scores onto the
// receptacle so students see them in the gradebook.
func (e *scanExamSource) pushRawScores(ctx context.Context, receptacle gradebook.Assignment, table *roster.ExamTable) error {
	notice := ""
	if !receptacle.Published {
		notice = " This will publish the receptacle assignment."
	}
	push, err := e.s.surface.Confirm(ctx, "Upload receptacle scores?"+notice, false)
	if err != nil || !push {
		return err
	}

	published := true
	points := table.MaxPoints()
	if err := e.s.gradebook.EditAssignment(ctx, receptacle.ID, gradebook.AssignmentPatch{
		Published:      &published,
		PointsPossible: &points,
	}); err != nil {
		return err
	}
	_ = e.s.surface.Say(ctx, "Published receptacle.")

	grades := make(gradebook.GradeData, len(table.Rows))
	for _, row := range table.Rows {
		grades[row.StudentID] = gradebook.Grade{PostedGrade: row.TotalScore}
	}
	handle, err := e.s.gradebook.BulkUpdateGrades(ctx, receptacle.ID, grades)
	if err != nil {
		return err
	}
	if err := e.s.gradebook.AwaitJob(ctx, handle); err != nil {
		return fmt.Errorf("receptacle score upload: %w", err)
	}
	_ = e.s.surface.Say(ctx, "Uploaded receptacle scores.")
	return nil
}

func (e *scanExamSource) fetchRubric(ctx context.Context, run *gradeRun) error {
	mastery, err := e.s.chooseMastery(ctx, run.receptacle)
	if err != nil {
		return err
	}

	// Scanned exams always get a freshly built rubric; the question set
	// changes every exam.
	columns, outcomeIDs, err := e.matchQuestions(ctx, run.exam.Questions)
	if err != nil {
		return err
	}

	criteria := make([]gradebook.Criterion, 0, len(outcomeIDs))
	total := 0.0
	for _, id := range outcomeIDs {
		outcome, err := e.s.gradebook.GetOutcome(ctx, id)
		if err != nil {
			return err
		}
		total += outcome.PointsPossible
		criteria = append(criteria, gradebook.Criterion{
			Description:       outcome.Title,
			Points:            outcome.PointsPossible,
			MasteryPoints:     outcome.MasteryPoints,
			LearningOutcomeID: outcome.ID,
			Ratings:           outcome.Ratings,
		})
	}

	created, err := e.s.gradebook.CreateRubric(ctx, gradebook.NewRubric{
		Title:           fmt.Sprintf("%s Rubric", mastery.Name),
		PointsPossible:  total,
		Criteria:        criteria,
		AssociationID:   mastery.ID,
		AssociationType: "Assignment",
		Purpose:         "grading",
		UseForGrading:   false,
	})
	if err != nil {
		return err
	}
	_ = e.s.surface.Say(ctx, fmt.Sprintf("Applied rubric: %s", created.Title))

	run.mastery = mastery
	run.rub = &created
	run.columns = columns
	return nil
}

// matchQuestions pairs each question column with a course outcome by the
// bracketed token both carry, falling back to an operator pick when the
// tokens disagree. Returns the matched columns and outcome ids as
// parallel slices in question order, so several questions may share one
// outcome without colliding.
func (e *scanExamSource) matchQuestions(ctx context.Context, questions []string) ([]string, []int64, error) {
	links, err := e.s.gradebook.ListOutcomeLinks(ctx)
	if err != nil {
		return nil, nil, err
	}

	outcomes := make([]gradebook.OutcomeRef, 0, len(links))
	byToken := make(map[string]gradebook.OutcomeRef)
	for _, link := range links {
		ref := link.Outcome
		if ref.ID == 0 {
			continue
		}
		outcomes = append(outcomes, ref)
		if token := tokenOf(ref.Title); token != "" {
			byToken[token] = ref
		}
	}
	if len(outcomes) == 0 {
		return nil, nil, ErrNoOutcomes
	}
	// Natural numeric ordering so outcome 2 sorts before outcome 10.
	sort.SliceStable(outcomes, func(i, j int) bool {
		return naturalLess(outcomes[i].Title, outcomes[j].Title)
	})

	columns := make([]string, 0, len(questions))
	ids := make([]int64, 0, len(questions))
	for _, column := range questions {
		title, ok := roster.QuestionTitle(column)
		if !ok {
			continue
		}

		if ref, ok := byToken[tokenOf(title)]; ok {
			_ = e.s.surface.Say(ctx, fmt.Sprintf("Question %q will map to outcome %q.", column, ref.Title))
			columns = append(columns, column)
			ids = append(ids, ref.ID)
			continue
		}

		labels := make([]string, len(outcomes))
		for i, ref := range outcomes {
			labels[i] = ref.Title
		}
		idx, err := e.s.surface.ChooseOne(ctx,
			fmt.Sprintf("Question %q does not have a match. Select an outcome:", column), labels)
		if err != nil {
			return nil, nil, err
		}
		ref := outcomes[idx]
		_ = e.s.surface.Say(ctx, fmt.Sprintf("Question %q will map to outcome %q.", column, ref.Title))
		columns = append(columns, column)
		ids = append(ids, ref.ID)
	}
	return columns, ids, nil
}

func (e *scanExamSource) buildGrades(ctx context.Context, run *gradeRun) (gradebook.GradeData, error) {
	grades := make(gradebook.GradeData, len(run.exam.Rows))
	for _, row := range run.exam.Rows {
		grade := gradebook.Grade{
			PostedGrade:      row.TotalScore,
			RubricAssessment: make(map[string]gradebook.RatingGrade, len(run.rub.Criteria)),
		}

		for i, criterion := range run.rub.Criteria {
			if i >= len(run.columns) {
				break
			}
			value, answered := row.Questions[run.columns[i]]
			if !answered {
				continue
			}
			band, err := classify.ExactMatch(value, bandsOf(criterion))
			if err != nil {
				metrics.RecordStudentSkipped()
				_ = e.s.surface.Say(ctx, fmt.Sprintf("No rating match for score: %g", value))
				continue
			}
			rating, ok := ratingWithPoints(criterion, band.Points)
			if !ok {
				continue
			}
			metrics.RecordScoreClassified()
			grade.RubricAssessment[criterion.ID] = gradebook.RatingGrade{
				RatingID: rating.ID,
				Points:   rating.Points,
			}
		}
		grades[row.StudentID] = grade
	}
	return grades, nil
}

// tokenOf extracts the bracketed tag from a title, or "" when absent.
func tokenOf(title string) string {
	m := tokenPattern.FindStringSubmatch(title)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// naturalLess orders strings with embedded numbers numerically.
func naturalLess(a, b string) bool {
	as, bs := splitDigits(a), splitDigits(b)
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}
		an, aerr := strconv.Atoi(as[i])
		bn, berr := strconv.Atoi(bs[i])
		if aerr == nil && berr == nil {
			return an < bn
		}
		return strings.ToLower(as[i]) < strings.ToLower(bs[i])
	}
	return len(as) < len(bs)
}

var digitRun = regexp.MustCompile(`[0-9]+|[^0-9]+`)

func splitDigits(s string) []string {
	return digitRun.FindAllString(s, -1)
}
