package service

import (
	"context"
	"fmt"

	"github.com/coursekit/mastery/internal/adapters/gradebook"
	"github.com/coursekit/mastery/internal/adapters/roster"
	"github.com/coursekit/mastery/internal/domain/classify"
	"github.com/coursekit/mastery/internal/domain/rubric"
	"github.com/coursekit/mastery/pkg/logger"
	"github.com/coursekit/mastery/pkg/metrics"
)

// gradeSource is the capability set an assessment source must provide:
// where graded scores come from, how the rubric is attached, and how the
// grade payload is built. One implementation per source replaces the
// near-duplicate graders this grew out of.
type gradeSource interface {
	name() string
	fetchScores(ctx context.Context) (*gradeRun, error)
	fetchRubric(ctx context.Context, run *gradeRun) error
	buildGrades(ctx context.Context, run *gradeRun) (gradebook.GradeData, error)
}

// gradeRun is the transient state of one grading pass. It is created
// when scores are fetched and discarded when the upload finishes.
type gradeRun struct {
	receptacle gradebook.Assignment
	mastery    gradebook.Assignment
	rub        *gradebook.Rubric
	scores     []classify.Score

	// Scan exam only: the imported table and the matched question
	// columns, ordered to pair with the rubric's criteria. Keying per
	// column keeps two questions on the same outcome distinct.
	exam    *roster.ExamTable
	columns []string
}

// Grade runs one grading workflow against the source the operator picks.
func (s *Service) Grade(ctx context.Context) error {
	sources := []gradeSource{
		&nativeQuizSource{s: s},
		&scanQuizSource{s: s},
		&scanExamSource{s: s},
	}
	labels := make([]string, len(sources))
	for i, src := range sources {
		labels[i] = src.name()
	}

	idx, err := s.surface.ChooseOne(ctx, "What kind of grading?", labels)
	if err != nil {
		return err
	}
	src := sources[idx]

	_ = s.surface.Say(ctx, fmt.Sprintf("Now grading: %s", src.name()))

	run, err := src.fetchScores(ctx)
	if err != nil {
		return err
	}
	if err := src.fetchRubric(ctx, run); err != nil {
		return err
	}
	grades, err := src.buildGrades(ctx, run)
	if err != nil {
		return err
	}
	return s.upload(ctx, run.receptacle, run.mastery, grades)
}

// upload pushes the grade payload to the mastery assignment. A failed
// bulk job aborts before any post-grades step so nothing references a
// broken upload.
func (s *Service) upload(ctx context.Context, receptacle, mastery gradebook.Assignment, grades gradebook.GradeData) error {
	_ = s.surface.Say(ctx, fmt.Sprintf("Grades were processed for %d students.", len(grades)))
	if len(grades) == 0 {
		_ = s.surface.Say(ctx, "No grades were processed. Please try again.")
		return nil
	}

	notice := ""
	if !mastery.Published {
		notice = " This will publish the mastery assignment."
	}
	push, err := s.surface.Confirm(ctx, "Upload scores?"+notice, true)
	if err != nil {
		return err
	}
	if !push {
		_ = s.surface.Say(ctx, "Nothing left to do.")
		return nil
	}

	if !mastery.Published {
		published := true
		if err := s.gradebook.EditAssignment(ctx, mastery.ID, gradebook.AssignmentPatch{Published: &published}); err != nil {
			return err
		}
		_ = s.surface.Say(ctx, "Published mastery assignment.")
	}

	_ = s.surface.Say(ctx, "Uploading scores...")
	handle, err := s.gradebook.BulkUpdateGrades(ctx, mastery.ID, grades)
	if err != nil {
		return err
	}
	if err := s.gradebook.AwaitJob(ctx, handle); err != nil {
		return fmt.Errorf("bulk grade upload: %w", err)
	}
	s.logger.Info(ctx, "grades uploaded",
		logger.Int("students", len(grades)),
		logger.Int64("assignment", mastery.ID))

	postReceptacle, err := s.surface.Confirm(ctx, "Post receptacle grades to all students?", true)
	if err != nil {
		return err
	}
	if postReceptacle {
		if err := s.gradebook.PostGrades(ctx, receptacle.ID); err != nil {
			return err
		}
		_ = s.surface.Say(ctx, "Posted receptacle grades.")
	}

	if mastery.ID != receptacle.ID {
		postMastery, err := s.surface.Confirm(ctx, "Post mastery grades to all students?", true)
		if err != nil {
			return err
		}
		if postMastery {
			if err := s.gradebook.PostGrades(ctx, mastery.ID); err != nil {
				return err
			}
			_ = s.surface.Say(ctx, "Posted mastery grades.")
		}
	}

	_ = s.surface.Say(ctx, "Done.")
	return nil
}

// gradedScores filters submissions down to usable scores.
func gradedScores(subs []gradebook.Submission) []classify.Score {
	scores := make([]classify.Score, 0, len(subs))
	for _, sub := range subs {
		if sub.Graded() {
			scores = append(scores, classify.Score{StudentID: sub.UserID, Value: *sub.Score})
		}
	}
	return scores
}

// chooseMastery picks the assignment mastery ratings land on, defaulting
// to the receptacle itself.
func (s *Service) chooseMastery(ctx context.Context, receptacle gradebook.Assignment) (gradebook.Assignment, error) {
	same, err := s.surface.Confirm(ctx, "Use the same assignment for mastery?", true)
	if err != nil {
		return gradebook.Assignment{}, err
	}
	if same {
		return receptacle, nil
	}
	return s.selectOrCreateAssignment(ctx, "mastery")
}

// selectOrCreateAssignment offers the existing receptacle-shaped
// assignments or creates a fresh one.
func (s *Service) selectOrCreateAssignment(ctx context.Context, kind string) (gradebook.Assignment, error) {
	choice, err := s.surface.ChooseOne(ctx,
		fmt.Sprintf("Select existing %s or create new?", kind),
		[]string{"Select from list", "Create new"})
	if err != nil {
		return gradebook.Assignment{}, err
	}

	if choice == 0 {
		assignments, err := s.gradebook.ListAssignments(ctx)
		if err != nil {
			return gradebook.Assignment{}, err
		}
		pool := make([]gradebook.Assignment, 0, len(assignments))
		labels := make([]string, 0, len(assignments))
		for _, a := range assignments {
			if a.IsReceptacle() {
				pool = append(pool, a)
				labels = append(labels, a.Name)
			}
		}
		idx, err := s.surface.ChooseOne(ctx, fmt.Sprintf("Select %s:", kind), labels)
		if err != nil {
			return gradebook.Assignment{}, err
		}
		return pool[idx], nil
	}

	name, err := s.surface.AskText(ctx, fmt.Sprintf("Enter name for new %s:", kind))
	if err != nil {
		return gradebook.Assignment{}, err
	}
	created, err := s.gradebook.CreateAssignment(ctx, gradebook.NewAssignment{
		Name:               name,
		GradingType:        "points",
		SubmissionTypes:    []string{"none"},
		PointsPossible:     3,
		OmitFromFinalGrade: true,
		NotifyOfUpdate:     false,
	})
	if err != nil {
		return gradebook.Assignment{}, err
	}
	_ = s.surface.Say(ctx, fmt.Sprintf("Created assignment %s.", name))
	return created, nil
}

// ensureRubric returns the mastery assignment's rubric, attaching one of
// the course's premade rubrics when it has none or the operator wants it
// replaced.
func (s *Service) ensureRubric(ctx context.Context, mastery gradebook.Assignment) (*gradebook.Rubric, error) {
	existing, err := s.gradebook.GetRubric(ctx, mastery.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		replace, err := s.surface.Confirm(ctx,
			fmt.Sprintf("The mastery assignment has rubric %q. Replace rubric?", existing.Title), false)
		if err != nil {
			return nil, err
		}
		if !replace {
			return existing, nil
		}
	}

	rubrics, err := s.gradebook.ListCourseRubrics(ctx)
	if err != nil {
		return nil, err
	}
	if len(rubrics) == 0 {
		return nil, fmt.Errorf("%w: no premade rubrics in course", ErrNoRubric)
	}
	labels := make([]string, len(rubrics))
	for i, r := range rubrics {
		labels[i] = r.Title
	}
	idx, err := s.surface.ChooseOne(ctx, "Select a rubric:", labels)
	if err != nil {
		return nil, err
	}
	chosen := rubrics[idx]

	if err := s.gradebook.ApplyRubric(ctx, gradebook.RubricAssociation{
		RubricID:        chosen.ID,
		AssociationID:   mastery.ID,
		AssociationType: "Assignment",
		Purpose:         "grading",
		UseForGrading:   false,
	}); err != nil {
		return nil, err
	}
	_ = s.surface.Say(ctx, fmt.Sprintf("Applied rubric: %s", chosen.Title))
	return &chosen, nil
}

// bandsOf converts a criterion's ratings into rubric bands.
func bandsOf(criterion gradebook.Criterion) []rubric.RatingBand {
	bands := make([]rubric.RatingBand, len(criterion.Ratings))
	for i, r := range criterion.Ratings {
		bands[i] = rubric.RatingBand{Points: r.Points, Description: r.Description}
	}
	return bands
}

// ratingWithPoints finds the criterion rating carrying exactly points.
func ratingWithPoints(criterion gradebook.Criterion, points float64) (gradebook.Rating, bool) {
	for _, r := range criterion.Ratings {
		if r.Points == points {
			return r, true
		}
	}
	return gradebook.Rating{}, false
}

// nativeQuizSource grades a quiz the gradebook service hosts itself:
// scores are already on the quiz and thresholds are negotiated.
type nativeQuizSource struct {
	s *Service
}

func (n *nativeQuizSource) name() string { return "Native quiz" }

func (n *nativeQuizSource) fetchScores(ctx context.Context) (*gradeRun, error) {
	assignments, err := n.s.gradebook.ListAssignments(ctx)
	if err != nil {
		return nil, err
	}
	pool := make([]gradebook.Assignment, 0, len(assignments))
	labels := make([]string, 0, len(assignments))
	for _, a := range assignments {
		if a.Published && a.IsQuizAssignment && a.GradingType == "points" {
			pool = append(pool, a)
			labels = append(labels, a.Name)
		}
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: no published quizzes", ErrNoGradedSubmissions)
	}
	idx, err := n.s.surface.ChooseOne(ctx, "Select quiz:", labels)
	if err != nil {
		return nil, err
	}
	quiz := pool[idx]

	subs, err := n.s.gradebook.GetSubmissions(ctx, quiz.ID)
	if err != nil {
		return nil, err
	}
	scores := gradedScores(subs)
	if len(scores) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoGradedSubmissions, quiz.Name)
	}
	_ = n.s.surface.Say(ctx, fmt.Sprintf("Found %d submissions.", len(scores)))

	return &gradeRun{receptacle: quiz, scores: scores}, nil
}

func (n *nativeQuizSource) fetchRubric(ctx context.Context, run *gradeRun) error {
	mastery, err := n.s.chooseMastery(ctx, run.receptacle)
	if err != nil {
		return err
	}
	rub, err := n.s.ensureRubric(ctx, mastery)
	if err != nil {
		return err
	}
	if rub == nil || len(rub.Criteria) == 0 {
		return ErrNoRubric
	}
	run.mastery = mastery
	run.rub = rub
	return nil
}

func (n *nativeQuizSource) buildGrades(ctx context.Context, run *gradeRun) (gradebook.GradeData, error) {
	criterion := run.rub.Criteria[0]

	maxScore := run.receptacle.PointsPossible
	if maxScore <= 0 {
		maxScore = criterion.Points
	}
	_ = n.s.surface.Say(ctx, fmt.Sprintf("Assignment %q has a maximum score of %g points.",
		run.receptacle.Name, maxScore))

	mapper := rubric.NewMapper(&surfaceAsker{surface: n.s.surface},
		rubric.WithStrictBounds(n.s.strictBounds),
		rubric.WithLogger(n.s.logger))
	thresholds, err := mapper.Negotiate(ctx, maxScore, bandsOf(criterion))
	if err != nil {
		return nil, err
	}

	results, skipped := classify.Batch(run.scores, thresholds)
	for _, skip := range skipped {
		_ = n.s.surface.Say(ctx, fmt.Sprintf("No rating match for score: %g", skip.Value))
	}

	raw := make(map[int64]float64, len(run.scores))
	for _, score := range run.scores {
		raw[score.StudentID] = score.Value
	}

	grades := make(gradebook.GradeData, len(results))
	for _, result := range results {
		rating, ok := ratingWithPoints(criterion, result.Points)
		if !ok {
			_ = n.s.surface.Say(ctx, fmt.Sprintf("No rating match for points: %g", result.Points))
			continue
		}
		grades[result.StudentID] = gradebook.Grade{
			PostedGrade: raw[result.StudentID],
			RubricAssessment: map[string]gradebook.RatingGrade{
				criterion.ID: {RatingID: rating.ID, Points: rating.Points},
			},
		}
	}
	return grades, nil
}

// scanQuizSource grades a quiz held by the exam-scanning service, whose
// scores arrive through a sync into a receptacle assignment. Question
// scores equal band points, so ratings match exactly.
type scanQuizSource struct {
	s *Service
}

func (q *scanQuizSource) name() string { return "Scan-service quiz" }

func (q *scanQuizSource) fetchScores(ctx context.Context) (*gradeRun, error) {
	receptacle, err := q.s.selectOrCreateAssignment(ctx, "receptacle")
	if err != nil {
		return nil, err
	}

	if !receptacle.Published {
		publish, err := q.s.surface.Confirm(ctx,
			"Publish receptacle? This is needed to sync the scan service.", true)
		if err != nil {
			return nil, err
		}
		if !publish {
			return nil, ErrSyncDeclined
		}
		published := true
		if err := q.s.gradebook.EditAssignment(ctx, receptacle.ID, gradebook.AssignmentPatch{Published: &published}); err != nil {
			return nil, err
		}
		receptacle.Published = true
		_ = q.s.surface.Say(ctx, "Published receptacle.")
	}

	if _, err := q.s.surface.AskText(ctx,
		"Go to the scan service and post grades to sync scores. Press <Enter> when syncing is complete."); err != nil {
		return nil, err
	}

	subs, err := q.s.gradebook.GetSubmissions(ctx, receptacle.ID)
	if err != nil {
		return nil, err
	}
	scores := gradedScores(subs)
	if len(scores) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoGradedSubmissions, receptacle.Name)
	}
	_ = q.s.surface.Say(ctx, fmt.Sprintf("Found %d submissions.", len(scores)))

	return &gradeRun{receptacle: receptacle, scores: scores}, nil
}

func (q *scanQuizSource) fetchRubric(ctx context.Context, run *gradeRun) error {
	mastery, err := q.s.chooseMastery(ctx, run.receptacle)
	if err != nil {
		return err
	}
	rub, err := q.s.ensureRubric(ctx, mastery)
	if err != nil {
		return err
	}
	if rub == nil || len(rub.Criteria) == 0 {
		return ErrNoRubric
	}
	run.mastery = mastery
	run.rub = rub
	return nil
}

func (q *scanQuizSource) buildGrades(ctx context.Context, run *gradeRun) (gradebook.GradeData, error) {
	criterion := run.rub.Criteria[0]
	bands := bandsOf(criterion)

	grades := make(gradebook.GradeData, len(run.scores))
	for _, score := range run.scores {
		band, err := classify.ExactMatch(score.Value, bands)
		if err != nil {
			metrics.RecordStudentSkipped()
			_ = q.s.surface.Say(ctx, fmt.Sprintf("No rating match for score: %g", score.Value))
			continue
		}
		rating, ok := ratingWithPoints(criterion, band.Points)
		if !ok {
			continue
		}
		metrics.RecordScoreClassified()
		grades[score.StudentID] = gradebook.Grade{
			PostedGrade: score.Value,
			RubricAssessment: map[string]gradebook.RatingGrade{
				criterion.ID: {RatingID: rating.ID, Points: rating.Points},
			},
		}
	}
	return grades, nil
}
