package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coursekit/mastery/internal/adapters/gradebook"
	"github.com/coursekit/mastery/internal/adapters/roster"
	"github.com/coursekit/mastery/internal/domain/revision"
	"github.com/coursekit/mastery/pkg/logger"
	"github.com/coursekit/mastery/pkg/metrics"
)

const dueDateLayout = "01/02/2006 15:04:05"

// Revise creates follow-up revision quizzes for students who earned
// partial credit, either on a whole quiz or per exam question.
func (s *Service) Revise(ctx context.Context) error {
	idx, err := s.surface.ChooseOne(ctx, "What kind of revisions?",
		[]string{"Quiz revision", "Exam question revisions"})
	if err != nil {
		return err
	}
	if idx == 0 {
		return s.reviseQuiz(ctx)
	}
	return s.reviseExamQuestions(ctx)
}

// reviseQuiz assigns one revision quiz to the students whose receptacle
// score equals the partial-credit target.
func (s *Service) reviseQuiz(ctx context.Context) error {
	receptacle, err := s.selectOrCreateAssignment(ctx, "receptacle")
	if err != nil {
		return err
	}
	subs, err := s.gradebook.GetSubmissions(ctx, receptacle.ID)
	if err != nil {
		return err
	}

	graded := make([]revision.Submission, 0, len(subs))
	for _, sub := range subs {
		if sub.Graded() {
			graded = append(graded, revision.Submission{StudentID: sub.UserID, Score: *sub.Score})
		}
	}
	if len(graded) == 0 {
		return fmt.Errorf("%w: %q", ErrNoGradedSubmissions, receptacle.Name)
	}

	students := revision.ByScoreTarget(graded, s.partialCreditTarget)
	if len(students) == 0 {
		_ = s.surface.Say(ctx, "No students are eligible for revisions.")
		return nil
	}
	_ = s.surface.Say(ctx, fmt.Sprintf("Found %d students eligible for revisions.", len(students)))

	proceed, err := s.surface.Confirm(ctx, "Make a revision?", true)
	if err != nil {
		return err
	}
	if !proceed {
		_ = s.surface.Say(ctx, "Nothing left to do.")
		return nil
	}

	defaultTitle := fmt.Sprintf("%s Revision", receptacle.Name)
	return s.assignRevisionQuiz(ctx, defaultTitle, receptacle.Name, receptacle.HTMLURL, students, false)
}

// reviseExamQuestions walks a merged set of score exports and creates
// one revision quiz per exam question that has students at the
// partial-credit target.
func (s *Service) reviseExamQuestions(ctx context.Context) error {
	table, err := s.collectExamTables(ctx)
	if err != nil {
		return err
	}

	// question column -> students at the target score.
	eligible := make(map[string][]int64)
	var pending []string
	for _, column := range table.Questions {
		var students []int64
		for _, row := range table.Rows {
			if value, ok := row.Questions[column]; ok && value == s.partialCreditTarget {
				students = append(students, row.StudentID)
			}
		}
		if len(students) > 0 {
			eligible[column] = students
			pending = append(pending, column)
		}
	}
	if len(pending) == 0 {
		_ = s.surface.Say(ctx, "No exam questions require revisions.")
		return nil
	}
	_ = s.surface.Say(ctx, fmt.Sprintf("Found %d questions with students eligible for revisions.", len(pending)))

	proceed, err := s.surface.Confirm(ctx, "Make revisions?", true)
	if err != nil {
		return err
	}
	if !proceed {
		_ = s.surface.Say(ctx, "Nothing left to do.")
		return nil
	}

	exam, err := s.surface.AskText(ctx,
		"Enter name for exam. This will be used as the prefix for all revision quizzes:")
	if err != nil {
		return err
	}
	exam = strings.TrimSuffix(strings.TrimSpace(exam), ":")

	for len(pending) > 0 {
		idx, err := s.surface.ChooseOne(ctx, "Select question for revision:", pending)
		if err != nil {
			return err
		}
		column := pending[idx]
		pending = append(pending[:idx], pending[idx+1:]...)

		title := fmt.Sprintf("%s: %s Revision", exam, questionLabel(column))
		if err := s.assignRevisionQuiz(ctx, title, column, "", eligible[column], true); err != nil {
			return err
		}
	}

	_ = s.surface.Say(ctx, "Done.")
	return nil
}

// collectExamTables asks for score exports until the operator stops,
// then merges them. Duplicate students across files are fatal.
func (s *Service) collectExamTables(ctx context.Context) (*roster.ExamTable, error) {
	emails, err := s.gradebook.EmailIndex(ctx)
	if err != nil {
		return nil, err
	}

	var tables []*roster.ExamTable
	for {
		prompt := "Enter path to a score export (CSV):"
		if len(tables) > 0 {
			prompt = "Enter path to another score export, or leave blank to continue:"
		}
		path, err := s.surface.AskText(ctx, prompt)
		if err != nil {
			return nil, err
		}
		path = strings.TrimSpace(path)
		if path == "" {
			if len(tables) == 0 {
				continue
			}
			break
		}
		table, err := s.importer.ExamScores(ctx, path, emails)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}

	return roster.MergeExamTables(tables...)
}

// assignRevisionQuiz creates a revision quiz from the course's question
// templates, restricts it to the eligible students via an override with
// an operator-confirmed due date, and optionally publishes it.
func (s *Service) assignRevisionQuiz(ctx context.Context, defaultTitle, subject, subjectURL string, students []int64, lockAtDue bool) error {
	course, err := s.store.Course(s.courseName)
	if err != nil {
		return err
	}

	title, err := s.surface.AskText(ctx,
		fmt.Sprintf("Enter name for revision quiz [%s]:", defaultTitle))
	if err != nil {
		return err
	}
	if strings.TrimSpace(title) == "" {
		title = defaultTitle
	}

	groups, err := s.gradebook.ListAssignmentGroups(ctx)
	if err != nil {
		return err
	}
	labels := make([]string, len(groups))
	for i, g := range groups {
		labels[i] = g.Name
	}
	idx, err := s.surface.ChooseOne(ctx, "Select assignment group for revision quiz:", labels)
	if err != nil {
		return err
	}

	description := ""
	if subjectURL != "" {
		description = fmt.Sprintf("Revision for <a href=%q>%s</a>.", subjectURL, subject)
	}
	quiz, err := s.gradebook.CreateQuiz(ctx, gradebook.NewQuiz{
		Title:             title,
		Description:       description,
		QuizType:          "assignment",
		AssignmentGroupID: groups[idx].ID,
		ShuffleAnswers:    false,
	})
	if err != nil {
		return err
	}

	total := 0.0
	for _, template := range course.RevisionQuestions {
		text := strings.ReplaceAll(template.Text, "$assignment", subject)
		if err := s.gradebook.CreateQuizQuestion(ctx, quiz.ID, gradebook.QuizQuestion{
			Name:           template.Name,
			Text:           text,
			Type:           template.Type,
			PointsPossible: template.PointsPossible,
		}); err != nil {
			return err
		}
		total += template.PointsPossible
	}
	if err := s.gradebook.EditQuiz(ctx, quiz.ID, gradebook.QuizPatch{PointsPossible: &total}); err != nil {
		return err
	}
	_ = s.surface.Say(ctx, fmt.Sprintf("Created revision quiz %s (%d).", title, quiz.ID))

	due, err := s.askDueDate(ctx)
	if err != nil {
		return err
	}

	override := gradebook.Override{
		DueAt:      due.Format(time.RFC3339),
		StudentIDs: students,
	}
	if lockAtDue {
		override.LockAt = override.DueAt
	}
	if err := s.gradebook.CreateOverride(ctx, quiz.AssignmentID, override); err != nil {
		return err
	}
	visible := true
	if err := s.gradebook.EditAssignment(ctx, quiz.AssignmentID, gradebook.AssignmentPatch{
		OnlyVisibleToOverrides: &visible,
	}); err != nil {
		return err
	}
	metrics.RecordRevisionsAssigned(len(students))
	s.logger.Info(ctx, "revision assigned",
		logger.String("quiz", title),
		logger.Int("students", len(students)))
	_ = s.surface.Say(ctx, fmt.Sprintf("Assigned revision to %d students.", len(students)))

	publish, err := s.surface.Confirm(ctx, "Publish revision quiz?", true)
	if err != nil {
		return err
	}
	if err := s.gradebook.EditQuiz(ctx, quiz.ID, gradebook.QuizPatch{
		Published:              &publish,
		OnlyVisibleToOverrides: &visible,
	}); err != nil {
		return err
	}
	if publish {
		_ = s.surface.Say(ctx, "Published revision.")
	}
	return nil
}

// askDueDate reads a due date in the configured timezone, re-prompting
// until the operator confirms a parseable one.
func (s *Service) askDueDate(ctx context.Context) (time.Time, error) {
	loc := s.location(ctx)
	for {
		raw, err := s.surface.AskText(ctx, "Enter due date for revision (mm/dd/yyyy hh:mm:ss):")
		if err != nil {
			return time.Time{}, err
		}
		due, err := time.ParseInLocation(dueDateLayout, strings.TrimSpace(raw), loc)
		if err != nil {
			_ = s.surface.Say(ctx, "Could not parse due date! Try again.")
			continue
		}
		ok, err := s.surface.Confirm(ctx,
			fmt.Sprintf("Due date will be %s. Ok?", due.Format("01/02/2006 at 15:04:05")), true)
		if err != nil {
			return time.Time{}, err
		}
		if ok {
			return due, nil
		}
	}
}

// questionLabel trims a question column header down to its title for
// quiz naming.
func questionLabel(column string) string {
	if title, ok := roster.QuestionTitle(column); ok {
		return title
	}
	return column
}
