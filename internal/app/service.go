// Package service wires the grading workflows together: it owns the
// collaborator handles (gradebook client, roster importer, prompt
// surface, course registry) and dispatches one interactive workflow per
// menu selection.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coursekit/mastery/internal/adapters/configstore"
	"github.com/coursekit/mastery/internal/adapters/gradebook"
	"github.com/coursekit/mastery/internal/adapters/prompt"
	"github.com/coursekit/mastery/internal/adapters/roster"
	"github.com/coursekit/mastery/internal/domain/accommodation"
	"github.com/coursekit/mastery/pkg/logger"
)

// Gradebook is the service's view of the gradebook client. Workflow
// tests substitute a fake.
type Gradebook interface {
	CourseID() int64
	ListAssignments(ctx context.Context) ([]gradebook.Assignment, error)
	CreateAssignment(ctx context.Context, a gradebook.NewAssignment) (gradebook.Assignment, error)
	EditAssignment(ctx context.Context, assignmentID int64, patch gradebook.AssignmentPatch) error
	GetSubmissions(ctx context.Context, assignmentID int64) ([]gradebook.Submission, error)
	GetRubric(ctx context.Context, assignmentID int64) (*gradebook.Rubric, error)
	ListCourseRubrics(ctx context.Context) ([]gradebook.Rubric, error)
	CreateRubric(ctx context.Context, r gradebook.NewRubric) (gradebook.Rubric, error)
	ApplyRubric(ctx context.Context, assoc gradebook.RubricAssociation) error
	BulkUpdateGrades(ctx context.Context, assignmentID int64, grades gradebook.GradeData) (gradebook.JobHandle, error)
	AwaitJob(ctx context.Context, handle gradebook.JobHandle) error
	PostGrades(ctx context.Context, assignmentID int64) error
	ListQuizzes(ctx context.Context) ([]gradebook.Quiz, error)
	CreateQuiz(ctx context.Context, q gradebook.NewQuiz) (gradebook.Quiz, error)
	EditQuiz(ctx context.Context, quizID int64, patch gradebook.QuizPatch) error
	CreateQuizQuestion(ctx context.Context, quizID int64, q gradebook.QuizQuestion) error
	SetQuizExtensions(ctx context.Context, quizID int64, extensions []gradebook.QuizExtension) error
	CreateOverride(ctx context.Context, assignmentID int64, o gradebook.Override) error
	ListStudents(ctx context.Context) ([]gradebook.Student, error)
	EmailIndex(ctx context.Context) (map[string]int64, error)
	ListOutcomeLinks(ctx context.Context) ([]gradebook.OutcomeLink, error)
	GetOutcome(ctx context.Context, outcomeID int64) (gradebook.Outcome, error)
	ListOutcomeResults(ctx context.Context, outcomeID int64) ([]gradebook.OutcomeResult, error)
	ListAssignmentGroups(ctx context.Context) ([]gradebook.AssignmentGroup, error)
}

// Importer is the service's view of the roster importer.
type Importer interface {
	Accommodations(ctx context.Context, path string, emails map[string]int64) ([]accommodation.Record, error)
	ExamScores(ctx context.Context, path string, emails map[string]int64) (*roster.ExamTable, error)
}

// Workflow is one named interactive task.
type Workflow struct {
	Name        string
	Description string
	Run         func(ctx context.Context) error
}

// Service holds the collaborators every workflow draws on.
type Service struct {
	gradebook Gradebook
	surface   prompt.Surface
	importer  Importer
	store     *configstore.Store

	courseName string

	// Policy knobs from configuration.
	strictBounds        bool
	partialCreditTarget float64
	masteryCutoff       float64
	timezone            string

	workflows []Workflow
	logger    logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithGradebook sets the gradebook client.
func WithGradebook(g Gradebook) Option {
	return func(s *Service) {
		s.gradebook = g
	}
}

// WithSurface sets the prompt surface.
func WithSurface(surface prompt.Surface) Option {
	return func(s *Service) {
		s.surface = surface
	}
}

// WithImporter sets the roster importer.
func WithImporter(importer Importer) Option {
	return func(s *Service) {
		s.importer = importer
	}
}

// WithStore sets the course registry.
func WithStore(store *configstore.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithCourseName selects the registry entry whose revision question
// templates the revise workflows use.
func WithCourseName(name string) Option {
	return func(s *Service) {
		s.courseName = name
	}
}

// WithStrictBounds rejects threshold bounds above the maximum score
// instead of warning.
func WithStrictBounds(strict bool) Option {
	return func(s *Service) {
		s.strictBounds = strict
	}
}

// WithPartialCreditTarget sets the exact score marking a student as
// eligible for a revision.
func WithPartialCreditTarget(target float64) Option {
	return func(s *Service) {
		s.partialCreditTarget = target
	}
}

// WithMasteryCutoff sets the minimum outcome score counted toward
// mastery.
func WithMasteryCutoff(cutoff float64) Option {
	return func(s *Service) {
		s.masteryCutoff = cutoff
	}
}

// WithTimezone sets the IANA zone revision due dates are parsed in.
func WithTimezone(tz string) Option {
	return func(s *Service) {
		s.timezone = tz
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs the service and builds its workflow registry. The
// registry is per-instance state, never package-level.
func New(opts ...Option) *Service {
	s := &Service{
		surface:             prompt.NewTerminal(),
		importer:            roster.NewImporter(),
		partialCreditTarget: 2.0,
		masteryCutoff:       3.0,
		timezone:            "America/New_York",
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Named("service")
	}

	s.workflows = []Workflow{
		{
			Name:        "grade",
			Description: "Grade a quiz or exam against a mastery rubric.",
			Run:         s.Grade,
		},
		{
			Name:        "revise",
			Description: "Create and assign revisions for quizzes or exams.",
			Run:         s.Revise,
		},
		{
			Name:        "assign",
			Description: "Assign checkpoint opportunities to students short of mastery.",
			Run:         s.AssignOpportunities,
		},
		{
			Name:        "sds",
			Description: "Set quiz time extensions from an accommodation roster.",
			Run:         s.ScheduleAccommodations,
		},
		{
			Name:        "courses",
			Description: "Manage registered courses.",
			Run:         s.ManageCourses,
		},
	}

	return s
}

// Workflows returns the registry in menu order.
func (s *Service) Workflows() []Workflow {
	return s.workflows
}

// Run presents the top-level menu until the operator quits. A failed
// workflow is reported and the menu comes back; fatal errors never leave
// a partial upload behind, so the process can keep going.
func (s *Service) Run(ctx context.Context) error {
	for {
		choices := make([]string, 0, len(s.workflows)+1)
		for _, w := range s.workflows {
			choices = append(choices, fmt.Sprintf("%s: %s", w.Name, w.Description))
		}
		choices = append(choices, "quit")

		idx, err := s.surface.ChooseOne(ctx, "What would you like to do?", choices)
		if err != nil {
			if errors.Is(err, prompt.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if idx == len(s.workflows) {
			return nil
		}

		w := s.workflows[idx]
		s.logger.Info(ctx, "workflow started", logger.String("workflow", w.Name))

		if err := w.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.logger.Error(ctx, "workflow failed",
				logger.String("workflow", w.Name),
				logger.Error(err))
			_ = s.surface.Warn(ctx, fmt.Sprintf("The %s workflow failed: %v", w.Name, err))
			continue
		}
		s.logger.Info(ctx, "workflow finished", logger.String("workflow", w.Name))
	}
}

// location resolves the configured timezone, falling back to UTC so a
// bad zone name breaks date parsing loudly rather than the whole run.
func (s *Service) location(ctx context.Context) *time.Location {
	loc, err := time.LoadLocation(s.timezone)
	if err != nil {
		s.logger.Warn(ctx, "unknown timezone, using UTC", logger.String("timezone", s.timezone))
		return time.UTC
	}
	return loc
}
