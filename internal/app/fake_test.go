package service_test

import (
	"context"
	"fmt"

	"github.com/coursekit/mastery/internal/adapters/gradebook"
)

// fakeGradebook is an in-memory Gradebook capturing every write so
// workflow tests can assert on the calls that would have hit the wire.
type fakeGradebook struct {
	assignments    []gradebook.Assignment
	quizzes        []gradebook.Quiz
	submissions    map[int64][]gradebook.Submission
	rubrics        map[int64]*gradebook.Rubric
	courseRubrics  []gradebook.Rubric
	outcomeLinks   []gradebook.OutcomeLink
	outcomes       map[int64]gradebook.Outcome
	outcomeResults map[int64][]gradebook.OutcomeResult
	students       []gradebook.Student
	groups         []gradebook.AssignmentGroup

	jobErr error

	bulkAssignment    int64
	bulkGrades        gradebook.GradeData
	posted            []int64
	createdAssignment *gradebook.NewAssignment
	createdQuiz       *gradebook.NewQuiz
	quizQuestions     []gradebook.QuizQuestion
	overrides         map[int64]gradebook.Override
	extensions        []gradebook.QuizExtension
	assignmentPatches map[int64][]gradebook.AssignmentPatch
	quizPatches       map[int64][]gradebook.QuizPatch
	appliedAssoc      *gradebook.RubricAssociation
	createdRubric     *gradebook.NewRubric
}

func newFakeGradebook() *fakeGradebook {
	return &fakeGradebook{
		submissions:       make(map[int64][]gradebook.Submission),
		rubrics:           make(map[int64]*gradebook.Rubric),
		outcomes:          make(map[int64]gradebook.Outcome),
		outcomeResults:    make(map[int64][]gradebook.OutcomeResult),
		overrides:         make(map[int64]gradebook.Override),
		assignmentPatches: make(map[int64][]gradebook.AssignmentPatch),
		quizPatches:       make(map[int64][]gradebook.QuizPatch),
	}
}

func (f *fakeGradebook) CourseID() int64 { return 42 }

func (f *fakeGradebook) ListAssignments(context.Context) ([]gradebook.Assignment, error) {
	return f.assignments, nil
}

func (f *fakeGradebook) CreateAssignment(_ context.Context, a gradebook.NewAssignment) (gradebook.Assignment, error) {
	f.createdAssignment = &a
	created := gradebook.Assignment{
		ID:              900,
		Name:            a.Name,
		GradingType:     a.GradingType,
		SubmissionTypes: a.SubmissionTypes,
		PointsPossible:  a.PointsPossible,
	}
	f.assignments = append(f.assignments, created)
	return created, nil
}

func (f *fakeGradebook) EditAssignment(_ context.Context, id int64, patch gradebook.AssignmentPatch) error {
	f.assignmentPatches[id] = append(f.assignmentPatches[id], patch)
	return nil
}

func (f *fakeGradebook) GetSubmissions(_ context.Context, id int64) ([]gradebook.Submission, error) {
	return f.submissions[id], nil
}

func (f *fakeGradebook) GetRubric(_ context.Context, id int64) (*gradebook.Rubric, error) {
	return f.rubrics[id], nil
}

func (f *fakeGradebook) ListCourseRubrics(context.Context) ([]gradebook.Rubric, error) {
	return f.courseRubrics, nil
}

func (f *fakeGradebook) CreateRubric(_ context.Context, r gradebook.NewRubric) (gradebook.Rubric, error) {
	f.createdRubric = &r
	created := gradebook.Rubric{
		ID:             700,
		Title:          r.Title,
		PointsPossible: r.PointsPossible,
		Criteria:       make([]gradebook.Criterion, len(r.Criteria)),
	}
	for i, c := range r.Criteria {
		c.ID = fmt.Sprintf("_crit%d", i+1)
		created.Criteria[i] = c
	}
	return created, nil
}

func (f *fakeGradebook) ApplyRubric(_ context.Context, assoc gradebook.RubricAssociation) error {
	f.appliedAssoc = &assoc
	return nil
}

func (f *fakeGradebook) BulkUpdateGrades(_ context.Context, id int64, grades gradebook.GradeData) (gradebook.JobHandle, error) {
	f.bulkAssignment = id
	f.bulkGrades = grades
	return gradebook.JobHandle{ID: 55}, nil
}

func (f *fakeGradebook) AwaitJob(context.Context, gradebook.JobHandle) error {
	return f.jobErr
}

func (f *fakeGradebook) PostGrades(_ context.Context, id int64) error {
	f.posted = append(f.posted, id)
	return nil
}

func (f *fakeGradebook) ListQuizzes(context.Context) ([]gradebook.Quiz, error) {
	return f.quizzes, nil
}

func (f *fakeGradebook) CreateQuiz(_ context.Context, q gradebook.NewQuiz) (gradebook.Quiz, error) {
	f.createdQuiz = &q
	return gradebook.Quiz{ID: 500, AssignmentID: 501, Title: q.Title}, nil
}

func (f *fakeGradebook) EditQuiz(_ context.Context, id int64, patch gradebook.QuizPatch) error {
	f.quizPatches[id] = append(f.quizPatches[id], patch)
	return nil
}

func (f *fakeGradebook) CreateQuizQuestion(_ context.Context, _ int64, q gradebook.QuizQuestion) error {
	f.quizQuestions = append(f.quizQuestions, q)
	return nil
}

func (f *fakeGradebook) SetQuizExtensions(_ context.Context, _ int64, extensions []gradebook.QuizExtension) error {
	f.extensions = extensions
	return nil
}

func (f *fakeGradebook) CreateOverride(_ context.Context, id int64, o gradebook.Override) error {
	f.overrides[id] = o
	return nil
}

func (f *fakeGradebook) ListStudents(context.Context) ([]gradebook.Student, error) {
	return f.students, nil
}

func (f *fakeGradebook) EmailIndex(context.Context) (map[string]int64, error) {
	index := make(map[string]int64)
	for _, s := range f.students {
		if s.Email != "" {
			index[s.Email] = s.ID
		}
	}
	return index, nil
}

func (f *fakeGradebook) ListOutcomeLinks(context.Context) ([]gradebook.OutcomeLink, error) {
	return f.outcomeLinks, nil
}

func (f *fakeGradebook) GetOutcome(_ context.Context, id int64) (gradebook.Outcome, error) {
	return f.outcomes[id], nil
}

func (f *fakeGradebook) ListOutcomeResults(_ context.Context, id int64) ([]gradebook.OutcomeResult, error) {
	return f.outcomeResults[id], nil
}

func (f *fakeGradebook) ListAssignmentGroups(context.Context) ([]gradebook.AssignmentGroup, error) {
	return f.groups, nil
}
