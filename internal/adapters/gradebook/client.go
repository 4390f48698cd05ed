// Package gradebook is the REST client for the institution's LMS.
//
// Every call is a fallible, retryless remote call: failures wrap
// ErrRemoteService and are reported to the operator, never retried, so
// each grade posting stays at-most-once.
package gradebook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/coursekit/mastery/pkg/logger"
	"github.com/coursekit/mastery/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultTimeout      = 15 * time.Second
	defaultPollInterval = time.Second
	defaultOutcomeTTL   = 30 * time.Minute
)

// Client talks to the gradebook service for a single course.
type Client struct {
	baseURL  string
	token    string
	courseID int64
	http     *http.Client

	pollInterval time.Duration

	// Outcomes are immutable for the life of a session and fetched
	// repeatedly while building exam rubrics, so they are cached.
	outcomes *cache.Cache

	logger logger.Logger
}

// New creates a client for courseID rooted at baseURL.
func New(baseURL, token string, courseID int64, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		courseID:     courseID,
		http:         &http.Client{Timeout: defaultTimeout},
		pollInterval: defaultPollInterval,
		outcomes:     cache.New(defaultOutcomeTTL, defaultOutcomeTTL),
		logger:       nil,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// CourseID returns the course this client is bound to.
func (c *Client) CourseID() int64 { return c.courseID }

// coursePath builds a course-scoped API path.
func (c *Client) coursePath(format string, args ...interface{}) string {
	return fmt.Sprintf("/api/v1/courses/%d", c.courseID) + fmt.Sprintf(format, args...)
}

// do performs one request. op names the operation for metrics and error
// wrapping; body is JSON-encoded when non-nil; out is decoded into when
// non-nil.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) error {
	metrics.RecordRemoteCall(op)

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrRemoteService, op, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		metrics.RecordRemoteFailure(op)
		return fmt.Errorf("%w: %s: %w", ErrRemoteService, op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordRemoteFailure(op)
		return fmt.Errorf("%w: %s: %w", ErrRemoteService, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		metrics.RecordRemoteFailure(op)
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s: status %d: %s", ErrRemoteService, op, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			metrics.RecordRemoteFailure(op)
			return fmt.Errorf("%w: %s: decode: %w", ErrRemoteService, op, err)
		}
	}

	if c.logger != nil {
		c.logger.Debug(ctx, "remote call",
			logger.String("operation", op),
			logger.String("method", method),
			logger.String("path", path))
	}
	return nil
}

// ListAssignments returns every assignment in the course.
func (c *Client) ListAssignments(ctx context.Context) ([]Assignment, error) {
	var out []Assignment
	if err := c.do(ctx, "listAssignments", http.MethodGet, c.coursePath("/assignments"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAssignment creates an assignment and returns it.
func (c *Client) CreateAssignment(ctx context.Context, a NewAssignment) (Assignment, error) {
	var out Assignment
	payload := map[string]interface{}{"assignment": a}
	if err := c.do(ctx, "createAssignment", http.MethodPost, c.coursePath("/assignments"), nil, payload, &out); err != nil {
		return Assignment{}, err
	}
	return out, nil
}

// EditAssignment applies a partial edit to an assignment.
func (c *Client) EditAssignment(ctx context.Context, assignmentID int64, patch AssignmentPatch) error {
	payload := map[string]interface{}{"assignment": patch}
	return c.do(ctx, "editAssignment", http.MethodPut, c.coursePath("/assignments/%d", assignmentID), nil, payload, nil)
}

// GetSubmissions returns all submissions for an assignment.
func (c *Client) GetSubmissions(ctx context.Context, assignmentID int64) ([]Submission, error) {
	var out []Submission
	if err := c.do(ctx, "getSubmissions", http.MethodGet, c.coursePath("/assignments/%d/submissions", assignmentID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRubric returns the rubric attached to an assignment, or nil when
// none is attached.
func (c *Client) GetRubric(ctx context.Context, assignmentID int64) (*Rubric, error) {
	var detail struct {
		Rubric         []Criterion `json:"rubric"`
		RubricSettings struct {
			ID             int64   `json:"id"`
			Title          string  `json:"title"`
			PointsPossible float64 `json:"points_possible"`
		} `json:"rubric_settings"`
	}
	if err := c.do(ctx, "getRubric", http.MethodGet, c.coursePath("/assignments/%d", assignmentID), nil, nil, &detail); err != nil {
		return nil, err
	}
	if len(detail.Rubric) == 0 {
		return nil, nil
	}
	return &Rubric{
		ID:             detail.RubricSettings.ID,
		Title:          detail.RubricSettings.Title,
		PointsPossible: detail.RubricSettings.PointsPossible,
		Criteria:       detail.Rubric,
	}, nil
}

// ListCourseRubrics returns the course's pre-made rubrics.
func (c *Client) ListCourseRubrics(ctx context.Context) ([]Rubric, error) {
	var out []Rubric
	if err := c.do(ctx, "listCourseRubrics", http.MethodGet, c.coursePath("/rubrics"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateRubric creates a rubric together with its association and
// returns the created rubric.
func (c *Client) CreateRubric(ctx context.Context, r NewRubric) (Rubric, error) {
	var out struct {
		Rubric Rubric `json:"rubric"`
	}
	if err := c.do(ctx, "createRubric", http.MethodPost, c.coursePath("/rubrics"), nil, r, &out); err != nil {
		return Rubric{}, err
	}
	return out.Rubric, nil
}

// ApplyRubric associates an existing rubric with an assignment,
// replacing whatever was attached before.
func (c *Client) ApplyRubric(ctx context.Context, assoc RubricAssociation) error {
	payload := map[string]interface{}{"rubric_association": assoc}
	return c.do(ctx, "applyRubric", http.MethodPost, c.coursePath("/rubric_associations"), nil, payload, nil)
}

// BulkUpdateGrades submits a batch of grades and returns the handle of
// the asynchronous job processing them.
func (c *Client) BulkUpdateGrades(ctx context.Context, assignmentID int64, grades GradeData) (JobHandle, error) {
	var out JobHandle
	payload := map[string]interface{}{"grade_data": grades}
	if err := c.do(ctx, "bulkUpdateGrades", http.MethodPost, c.coursePath("/assignments/%d/submissions/update_grades", assignmentID), nil, payload, &out); err != nil {
		return JobHandle{}, err
	}
	metrics.RecordGradesUploaded(len(grades))
	return out, nil
}

// PostGrades releases an assignment's grades to all students.
func (c *Client) PostGrades(ctx context.Context, assignmentID int64) error {
	payload := map[string]interface{}{"posted_at": time.Now().UTC().Format(time.RFC3339)}
	return c.do(ctx, "postGrades", http.MethodPost, c.coursePath("/assignments/%d/submissions/post", assignmentID), nil, payload, nil)
}

// ListQuizzes returns every quiz in the course.
func (c *Client) ListQuizzes(ctx context.Context) ([]Quiz, error) {
	var out []Quiz
	if err := c.do(ctx, "listQuizzes", http.MethodGet, c.coursePath("/quizzes"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateQuiz creates a quiz and returns it.
func (c *Client) CreateQuiz(ctx context.Context, q NewQuiz) (Quiz, error) {
	var out Quiz
	payload := map[string]interface{}{"quiz": q}
	if err := c.do(ctx, "createQuiz", http.MethodPost, c.coursePath("/quizzes"), nil, payload, &out); err != nil {
		return Quiz{}, err
	}
	return out, nil
}

// EditQuiz applies a partial edit to a quiz.
func (c *Client) EditQuiz(ctx context.Context, quizID int64, patch QuizPatch) error {
	payload := map[string]interface{}{"quiz": patch}
	return c.do(ctx, "editQuiz", http.MethodPut, c.coursePath("/quizzes/%d", quizID), nil, payload, nil)
}

// CreateQuizQuestion adds a question to a quiz.
func (c *Client) CreateQuizQuestion(ctx context.Context, quizID int64, q QuizQuestion) error {
	payload := map[string]interface{}{"question": q}
	return c.do(ctx, "createQuizQuestion", http.MethodPost, c.coursePath("/quizzes/%d/questions", quizID), nil, payload, nil)
}

// SetQuizExtensions grants extra time on a quiz, one entry per student.
func (c *Client) SetQuizExtensions(ctx context.Context, quizID int64, extensions []QuizExtension) error {
	payload := map[string]interface{}{"quiz_extensions": extensions}
	if err := c.do(ctx, "setQuizExtensions", http.MethodPost, c.coursePath("/quizzes/%d/extensions", quizID), nil, payload, nil); err != nil {
		return err
	}
	metrics.RecordExtensionsAssigned(len(extensions))
	return nil
}

// CreateOverride restricts an assignment's dates to listed students.
func (c *Client) CreateOverride(ctx context.Context, assignmentID int64, o Override) error {
	payload := map[string]interface{}{"assignment_override": o}
	return c.do(ctx, "createOverride", http.MethodPost, c.coursePath("/assignments/%d/overrides", assignmentID), nil, payload, nil)
}

// ListStudents returns the active student roster.
func (c *Client) ListStudents(ctx context.Context) ([]Student, error) {
	query := url.Values{"enrollment_type[]": []string{"student"}}
	var out []Student
	if err := c.do(ctx, "listStudents", http.MethodGet, c.coursePath("/users"), query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EmailIndex returns the roster keyed by email, for resolving imported
// identities. Students without an email are skipped.
func (c *Client) EmailIndex(ctx context.Context) (map[string]int64, error) {
	students, err := c.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int64, len(students))
	for _, s := range students {
		if s.Email != "" {
			index[s.Email] = s.ID
		}
	}
	return index, nil
}

// ListOutcomeLinks returns all outcome links in the course context.
func (c *Client) ListOutcomeLinks(ctx context.Context) ([]OutcomeLink, error) {
	var out []OutcomeLink
	if err := c.do(ctx, "listOutcomeLinks", http.MethodGet, c.coursePath("/outcome_group_links"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOutcome returns one outcome, from cache when already fetched.
func (c *Client) GetOutcome(ctx context.Context, outcomeID int64) (Outcome, error) {
	key := fmt.Sprintf("%d", outcomeID)
	if cached, ok := c.outcomes.Get(key); ok {
		return cached.(Outcome), nil
	}

	var out Outcome
	if err := c.do(ctx, "getOutcome", http.MethodGet, fmt.Sprintf("/api/v1/outcomes/%d", outcomeID), nil, nil, &out); err != nil {
		return Outcome{}, err
	}
	c.outcomes.Set(key, out, cache.DefaultExpiration)
	return out, nil
}

// ListOutcomeResults returns outcome-aligned scores across attempts for
// the given outcome.
func (c *Client) ListOutcomeResults(ctx context.Context, outcomeID int64) ([]OutcomeResult, error) {
	query := url.Values{"outcome_ids[]": []string{fmt.Sprintf("%d", outcomeID)}}
	var out struct {
		OutcomeResults []OutcomeResult `json:"outcome_results"`
	}
	if err := c.do(ctx, "listOutcomeResults", http.MethodGet, c.coursePath("/outcome_results"), query, nil, &out); err != nil {
		return nil, err
	}
	return out.OutcomeResults, nil
}

// ListAssignmentGroups returns the course's assignment groups.
func (c *Client) ListAssignmentGroups(ctx context.Context) ([]AssignmentGroup, error) {
	var out []AssignmentGroup
	if err := c.do(ctx, "listAssignmentGroups", http.MethodGet, c.coursePath("/assignment_groups"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
