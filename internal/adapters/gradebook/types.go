package gradebook

// Data-transfer structures for the gradebook service. The remote objects
// carry far more fields; these are trimmed to what the toolkit reads and
// writes, so the core never depends on a remote object's shape.

// Assignment is a gradable item in a course.
type Assignment struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	Published          bool     `json:"published"`
	GradingType        string   `json:"grading_type"`
	SubmissionTypes    []string `json:"submission_types"`
	IsQuizAssignment   bool     `json:"is_quiz_assignment"`
	PointsPossible     float64  `json:"points_possible"`
	OmitFromFinalGrade bool     `json:"omit_from_final_grade"`
	HTMLURL            string   `json:"html_url"`
}

// IsReceptacle reports whether the assignment matches the shape used to
// receive synced scan-service scores: points-graded, no submissions, not
// a quiz.
func (a Assignment) IsReceptacle() bool {
	if a.GradingType != "points" || a.IsQuizAssignment {
		return false
	}
	return len(a.SubmissionTypes) == 1 && a.SubmissionTypes[0] == "none"
}

// AssignmentPatch carries partial assignment edits. Nil fields are left
// untouched.
type AssignmentPatch struct {
	Published              *bool    `json:"published,omitempty"`
	PointsPossible         *float64 `json:"points_possible,omitempty"`
	OnlyVisibleToOverrides *bool    `json:"only_visible_to_overrides,omitempty"`
}

// NewAssignment is the payload for creating an assignment.
type NewAssignment struct {
	Name               string   `json:"name"`
	GradingType        string   `json:"grading_type"`
	SubmissionTypes    []string `json:"submission_types"`
	PointsPossible     float64  `json:"points_possible"`
	OmitFromFinalGrade bool     `json:"omit_from_final_grade"`
	NotifyOfUpdate     bool     `json:"notify_of_update"`
}

// Quiz is a timed or untimed quiz in a course.
type Quiz struct {
	ID           int64   `json:"id"`
	AssignmentID int64   `json:"assignment_id"`
	Title        string  `json:"title"`
	QuizType     string  `json:"quiz_type"`
	TimeLimit    float64 `json:"time_limit"` // minutes; 0 when untimed
	Published    bool    `json:"published"`
	HTMLURL      string  `json:"html_url"`
}

// QuizPatch carries partial quiz edits.
type QuizPatch struct {
	Published              *bool    `json:"published,omitempty"`
	OnlyVisibleToOverrides *bool    `json:"only_visible_to_overrides,omitempty"`
	PointsPossible         *float64 `json:"points_possible,omitempty"`
}

// NewQuiz is the payload for creating a quiz.
type NewQuiz struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	QuizType          string `json:"quiz_type"`
	AssignmentGroupID int64  `json:"assignment_group_id"`
	ShuffleAnswers    bool   `json:"shuffle_answers"`
}

// QuizQuestion is one question added to a quiz.
type QuizQuestion struct {
	Name           string  `json:"question_name"`
	Text           string  `json:"question_text"`
	Type           string  `json:"question_type"`
	PointsPossible float64 `json:"points_possible"`
}

// QuizExtension grants one student extra time on a quiz, in minutes.
type QuizExtension struct {
	UserID    int64 `json:"user_id"`
	ExtraTime int   `json:"extra_time"`
}

// Submission is one student's graded state on an assignment. Score is a
// pointer because ungraded submissions carry no score at all.
type Submission struct {
	UserID   int64    `json:"user_id"`
	Score    *float64 `json:"score"`
	GradedAt string   `json:"graded_at"`
}

// Graded reports whether the submission carries a usable score.
func (s Submission) Graded() bool {
	return s.Score != nil && s.GradedAt != ""
}

// Student is an enrolled user, as needed for email resolution.
type Student struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Rating is one level of a rubric criterion.
type Rating struct {
	ID          string  `json:"id"`
	Points      float64 `json:"points"`
	Description string  `json:"description"`
}

// Criterion is one rubric criterion with its ordered ratings.
type Criterion struct {
	ID                string   `json:"id"`
	Description       string   `json:"description"`
	Points            float64  `json:"points"`
	MasteryPoints     float64  `json:"mastery_points"`
	LearningOutcomeID int64    `json:"learning_outcome_id"`
	Ratings           []Rating `json:"ratings"`
}

// Rubric is a rubric attached to an assignment or course.
type Rubric struct {
	ID             int64       `json:"id"`
	Title          string      `json:"title"`
	PointsPossible float64     `json:"points_possible"`
	Criteria       []Criterion `json:"data"`
}

// NewRubric is the payload for creating a rubric with its association.
type NewRubric struct {
	Title           string      `json:"title"`
	PointsPossible  float64     `json:"points_possible"`
	Criteria        []Criterion `json:"criteria"`
	AssociationID   int64       `json:"association_id"`
	AssociationType string      `json:"association_type"`
	Purpose         string      `json:"purpose"`
	UseForGrading   bool        `json:"use_for_grading"`
}

// RubricAssociation attaches an existing rubric to an assignment.
type RubricAssociation struct {
	RubricID        int64  `json:"rubric_id"`
	AssociationID   int64  `json:"association_id"`
	AssociationType string `json:"association_type"`
	Purpose         string `json:"purpose"`
	UseForGrading   bool   `json:"use_for_grading"`
}

// RatingGrade records which rating a student earned on one criterion.
type RatingGrade struct {
	RatingID string  `json:"rating_id"`
	Points   float64 `json:"points"`
}

// Grade is one student's posted grade plus per-criterion ratings.
type Grade struct {
	PostedGrade      float64                `json:"posted_grade"`
	RubricAssessment map[string]RatingGrade `json:"rubric_assessment,omitempty"`
}

// GradeData maps student ids to grades for a bulk update.
type GradeData map[int64]Grade

// Override restricts an assignment's dates to listed students.
type Override struct {
	DueAt      string  `json:"due_at,omitempty"`
	LockAt     string  `json:"lock_at,omitempty"`
	StudentIDs []int64 `json:"student_ids"`
}

// AssignmentGroup is a bucket assignments are organized into.
type AssignmentGroup struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// OutcomeLink ties a tracked competency into a course.
type OutcomeLink struct {
	Outcome OutcomeRef `json:"outcome"`
}

// OutcomeRef is the shallow outcome carried by a link.
type OutcomeRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Outcome is a tracked competency with its rating scale.
type Outcome struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	PointsPossible float64  `json:"points_possible"`
	MasteryPoints  float64  `json:"mastery_points"`
	Ratings        []Rating `json:"ratings"`
}

// OutcomeResult is one outcome-aligned score from a historical attempt.
type OutcomeResult struct {
	UserID int64   `json:"user_id"`
	Score  float64 `json:"score"`
}

// Job states reported by the progress endpoint.
const (
	JobPending  = "pending"
	JobComplete = "complete"
	JobFailed   = "failed"
)

// JobHandle identifies a long-running bulk operation on the service.
type JobHandle struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

// JobStatus is the polled state of a job.
type JobStatus struct {
	State string `json:"workflow_state"`
}
