package gradebook_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coursekit/mastery/internal/adapters/gradebook"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClientRequests(t *testing.T) {
	Convey("Given a gradebook service", t, func() {
		ctx := context.Background()

		Convey("When listing assignments", func() {
			var gotAuth, gotPath string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				gotPath = r.URL.Path
				_ = json.NewEncoder(w).Encode([]gradebook.Assignment{
					{ID: 1, Name: "Quiz 1", Published: true, GradingType: "points", IsQuizAssignment: true},
					{ID: 2, Name: "Exam 1 Receptacle", GradingType: "points", SubmissionTypes: []string{"none"}},
				})
			}))
			defer server.Close()

			client := gradebook.New(server.URL, "token-abc", 42)
			assignments, err := client.ListAssignments(ctx)

			Convey("Then the typed assignments come back with bearer auth", func() {
				So(err, ShouldBeNil)
				So(gotAuth, ShouldEqual, "Bearer token-abc")
				So(gotPath, ShouldEqual, "/api/v1/courses/42/assignments")
				So(assignments, ShouldHaveLength, 2)
				So(assignments[0].IsQuizAssignment, ShouldBeTrue)
				So(assignments[1].IsReceptacle(), ShouldBeTrue)
			})
		})

		Convey("When fetching submissions", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`[
					{"user_id": 7, "score": 8.5, "graded_at": "2026-02-01T10:00:00Z"},
					{"user_id": 8, "score": null, "graded_at": ""}
				]`))
			}))
			defer server.Close()

			client := gradebook.New(server.URL, "t", 42)
			subs, err := client.GetSubmissions(ctx, 1)

			Convey("Then graded and ungraded submissions are distinguishable", func() {
				So(err, ShouldBeNil)
				So(subs, ShouldHaveLength, 2)
				So(subs[0].Graded(), ShouldBeTrue)
				So(*subs[0].Score, ShouldEqual, 8.5)
				So(subs[1].Graded(), ShouldBeFalse)
			})
		})

		Convey("When the service returns an error status", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "course not found", http.StatusNotFound)
			}))
			defer server.Close()

			client := gradebook.New(server.URL, "t", 42)
			_, err := client.ListAssignments(ctx)

			Convey("Then the failure wraps ErrRemoteService", func() {
				So(errors.Is(err, gradebook.ErrRemoteService), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "404")
			})
		})

		Convey("When an assignment has no rubric", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"id": 3, "name": "Mastery"}`))
			}))
			defer server.Close()

			client := gradebook.New(server.URL, "t", 42)
			rubric, err := client.GetRubric(ctx, 3)

			Convey("Then nil is returned without an error", func() {
				So(err, ShouldBeNil)
				So(rubric, ShouldBeNil)
			})
		})
	})
}

func TestBulkJobPolling(t *testing.T) {
	Convey("Given a bulk grade upload", t, func() {
		ctx := context.Background()

		Convey("When the job completes after a few polls", func() {
			var polls atomic.Int32
			var gotGradeKeys []string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/api/v1/courses/42/assignments/9/submissions/update_grades":
					var payload struct {
						GradeData map[string]gradebook.Grade `json:"grade_data"`
					}
					_ = json.NewDecoder(r.Body).Decode(&payload)
					for k := range payload.GradeData {
						gotGradeKeys = append(gotGradeKeys, k)
					}
					_ = json.NewEncoder(w).Encode(gradebook.JobHandle{ID: 55, URL: "/progress/55"})
				case "/api/v1/progress/55":
					state := gradebook.JobPending
					if polls.Add(1) >= 3 {
						state = gradebook.JobComplete
					}
					_ = json.NewEncoder(w).Encode(gradebook.JobStatus{State: state})
				default:
					http.NotFound(w, r)
				}
			}))
			defer server.Close()

			client := gradebook.New(server.URL, "t", 42, gradebook.WithPollInterval(time.Millisecond))
			handle, err := client.BulkUpdateGrades(ctx, 9, gradebook.GradeData{
				7: {PostedGrade: 8, RubricAssessment: map[string]gradebook.RatingGrade{
					"_crit1": {RatingID: "_r2", Points: 2},
				}},
			})
			So(err, ShouldBeNil)
			So(handle.ID, ShouldEqual, 55)
			So(gotGradeKeys, ShouldResemble, []string{"7"})

			err = client.AwaitJob(ctx, handle)

			Convey("Then AwaitJob returns once the job reports complete", func() {
				So(err, ShouldBeNil)
				So(polls.Load(), ShouldBeGreaterThanOrEqualTo, 3)
			})
		})

		Convey("When the job fails", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(gradebook.JobStatus{State: gradebook.JobFailed})
			}))
			defer server.Close()

			client := gradebook.New(server.URL, "t", 42, gradebook.WithPollInterval(time.Millisecond))
			err := client.AwaitJob(ctx, gradebook.JobHandle{ID: 56})

			Convey("Then AwaitJob reports the failure", func() {
				So(errors.Is(err, gradebook.ErrJobFailed), ShouldBeTrue)
			})
		})

		Convey("When the context is cancelled mid-poll", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(gradebook.JobStatus{State: gradebook.JobPending})
			}))
			defer server.Close()

			cancelCtx, cancel := context.WithCancel(ctx)
			cancel()

			client := gradebook.New(server.URL, "t", 42, gradebook.WithPollInterval(time.Hour))
			err := client.AwaitJob(cancelCtx, gradebook.JobHandle{ID: 57})

			Convey("Then the wait is abandoned", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestOutcomeCaching(t *testing.T) {
	Convey("Given outcomes fetched while building an exam rubric", t, func() {
		ctx := context.Background()
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			_ = json.NewEncoder(w).Encode(gradebook.Outcome{ID: 300, Title: "[Q3] Derivatives", MasteryPoints: 3, PointsPossible: 3})
		}))
		defer server.Close()

		client := gradebook.New(server.URL, "t", 42)

		Convey("When the same outcome is fetched repeatedly", func() {
			for i := 0; i < 4; i++ {
				outcome, err := client.GetOutcome(ctx, 300)
				So(err, ShouldBeNil)
				So(outcome.Title, ShouldEqual, "[Q3] Derivatives")
			}

			Convey("Then the service is hit once", func() {
				So(hits.Load(), ShouldEqual, 1)
			})
		})
	})
}

func TestEmailIndex(t *testing.T) {
	Convey("Given an enrolled roster", t, func() {
		var gotEnrollment string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotEnrollment = r.URL.Query().Get("enrollment_type[]")
			_ = json.NewEncoder(w).Encode([]gradebook.Student{
				{ID: 1, Name: "Ada", Email: "ada@school.edu"},
				{ID: 2, Name: "No Email"},
			})
		}))
		defer server.Close()

		client := gradebook.New(server.URL, "t", 42)

		Convey("When building the email index", func() {
			index, err := client.EmailIndex(context.Background())

			Convey("Then students without an email are skipped", func() {
				So(err, ShouldBeNil)
				So(gotEnrollment, ShouldEqual, "student")
				So(index, ShouldResemble, map[string]int64{"ada@school.edu": 1})
			})
		})
	})
}
