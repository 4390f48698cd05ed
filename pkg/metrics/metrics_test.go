package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager(WithRegistry(prometheus.NewRegistry()))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithMetricsEnabled(true),
				WithRegistry(prometheus.NewRegistry()),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording grading metrics", func() {
			Convey("Then recording should not panic", func() {
				So(func() {
					RecordScoreClassified()
					RecordStudentSkipped()
					RecordGradesUploaded(3)
					RecordRemoteCall("listAssignments")
					RecordRemoteFailure("bulkUpdateGrades")
					RecordPromptRejection()
					RecordExtensionsAssigned(2)
					RecordRevisionsAssigned(5)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestSummary(t *testing.T) {
	Convey("Given a manager with recorded values", t, func() {
		manager := NewManager(WithRegistry(prometheus.NewRegistry()))
		manager.scoresClassified.Inc()
		manager.scoresClassified.Inc()
		manager.remoteCalls.WithLabelValues("getSubmissions").Inc()

		Convey("When rendering the summary", func() {
			summary := manager.Summary()

			Convey("Then non-zero counters appear", func() {
				So(summary, ShouldContainSubstring, "scores_classified_total 2")
				So(summary, ShouldContainSubstring, `remote_calls_total{operation=getSubmissions} 1`)
			})

			Convey("And zero counters are omitted", func() {
				So(summary, ShouldNotContainSubstring, "students_skipped_total")
			})
		})
	})
}
