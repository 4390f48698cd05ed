package revision_test

import (
	"testing"

	"github.com/coursekit/mastery/internal/domain/revision"
	. "github.com/smartystreets/goconvey/convey"
)

func TestByScoreTarget(t *testing.T) {
	Convey("Given submissions with partial-credit scores", t, func() {
		submissions := []revision.Submission{
			{StudentID: 1, Score: 2.0},
			{StudentID: 2, Score: 3.0},
			{StudentID: 3, Score: 2.0},
		}

		Convey("When selecting for target 2.0", func() {
			eligible := revision.ByScoreTarget(submissions, 2.0)

			Convey("Then exactly the partial-credit students are selected", func() {
				So(eligible, ShouldResemble, []int64{1, 3})
			})
		})

		Convey("When a near-miss score exists", func() {
			eligible := revision.ByScoreTarget([]revision.Submission{
				{StudentID: 4, Score: 2.5},
			}, 2.0)

			Convey("Then the match stays exact, not a range", func() {
				So(eligible, ShouldBeEmpty)
			})
		})

		Convey("When a student appears twice at the target", func() {
			eligible := revision.ByScoreTarget([]revision.Submission{
				{StudentID: 5, Score: 2.0},
				{StudentID: 5, Score: 2.0},
			}, 2.0)

			Convey("Then the student is returned once", func() {
				So(eligible, ShouldResemble, []int64{5})
			})
		})
	})
}

func TestByMasteryCount(t *testing.T) {
	Convey("Given outcome scores across attempts", t, func() {
		scores := []revision.OutcomeScore{
			{StudentID: 1, Score: 3},
			{StudentID: 1, Score: 3},
			{StudentID: 1, Score: 2},
			{StudentID: 2, Score: 3},
			{StudentID: 2, Score: 2},
			{StudentID: 2, Score: 2},
		}
		roster := []int64{1, 2, 3}

		Convey("When requiring two scores at or above cutoff 3", func() {
			eligible := revision.ByMasteryCount(scores, 3, 2, roster)

			Convey("Then mastered students are excluded and unseen roster students included", func() {
				So(eligible, ShouldResemble, []int64{2, 3})
			})
		})

		Convey("When the cutoff is inclusive", func() {
			eligible := revision.ByMasteryCount([]revision.OutcomeScore{
				{StudentID: 1, Score: 3},
				{StudentID: 1, Score: 3},
			}, 3, 2, roster)

			Convey("Then scores equal to the cutoff count toward mastery", func() {
				So(eligible, ShouldResemble, []int64{2, 3})
			})
		})

		Convey("When a student outside the roster has scores", func() {
			eligible := revision.ByMasteryCount([]revision.OutcomeScore{
				{StudentID: 99, Score: 1},
			}, 3, 2, roster)

			Convey("Then the result stays inside the active roster", func() {
				So(eligible, ShouldResemble, []int64{1, 2, 3})
			})
		})

		Convey("When the roster itself has duplicates", func() {
			eligible := revision.ByMasteryCount(nil, 3, 1, []int64{4, 4, 5})

			Convey("Then each student appears once", func() {
				So(eligible, ShouldResemble, []int64{4, 5})
			})
		})
	})
}
