package accommodation_test

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/coursekit/mastery/internal/domain/accommodation"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMultiplierFromName(t *testing.T) {
	Convey("Given accommodation column names", t, func() {
		Convey("Then embedded percentages parse into multipliers", func() {
			mult, ok := accommodation.MultiplierFromName("Exams- 50%-Extended Time")
			So(ok, ShouldBeTrue)
			So(mult, ShouldEqual, 0.5)

			mult, ok = accommodation.MultiplierFromName("Exams-100%-Extended Time")
			So(ok, ShouldBeTrue)
			So(mult, ShouldEqual, 1.0)
		})

		Convey("Then names without a percentage are rejected", func() {
			_, ok := accommodation.MultiplierFromName("Note taker")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestAggregate(t *testing.T) {
	Convey("Given stacked accommodations for one student", t, func() {
		records := []accommodation.Record{
			{StudentID: 7, Name: "Exams- 50%-Extended Time", Multiplier: 0.5},
			{StudentID: 7, Name: "Exams- 25%-Extended Time", Multiplier: 0.25},
		}

		Convey("When aggregating over a 60 minute base", func() {
			grants, err := accommodation.Aggregate(records, 60*time.Minute)

			Convey("Then the maximum multiplier wins, never the sum", func() {
				So(err, ShouldBeNil)
				So(grants, ShouldHaveLength, 1)
				So(grants[0].Minutes(), ShouldEqual, 30)
			})
		})
	})

	Convey("Given duplicate rows for the same accommodation type", t, func() {
		records := []accommodation.Record{
			{StudentID: 7, Name: "Exams- 50%-Extended Time", Multiplier: 0.5},
			{StudentID: 7, Name: "Exams- 50%-Extended Time", Multiplier: 0.5},
		}

		Convey("When aggregating", func() {
			grants, err := accommodation.Aggregate(records, 60*time.Minute)

			Convey("Then the duplicate is not double-counted", func() {
				So(err, ShouldBeNil)
				So(grants[0].Minutes(), ShouldEqual, 30)
			})
		})
	})

	Convey("Given a fractional grant", t, func() {
		records := []accommodation.Record{
			{StudentID: 3, Name: "Exams- 50%-Extended Time", Multiplier: 0.5},
		}

		Convey("When the base duration is 25 minutes", func() {
			grants, err := accommodation.Aggregate(records, 25*time.Minute)

			Convey("Then the grant rounds up, never down", func() {
				So(err, ShouldBeNil)
				So(grants[0].Minutes(), ShouldEqual, 13)
			})
		})

		Convey("When any positive multiplier applies", func() {
			grants, err := accommodation.Aggregate([]accommodation.Record{
				{StudentID: 3, Name: "Exams- 1%-Extended Time", Multiplier: 0.01},
			}, 25*time.Minute)

			Convey("Then at least one extra minute is granted", func() {
				So(err, ShouldBeNil)
				So(grants[0].Minutes(), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})
	})

	Convey("Given records across several students", t, func() {
		records := []accommodation.Record{
			{StudentID: 2, Name: "Exams- 50%-Extended Time", Multiplier: 0.5},
			{StudentID: 1, Name: "Exams- 25%-Extended Time", Multiplier: 0.25},
			{StudentID: 3, Name: "Exams-100%-Extended Time", Multiplier: 1.0},
			{StudentID: 1, Name: "Exams- 50%-Extended Time", Multiplier: 0.5},
		}

		Convey("When aggregating the records in shuffled orders", func() {
			want, err := accommodation.Aggregate(records, 40*time.Minute)
			So(err, ShouldBeNil)

			rng := rand.New(rand.NewSource(1))
			for i := 0; i < 10; i++ {
				shuffled := make([]accommodation.Record, len(records))
				copy(shuffled, records)
				rng.Shuffle(len(shuffled), func(a, b int) {
					shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
				})

				got, err := accommodation.Aggregate(shuffled, 40*time.Minute)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, want)
			}

			Convey("Then every student gets exactly one grant", func() {
				So(want, ShouldHaveLength, 3)
				So(want[0].StudentID, ShouldEqual, 1)
				So(want[1].StudentID, ShouldEqual, 2)
				So(want[2].StudentID, ShouldEqual, 3)
			})
		})
	})

	Convey("Given no qualifying records", t, func() {
		Convey("When the input is empty", func() {
			grants, err := accommodation.Aggregate(nil, 60*time.Minute)

			Convey("Then aggregation fails", func() {
				So(grants, ShouldBeNil)
				So(errors.Is(err, accommodation.ErrNoAccommodations), ShouldBeTrue)
			})
		})

		Convey("When every record has a zero multiplier", func() {
			grants, err := accommodation.Aggregate([]accommodation.Record{
				{StudentID: 5, Name: "Note taker", Multiplier: 0},
			}, 60*time.Minute)

			Convey("Then aggregation fails the same way", func() {
				So(grants, ShouldBeNil)
				So(errors.Is(err, accommodation.ErrNoAccommodations), ShouldBeTrue)
			})
		})
	})
}
