package configstore_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/coursekit/mastery/internal/adapters/configstore"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCourseRegistry(t *testing.T) {
	Convey("Given an empty registry", t, func() {
		path := filepath.Join(t.TempDir(), "registry.yaml")
		store, err := configstore.Open(configstore.WithPath(path))
		So(err, ShouldBeNil)

		Convey("When a course is added", func() {
			So(store.AddCourse("calc1", 42), ShouldBeNil)

			Convey("Then it is listed and seeded with revision templates", func() {
				So(store.ListCourses(), ShouldResemble, []string{"calc1"})
				course, err := store.Course("calc1")
				So(err, ShouldBeNil)
				So(course.CourseID, ShouldEqual, 42)
				So(course.RevisionQuestions, ShouldHaveLength, 2)
				So(course.RevisionQuestions[0].Type, ShouldEqual, "essay_question")
				So(course.RevisionQuestions[0].Text, ShouldContainSubstring, "$assignment")
				So(course.RevisionQuestions[1].Type, ShouldEqual, "file_upload_question")
			})

			Convey("Then the registry survives a reload", func() {
				reloaded, err := configstore.Open(configstore.WithPath(path))
				So(err, ShouldBeNil)
				course, err := reloaded.Course("calc1")
				So(err, ShouldBeNil)
				So(course.CourseID, ShouldEqual, 42)
				So(course.RevisionQuestions, ShouldHaveLength, 2)
			})

			Convey("Then adding the same name again fails", func() {
				So(errors.Is(store.AddCourse("calc1", 99), configstore.ErrCourseExists), ShouldBeTrue)
			})

			Convey("Then an empty lookup selects the only course", func() {
				course, err := store.Course("")
				So(err, ShouldBeNil)
				So(course.CourseID, ShouldEqual, 42)
			})
		})

		Convey("When a course is removed", func() {
			So(store.AddCourse("calc1", 42), ShouldBeNil)
			So(store.RemoveCourse("calc1"), ShouldBeNil)

			Convey("Then lookups fail afterward", func() {
				_, err := store.Course("calc1")
				So(errors.Is(err, configstore.ErrCourseNotFound), ShouldBeTrue)
			})
		})

		Convey("When names are reserved or malformed", func() {
			So(errors.Is(store.AddCourse("core", 1), configstore.ErrInvalidName), ShouldBeTrue)
			So(errors.Is(store.AddCourse("CORE", 1), configstore.ErrInvalidName), ShouldBeTrue)
			So(errors.Is(store.AddCourse("calc.1", 1), configstore.ErrInvalidName), ShouldBeTrue)
			So(errors.Is(store.AddCourse("", 1), configstore.ErrInvalidName), ShouldBeTrue)
		})

		Convey("When looking up in an empty registry", func() {
			_, err := store.Course("")
			So(errors.Is(err, configstore.ErrCourseNotFound), ShouldBeTrue)
		})
	})
}
