// Package configstore persists the operator's course registry: the named
// courses the toolkit grades, each with its gradebook course id and the
// question templates its revision quizzes are built from. The registry is
// a YAML file in the operator's home directory.
package configstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

const (
	storeFile = ".mastery-toolkit.yaml"

	// reservedName is kept out of the registry so a course can never
	// shadow the toolkit's own settings section.
	reservedName = "core"
)

// RevisionQuestion is one question template stamped into revision
// quizzes. "$assignment" in the text is replaced with the assignment's
// name at quiz-creation time.
type RevisionQuestion struct {
	Name           string  `koanf:"question_name"   yaml:"question_name"`
	Text           string  `koanf:"question_text"   yaml:"question_text"`
	Type           string  `koanf:"question_type"   yaml:"question_type"`
	PointsPossible float64 `koanf:"points_possible" yaml:"points_possible"`
}

// Course is one registered course.
type Course struct {
	CourseID          int64              `koanf:"course_id"          yaml:"course_id"`
	RevisionQuestions []RevisionQuestion `koanf:"revision_questions" yaml:"revision_questions"`
}

// Store is the on-disk course registry.
type Store struct {
	path    string
	courses map[string]Course
}

// Option configures a Store before it loads.
type Option func(*Store)

// WithPath overrides the registry file location.
func WithPath(path string) Option {
	return func(s *Store) {
		s.path = path
	}
}

// Open loads the registry, creating an empty one when the file does not
// exist yet.
func Open(opts ...Option) (*Store, error) {
	s := &Store{courses: make(map[string]Course)}
	for _, opt := range opts {
		opt(s)
	}
	if s.path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadStore, err)
		}
		s.path = filepath.Join(home, storeFile)
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return s, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(s.path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadStore, err)
	}
	var onDisk struct {
		Courses map[string]Course `koanf:"courses"`
	}
	if err := k.Unmarshal("", &onDisk); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadStore, err)
	}
	if onDisk.Courses != nil {
		s.courses = onDisk.Courses
	}
	return s, nil
}

// Path returns the registry file location.
func (s *Store) Path() string { return s.path }

// ListCourses returns registered course names in sorted order.
func (s *Store) ListCourses() []string {
	names := make([]string, 0, len(s.courses))
	for name := range s.courses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Course looks a course up by name. An empty name selects the first
// registered course, which keeps single-course setups prompt-free.
func (s *Store) Course(name string) (Course, error) {
	if name == "" {
		names := s.ListCourses()
		if len(names) == 0 {
			return Course{}, ErrCourseNotFound
		}
		name = names[0]
	}
	course, ok := s.courses[name]
	if !ok {
		return Course{}, fmt.Errorf("%w: %q", ErrCourseNotFound, name)
	}
	return course, nil
}

// AddCourse registers a course and seeds its revision question templates.
func (s *Store) AddCourse(name string, courseID int64) error {
	if err := validateName(name); err != nil {
		return err
	}
	if _, ok := s.courses[name]; ok {
		return fmt.Errorf("%w: %q", ErrCourseExists, name)
	}
	s.courses[name] = Course{
		CourseID:          courseID,
		RevisionQuestions: defaultRevisionQuestions(),
	}
	return s.save()
}

// RemoveCourse drops a course from the registry.
func (s *Store) RemoveCourse(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if _, ok := s.courses[name]; !ok {
		return fmt.Errorf("%w: %q", ErrCourseNotFound, name)
	}
	delete(s.courses, name)
	return s.save()
}

func (s *Store) save() error {
	onDisk := struct {
		Courses map[string]Course `yaml:"courses"`
	}{Courses: s.courses}

	data, err := yamlv3.Marshal(onDisk)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSaveStore, err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrSaveStore, err)
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if strings.EqualFold(name, reservedName) {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	}
	if strings.Contains(name, ".") {
		return fmt.Errorf("%w: %q must not contain '.'", ErrInvalidName, name)
	}
	return nil
}

func defaultRevisionQuestions() []RevisionQuestion {
	return []RevisionQuestion{
		{
			Name: "Assignment URL",
			Text: `Go to your submission for "$assignment", copy the URL, ` +
				`and paste it here as a link.`,
			Type:           "essay_question",
			PointsPossible: 1,
		},
		{
			Name:           "Revised Work",
			Text:           "Upload your revised work. Be sure to follow the revision rules.",
			Type:           "file_upload_question",
			PointsPossible: 1,
		},
	}
}
