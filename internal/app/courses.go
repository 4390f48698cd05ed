package service

import (
	"context"
	"fmt"
	"strings"
)

// ManageCourses lists, adds, and removes registered courses.
func (s *Service) ManageCourses(ctx context.Context) error {
	names := s.store.ListCourses()
	if len(names) == 0 {
		_ = s.surface.Say(ctx, "No course entries yet.")
	} else {
		_ = s.surface.Say(ctx, "Registered courses:\n  "+strings.Join(names, "\n  "))
	}

	idx, err := s.surface.ChooseOne(ctx, "What would you like to do?",
		[]string{"Add a new course entry", "Remove a course entry"})
	if err != nil {
		return err
	}

	if idx == 0 {
		name, err := s.surface.AskText(ctx, "The name to give the new course entry:")
		if err != nil {
			return err
		}
		id, err := s.surface.AskNumber(ctx, "The gradebook id for the course:")
		if err != nil {
			return err
		}
		if err := s.store.AddCourse(strings.TrimSpace(name), int64(id)); err != nil {
			return err
		}
		_ = s.surface.Say(ctx, fmt.Sprintf("Added course %s (%d).", strings.TrimSpace(name), int64(id)))
		return nil
	}

	name, err := s.surface.AskText(ctx, "The course to remove, as listed above:")
	if err != nil {
		return err
	}
	if err := s.store.RemoveCourse(strings.TrimSpace(name)); err != nil {
		return err
	}
	_ = s.surface.Say(ctx, fmt.Sprintf("Removed course %s.", strings.TrimSpace(name)))
	return nil
}
