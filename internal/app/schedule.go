package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/coursekit/mastery/internal/adapters/gradebook"
	"github.com/coursekit/mastery/internal/domain/accommodation"
	"github.com/coursekit/mastery/pkg/logger"
)

// ScheduleAccommodations loads an accommodation roster and grants extra
// time on a time-limited quiz.
func (s *Service) ScheduleAccommodations(ctx context.Context) error {
	quizzes, err := s.gradebook.ListQuizzes(ctx)
	if err != nil {
		return err
	}
	timed := make([]gradebook.Quiz, 0, len(quizzes))
	for _, q := range quizzes {
		if q.QuizType == "assignment" && q.TimeLimit > 0 {
			timed = append(timed, q)
		}
	}
	if len(timed) == 0 {
		_ = s.surface.Say(ctx, "No time-limited quizzes found! Cannot proceed.")
		return nil
	}
	sort.Slice(timed, func(i, j int) bool { return timed[i].Title < timed[j].Title })

	labels := make([]string, len(timed))
	for i, q := range timed {
		labels[i] = fmt.Sprintf("%s (%g min)", q.Title, q.TimeLimit)
	}
	idx, err := s.surface.ChooseOne(ctx, "Select quiz:", labels)
	if err != nil {
		return err
	}
	quiz := timed[idx]

	emails, err := s.gradebook.EmailIndex(ctx)
	if err != nil {
		return err
	}
	path, err := s.surface.AskText(ctx, "Enter path to the accommodation roster (CSV):")
	if err != nil {
		return err
	}
	records, err := s.importer.Accommodations(ctx, path, emails)
	if err != nil {
		return err
	}

	base := time.Duration(quiz.TimeLimit) * time.Minute
	grants, err := accommodation.Aggregate(records, base)
	if err != nil {
		return err
	}
	_ = s.surface.Say(ctx, fmt.Sprintf("Found %d students with time accommodations.", len(grants)))

	extensions := make([]gradebook.QuizExtension, len(grants))
	for i, grant := range grants {
		extensions[i] = gradebook.QuizExtension{
			UserID:    grant.StudentID,
			ExtraTime: grant.Minutes(),
		}
	}
	if err := s.gradebook.SetQuizExtensions(ctx, quiz.ID, extensions); err != nil {
		return err
	}
	s.logger.Info(ctx, "extensions assigned",
		logger.String("quiz", quiz.Title),
		logger.Int("students", len(extensions)))
	_ = s.surface.Say(ctx, fmt.Sprintf("Assigned extensions to %d students.", len(extensions)))

	if !quiz.Published {
		publish, err := s.surface.Confirm(ctx, "Publish quiz?", true)
		if err != nil {
			return err
		}
		if publish {
			published := true
			if err := s.gradebook.EditQuiz(ctx, quiz.ID, gradebook.QuizPatch{Published: &published}); err != nil {
				return err
			}
			_ = s.surface.Say(ctx, fmt.Sprintf("Published quiz %s.", quiz.Title))
		}
	}

	_ = s.surface.Say(ctx, "Done.")
	return nil
}
