package service

import (
	"context"
	"fmt"

	"github.com/coursekit/mastery/internal/domain/revision"
	"github.com/coursekit/mastery/pkg/logger"
)

// AssignOpportunities finds students still short of mastery on an
// outcome and assigns them a checkpoint quiz: students whose qualifying
// attempts at or above the cutoff number fewer than required.
func (s *Service) AssignOpportunities(ctx context.Context) error {
	links, err := s.gradebook.ListOutcomeLinks(ctx)
	if err != nil {
		return err
	}
	if len(links) == 0 {
		return ErrNoOutcomes
	}
	labels := make([]string, len(links))
	for i, link := range links {
		labels[i] = link.Outcome.Title
	}
	idx, err := s.surface.ChooseOne(ctx, "Select outcome:", labels)
	if err != nil {
		return err
	}
	outcome := links[idx].Outcome

	required, err := s.surface.AskNumber(ctx, "How many qualifying scores demonstrate mastery?")
	if err != nil {
		return err
	}
	if required < 1 {
		required = 1
	}

	results, err := s.gradebook.ListOutcomeResults(ctx, outcome.ID)
	if err != nil {
		return err
	}
	scores := make([]revision.OutcomeScore, len(results))
	for i, r := range results {
		scores[i] = revision.OutcomeScore{StudentID: r.UserID, Score: r.Score}
	}

	students, err := s.gradebook.ListStudents(ctx)
	if err != nil {
		return err
	}
	roster := make([]int64, len(students))
	for i, student := range students {
		roster[i] = student.ID
	}

	eligible := revision.ByMasteryCount(scores, s.masteryCutoff, int(required), roster)
	if len(eligible) == 0 {
		_ = s.surface.Say(ctx, "Every student has demonstrated mastery. Nothing left to do.")
		return nil
	}
	_ = s.surface.Say(ctx, fmt.Sprintf("Found %d students needing another opportunity on %q.",
		len(eligible), outcome.Title))

	proceed, err := s.surface.Confirm(ctx, "Assign a checkpoint opportunity?", true)
	if err != nil {
		return err
	}
	if !proceed {
		_ = s.surface.Say(ctx, "Nothing left to do.")
		return nil
	}

	s.logger.Info(ctx, "assigning checkpoint opportunity",
		logger.String("outcome", outcome.Title),
		logger.Int("students", len(eligible)))

	defaultTitle := fmt.Sprintf("%s Checkpoint", outcome.Title)
	return s.assignRevisionQuiz(ctx, defaultTitle, outcome.Title, "", eligible, false)
}
