package prompt

import "context"

// Script is a Surface with canned answers, used by workflow tests. Each
// answer kind is consumed in order; a prompt past the end of its queue
// fails with ErrScriptExhausted.
type Script struct {
	Choices  []int
	Answers  []bool
	Numbers  []float64
	Texts    []string
	Messages []string
	Warnings []string
}

func (s *Script) ChooseOne(_ context.Context, _ string, choices []string) (int, error) {
	if len(choices) == 0 {
		return 0, ErrNoChoices
	}
	if len(s.Choices) == 0 {
		return 0, ErrScriptExhausted
	}
	choice := s.Choices[0]
	s.Choices = s.Choices[1:]
	return choice, nil
}

func (s *Script) Confirm(_ context.Context, _ string, _ bool) (bool, error) {
	if len(s.Answers) == 0 {
		return false, ErrScriptExhausted
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer, nil
}

func (s *Script) AskNumber(_ context.Context, _ string) (float64, error) {
	if len(s.Numbers) == 0 {
		return 0, ErrScriptExhausted
	}
	n := s.Numbers[0]
	s.Numbers = s.Numbers[1:]
	return n, nil
}

func (s *Script) AskText(_ context.Context, _ string) (string, error) {
	if len(s.Texts) == 0 {
		return "", ErrScriptExhausted
	}
	text := s.Texts[0]
	s.Texts = s.Texts[1:]
	return text, nil
}

func (s *Script) Say(_ context.Context, message string) error {
	s.Messages = append(s.Messages, message)
	return nil
}

func (s *Script) Warn(_ context.Context, message string) error {
	s.Warnings = append(s.Warnings, message)
	return nil
}
