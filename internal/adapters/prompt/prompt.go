// Package prompt is the operator-facing surface of the toolkit. Every
// decision flows through a Surface, so workflows can run against a real
// terminal or a scripted stand-in equally well.
package prompt

import "context"

// Surface asks the operator questions and reports back to them. All
// methods re-prompt on malformed input; an error means the surface
// itself failed, not that the operator answered badly.
type Surface interface {
	// ChooseOne presents a numbered menu and returns the chosen index.
	ChooseOne(ctx context.Context, title string, choices []string) (int, error)

	// Confirm asks a yes/no question, returning def on a blank answer.
	Confirm(ctx context.Context, question string, def bool) (bool, error)

	// AskNumber asks for a numeric value.
	AskNumber(ctx context.Context, question string) (float64, error)

	// AskText asks for a free-form line of text.
	AskText(ctx context.Context, question string) (string, error)

	// Say prints a message to the operator.
	Say(ctx context.Context, message string) error

	// Warn prints an emphasized warning to the operator.
	Warn(ctx context.Context, message string) error
}
