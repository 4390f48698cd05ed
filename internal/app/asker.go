package service

import (
	"context"
	"fmt"

	"github.com/coursekit/mastery/internal/adapters/prompt"
)

// surfaceAsker bridges the prompt surface into the threshold mapper.
type surfaceAsker struct {
	surface prompt.Surface
}

func (a *surfaceAsker) AskBound(ctx context.Context, band string) (float64, error) {
	return a.surface.AskNumber(ctx, fmt.Sprintf("Enter minimum point threshold for rating %q:", band))
}

func (a *surfaceAsker) Notify(ctx context.Context, msg string) {
	_ = a.surface.Say(ctx, msg)
}
