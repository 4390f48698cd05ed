package prompt

import "errors"

var (
	// ErrNoChoices is returned when a menu is launched with nothing in it.
	ErrNoChoices = errors.New("menu has no choices")

	// ErrClosed is returned when the input stream ends mid-prompt.
	ErrClosed = errors.New("input closed")

	// ErrScriptExhausted is returned by a scripted surface when a prompt
	// arrives after its answers run out.
	ErrScriptExhausted = errors.New("scripted answers exhausted")
)
