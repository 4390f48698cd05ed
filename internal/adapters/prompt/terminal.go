package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

var (
	titleColor = color.New(color.FgCyan)
	warnColor  = color.New(color.FgYellow)
	errColor   = color.New(color.FgRed)
)

// Terminal is a Surface backed by an interactive terminal.
type Terminal struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewTerminal builds a terminal surface. Terminal reads stdin and writes
// stdout unless overridden, which tests do.
func NewTerminal(opts ...TerminalOption) *Terminal {
	t := &Terminal{
		in:  bufio.NewScanner(os.Stdin),
		out: os.Stdout,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithInput sets the reader answers come from.
func WithInput(r io.Reader) TerminalOption {
	return func(t *Terminal) {
		t.in = bufio.NewScanner(r)
	}
}

// WithOutput sets the writer prompts go to.
func WithOutput(w io.Writer) TerminalOption {
	return func(t *Terminal) {
		t.out = w
	}
}

func (t *Terminal) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", err
		}
		return "", ErrClosed
	}
	return strings.TrimSpace(t.in.Text()), nil
}

func (t *Terminal) ChooseOne(ctx context.Context, title string, choices []string) (int, error) {
	if len(choices) == 0 {
		return 0, ErrNoChoices
	}
	_, _ = titleColor.Fprintln(t.out, title)
	for i, choice := range choices {
		fmt.Fprintf(t.out, "  %d) %s\n", i+1, choice)
	}
	for {
		fmt.Fprintf(t.out, "Select [1-%d]: ", len(choices))
		line, err := t.readLine(ctx)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(choices) {
			_, _ = errColor.Fprintln(t.out, "Please enter a number from the list.")
			continue
		}
		return n - 1, nil
	}
}

func (t *Terminal) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	for {
		fmt.Fprintf(t.out, "%s %s ", question, hint)
		line, err := t.readLine(ctx)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		_, _ = errColor.Fprintln(t.out, "Please answer y or n.")
	}
}

func (t *Terminal) AskNumber(ctx context.Context, question string) (float64, error) {
	for {
		fmt.Fprintf(t.out, "%s ", question)
		line, err := t.readLine(ctx)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			_, _ = errColor.Fprintln(t.out, "Please enter a number.")
			continue
		}
		return v, nil
	}
}

func (t *Terminal) AskText(ctx context.Context, question string) (string, error) {
	fmt.Fprintf(t.out, "%s ", question)
	return t.readLine(ctx)
}

func (t *Terminal) Say(_ context.Context, message string) error {
	_, err := fmt.Fprintln(t.out, message)
	return err
}

func (t *Terminal) Warn(_ context.Context, message string) error {
	_, err := warnColor.Fprintln(t.out, message)
	return err
}
