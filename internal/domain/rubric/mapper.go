package rubric

import (
	"context"
	"fmt"

	"github.com/coursekit/mastery/pkg/logger"
	"github.com/coursekit/mastery/pkg/metrics"
)

// Asker supplies operator responses during threshold negotiation. The
// mapper is the only core component that talks to the prompt surface;
// tests satisfy this with a scripted implementation.
type Asker interface {
	// AskBound asks for the minimum score bound admitting the named band.
	AskBound(ctx context.Context, band string) (float64, error)

	// Notify reports a rejection or warning to the operator.
	Notify(ctx context.Context, msg string)
}

// negotiationState tracks one bound through the negotiation loop.
type negotiationState int

const (
	awaitingBound negotiationState = iota
	validating
	accepted
	rejected
)

// Mapper negotiates a ThresholdMap over operator responses.
type Mapper struct {
	asker  Asker
	strict bool
	logger logger.Logger
}

// NewMapper creates a mapper reading bounds from asker.
func NewMapper(asker Asker, opts ...Option) *Mapper {
	m := &Mapper{
		asker:  asker,
		strict: false,
		logger: nil,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Negotiate converts bands plus a maximum achievable score into a
// ThresholdMap with strictly decreasing bounds ending at 0.
//
// Bands are processed best to worst. The first bound must fall in
// (0, maxScore]; bounds above maxScore are warned about unless strict
// mode rejects them. Each later bound must fall in [0, prev). A band
// with non-positive points binds 0 automatically and ends the
// negotiation; bands below it are unreachable and dropped. An
// operator-entered 0 ends it the same way.
func (m *Mapper) Negotiate(ctx context.Context, maxScore float64, bands []RatingBand) (ThresholdMap, error) {
	if maxScore <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidMaxScore, maxScore)
	}
	if len(bands) == 0 {
		return nil, ErrEmptyRubric
	}

	sorted := sortBands(bands)
	result := make(ThresholdMap, 0, len(sorted))

	for i, band := range sorted {
		label := fmt.Sprintf("%g %s", band.Points, band.Description)

		if band.Points <= 0 {
			m.asker.Notify(ctx, fmt.Sprintf("Automatically set minimum point threshold for rating %q to zero.", label))
			result = append(result, Threshold{Bound: 0, Points: band.Points})
			break
		}

		rule := boundRule{first: i == 0, max: maxScore, strict: m.strict}
		if i > 0 {
			rule.prev = result[len(result)-1].Bound
		}

		bound, err := m.negotiateBound(ctx, label, rule)
		if err != nil {
			return nil, err
		}

		result = append(result, Threshold{Bound: bound, Points: band.Points})
		if m.logger != nil {
			m.logger.Debug(ctx, "threshold accepted",
				logger.String("band", label),
				logger.Float64("bound", bound))
		}

		if bound == 0 && i < len(sorted)-1 {
			m.asker.Notify(ctx, "Remaining ratings will not be applied.")
			break
		}
	}

	// The lowest bound must be reachable; extend the worst mapped band
	// down to 0 when the operator stopped short of it.
	if last := result[len(result)-1]; last.Bound > 0 {
		result = append(result, Threshold{Bound: 0, Points: last.Points})
	}

	return result, nil
}

// negotiateBound runs the AwaitingBound -> Validating -> Accepted|Rejected
// loop for a single band. Invalid inputs are recovered locally by
// re-prompting; only asker failures surface.
func (m *Mapper) negotiateBound(ctx context.Context, band string, rule boundRule) (float64, error) {
	state := awaitingBound
	var value float64
	var reason string

	for {
		switch state {
		case awaitingBound:
			v, err := m.asker.AskBound(ctx, band)
			if err != nil {
				return 0, err
			}
			value = v
			state = validating

		case validating:
			warn, err := rule.validate(value)
			if err != nil {
				reason = err.Error()
				state = rejected
				continue
			}
			if warn != "" {
				m.asker.Notify(ctx, warn)
			}
			state = accepted

		case rejected:
			metrics.RecordPromptRejection()
			m.asker.Notify(ctx, reason)
			state = awaitingBound

		case accepted:
			return value, nil
		}
	}
}

// boundRule captures the accepted range for one bound.
type boundRule struct {
	first  bool
	prev   float64
	max    float64
	strict bool
}

// validate checks v against the rule. A non-empty warning means v is
// accepted but suspicious. The returned error wraps ErrInvalidBound and
// carries the operator-facing explanation of the required range.
func (r boundRule) validate(v float64) (string, error) {
	if r.first {
		if v <= 0 {
			return "", fmt.Errorf("%w: the threshold must be positive", ErrInvalidBound)
		}
		if v > r.max {
			if r.strict {
				return "", fmt.Errorf("%w: the threshold must be no greater than the maximum score, %g", ErrInvalidBound, r.max)
			}
			return fmt.Sprintf("Warning: threshold %g exceeds the maximum score, %g.", v, r.max), nil
		}
		return "", nil
	}

	if v < 0 {
		return "", fmt.Errorf("%w: the threshold must not be negative", ErrInvalidBound)
	}
	if v >= r.prev {
		return "", fmt.Errorf("%w: the threshold must be less than the previous one, %g", ErrInvalidBound, r.prev)
	}
	return "", nil
}
