package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if MASTERY_CONFIG is set
//  3. env (prefix MASTERY_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("MASTERY_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: MASTERY_BASE_URL, MASTERY_API_TOKEN, ...
	// Map env keys like MASTERY_POLL_INTERVAL_MS -> poll_interval_ms.
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("MASTERY_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "mastery_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if cfg.PollIntervalMS <= 0 {
		return nil, fmt.Errorf("%w: poll_interval_ms must be positive", ErrInvalidConfig)
	}
	if cfg.PartialCreditTarget < 0 {
		return nil, fmt.Errorf("%w: partial_credit_target must not be negative", ErrInvalidConfig)
	}
	return &cfg, nil
}
