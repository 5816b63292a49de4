package detector

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig indicates malformed detector parameters.
var ErrInvalidConfig = errors.New("detector: invalid config")

// Config holds the tunable parameters of the detection pipeline.
// MinSeparationDays is an explicit field rather than a package constant so
// callers never depend on hidden global state.
type Config struct {
	SmoothingWindow   int `mapstructure:"smoothing_window"`
	ExtremaHalfWindow int `mapstructure:"extrema_half_window"`
	LookaheadDays     int `mapstructure:"lookahead_days"`
	TopKPerYear       int `mapstructure:"top_k_per_year"`
	MinSeparationDays int `mapstructure:"min_separation_days"`
}

// DefaultConfig returns the parameter set used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		SmoothingWindow:   5,
		ExtremaHalfWindow: 20,
		LookaheadDays:     10,
		TopKPerYear:       1,
		MinSeparationDays: 30,
	}
}

// Validate rejects malformed parameters before any processing starts.
func (c Config) Validate() error {
	if c.SmoothingWindow < 1 {
		return fmt.Errorf("%w: smoothing_window must be at least 1, got %d", ErrInvalidConfig, c.SmoothingWindow)
	}
	if c.SmoothingWindow%2 == 0 {
		return fmt.Errorf("%w: smoothing_window must be odd, got %d", ErrInvalidConfig, c.SmoothingWindow)
	}
	if c.ExtremaHalfWindow < 0 {
		return fmt.Errorf("%w: extrema_half_window cannot be negative, got %d", ErrInvalidConfig, c.ExtremaHalfWindow)
	}
	if c.LookaheadDays < 0 {
		return fmt.Errorf("%w: lookahead_days cannot be negative, got %d", ErrInvalidConfig, c.LookaheadDays)
	}
	if c.TopKPerYear < 0 {
		return fmt.Errorf("%w: top_k_per_year cannot be negative, got %d", ErrInvalidConfig, c.TopKPerYear)
	}
	if c.MinSeparationDays < 0 {
		return fmt.Errorf("%w: min_separation_days cannot be negative, got %d", ErrInvalidConfig, c.MinSeparationDays)
	}
	return nil
}
