// Package model defines shared data structures.
package model

import (
	"fmt"
	"math"
	"time"
)

// Config holds resolved settings after flags and the config file are merged.
type Config struct {
	Bar      float64
	Presets  []int
	Chime    bool
	LogLevel string
}

// DefaultPresets are the rest intervals, in seconds, bound to keys 1-9.
var DefaultPresets = []int{30, 60, 90, 120, 180, 240, 300}

// MaxPresets is the number of preset keys.
const MaxPresets = 9

// DefaultConfig returns settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Bar:      45,
		Presets:  append([]int(nil), DefaultPresets...),
		Chime:    true,
		LogLevel: "info",
	}
}

// Validate checks resolved settings.
func (c Config) Validate() error {
	if math.IsNaN(c.Bar) || math.IsInf(c.Bar, 0) {
		return fmt.Errorf("--bar must be a finite number")
	}
	if c.Bar < 0 {
		return fmt.Errorf("--bar must be >= 0")
	}
	if len(c.Presets) > MaxPresets {
		return fmt.Errorf("at most %d presets are supported", MaxPresets)
	}
	for _, p := range c.Presets {
		if p <= 0 {
			return fmt.Errorf("presets must be > 0 seconds")
		}
	}
	return nil
}

// InventoryRow is one line of an inventory listing.
type InventoryRow struct {
	Weight     float64
	Count      int
	Fractional bool
}

// CompletedRest is a history entry prepared for display.
type CompletedRest struct {
	Duration    time.Duration
	CompletedAt time.Time
}
