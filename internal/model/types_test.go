package model

import (
	"math"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	cfg.Bar = -1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected negative bar error")
	}
	cfg.Bar = math.NaN()
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected NaN bar error")
	}
	cfg.Bar = math.Inf(1)
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected infinite bar error")
	}
	cfg = DefaultConfig()
	cfg.Presets = []int{60, 0}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected zero preset error")
	}
	cfg.Presets = make([]int, MaxPresets+1)
	for i := range cfg.Presets {
		cfg.Presets[i] = 10
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected too many presets error")
	}
}
