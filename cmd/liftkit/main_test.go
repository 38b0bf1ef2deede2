package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jonboulle/clockwork"

	"github.com/verte-zerg/liftkit/internal/config"
	"github.com/verte-zerg/liftkit/internal/history"
	"github.com/verte-zerg/liftkit/internal/model"
	"github.com/verte-zerg/liftkit/internal/plates"
	"github.com/verte-zerg/liftkit/internal/store"
	"github.com/verte-zerg/liftkit/internal/timer"
)

func runCLI(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db", dbPath, "--chime=false"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return filepath.Join(dir, "liftkit.db")
}

func TestSolveCommand(t *testing.T) {
	db := setupEnv(t)
	out, err := runCLI(t, db, "solve", "225")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if !strings.Contains(out, "Per side: 90") || strings.Contains(out, "short") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	_, err = runCLI(t, db, "solve", "30")
	if !errors.Is(err, plates.ErrBelowMinimum) {
		t.Fatalf("expected ErrBelowMinimum, got %v", err)
	}
	_, err = runCLI(t, db, "solve", "1000")
	if !errors.Is(err, plates.ErrExceedsAvailable) {
		t.Fatalf("expected ErrExceedsAvailable, got %v", err)
	}
	for _, target := range []string{"Inf", "NaN"} {
		_, err = runCLI(t, db, "solve", target)
		if !errors.Is(err, plates.ErrInvalidWeight) {
			t.Fatalf("solve %s: expected ErrInvalidWeight, got %v", target, err)
		}
	}
	if _, err = runCLI(t, db, "--bar", "NaN", "solve", "225"); err == nil {
		t.Fatalf("expected NaN bar to be rejected")
	}
}

func TestInventoryCommands(t *testing.T) {
	db := setupEnv(t)
	if _, err := runCLI(t, db, "inventory", "set", "45", "2"); err != nil {
		t.Fatalf("inventory set: %v", err)
	}
	if _, err := runCLI(t, db, "inventory", "set", "20", "2"); !errors.Is(err, plates.ErrUnknownDenomination) {
		t.Fatalf("expected ErrUnknownDenomination, got %v", err)
	}
	if _, err := runCLI(t, db, "inventory", "set", "0.75", "4", "--fractional"); err != nil {
		t.Fatalf("inventory set fractional: %v", err)
	}
	out, err := runCLI(t, db, "inventory", "fractional", "on")
	if err != nil {
		t.Fatalf("inventory fractional: %v", err)
	}
	if !strings.Contains(out, "Fractional plates: on") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	out, err = runCLI(t, db, "solve", "225")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if !strings.Contains(out, "Per side: 90") || strings.Contains(out, "short") {
		t.Fatalf("expected exact solve with a reduced inventory:\n%s", out)
	}

	out, err = runCLI(t, db, "inventory", "reset")
	if err != nil {
		t.Fatalf("inventory reset: %v", err)
	}
	if !strings.Contains(out, "Fractional plates: off") {
		t.Fatalf("expected defaults after reset:\n%s", out)
	}
}

func TestConfigFileAndFlags(t *testing.T) {
	db := setupEnv(t)
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("[plates]\nbar = 35\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	out, err := runCLI(t, db, "solve", "35")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if !strings.Contains(out, "Bar: 35") {
		t.Fatalf("config bar not applied:\n%s", out)
	}
	out, err = runCLI(t, db, "--bar", "45", "solve", "45")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if !strings.Contains(out, "Bar: 45") {
		t.Fatalf("flag should override config:\n%s", out)
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var cfg config.FileConfig
	if _, err := toml.Decode(defaultConfigTemplate(), &cfg); err != nil {
		t.Fatalf("template should be valid TOML: %v", err)
	}
	if cfg.Plates.Bar != nil {
		t.Fatalf("template values should be commented out")
	}
}

func TestTimerCommands(t *testing.T) {
	db := setupEnv(t)
	out, err := runCLI(t, db, "timer", "start", "1:30")
	if err != nil {
		t.Fatalf("timer start: %v", err)
	}
	if !strings.HasPrefix(out, "countdown running 01:") {
		t.Fatalf("unexpected start output:\n%s", out)
	}
	out, err = runCLI(t, db, "timer", "stop")
	if err != nil {
		t.Fatalf("timer stop: %v", err)
	}
	if !strings.HasPrefix(out, "countdown paused") {
		t.Fatalf("unexpected stop output:\n%s", out)
	}
	if _, err := runCLI(t, db, "timer", "lap"); !errors.Is(err, timer.ErrLapUnavailable) {
		t.Fatalf("expected ErrLapUnavailable, got %v", err)
	}
	out, err = runCLI(t, db, "timer", "reset")
	if err != nil {
		t.Fatalf("timer reset: %v", err)
	}
	if !strings.HasPrefix(out, "countdown idle") {
		t.Fatalf("unexpected reset output:\n%s", out)
	}
	if _, err := runCLI(t, db, "timer", "start"); !errors.Is(err, timer.ErrZeroDuration) {
		t.Fatalf("expected ErrZeroDuration, got %v", err)
	}
	out, err = runCLI(t, db, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No completed countdowns.") {
		t.Fatalf("unexpected history output:\n%s", out)
	}
}

func TestEngineResumesCompletedCountdown(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	cfg := model.DefaultConfig()
	cfg.Chime = false
	var errOut bytes.Buffer

	err := runWithEngine(ctx, &errOut, cfg, kv, clock, func(ctx context.Context, e *timer.Engine, _ clockwork.Clock) error {
		return e.SetPreset(ctx, 30)
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	clock.Advance(45 * time.Second)

	var view timer.View
	err = runWithEngine(ctx, &errOut, cfg, kv, clock, func(_ context.Context, e *timer.Engine, _ clockwork.Clock) error {
		view = e.View()
		return nil
	})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if view.Status != timer.StatusOvertime || view.OvertimeMs != 15000 {
		t.Fatalf("expected overtime after resume, got %+v", view)
	}
	entries, err := history.New(kv, clock).List(ctx)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one history entry, got %v (err=%v)", entries, err)
	}
}

func TestParseRestDuration(t *testing.T) {
	cases := map[string]int{
		"90":   90,
		"90s":  90,
		"2m":   120,
		"1:30": 90,
		"0:05": 5,
	}
	for in, want := range cases {
		got, err := parseRestDuration(in)
		if err != nil || got != want {
			t.Fatalf("parseRestDuration(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, in := range []string{"", "abc", "1:75", "0", "0:00", "500ms"} {
		if _, err := parseRestDuration(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestLoadSettingsRejectsBadPresets(t *testing.T) {
	setupEnv(t)
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("[timer]\npresets = [60, 0]\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := runCLI(t, filepath.Join(t.TempDir(), "x.db"), "inventory"); err == nil {
		t.Fatalf("expected invalid preset error")
	}
}
