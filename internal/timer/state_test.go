package timer

import (
	"errors"
	"testing"
)

func countEffects(effects []Effect, kind EffectKind) int {
	n := 0
	for _, eff := range effects {
		if eff.Kind == kind {
			n++
		}
	}
	return n
}

func TestDeriveCountdown(t *testing.T) {
	running := CountdownState{TargetMs: 60000, StartedAt: 1000, Running: true}
	if r := DeriveCountdown(running, 31000); r.Status != StatusRunning || r.RemainingMs != 30000 {
		t.Fatalf("unexpected running reading: %+v", r)
	}
	if r := DeriveCountdown(running, 65000); !r.Due || r.OvertimeMs != 4000 || r.Status != StatusFinished {
		t.Fatalf("unexpected due reading: %+v", r)
	}
	paused := CountdownState{TargetMs: 60000, RemainingMs: 12000}
	if r := DeriveCountdown(paused, 999999); r.Status != StatusPaused || r.RemainingMs != 12000 {
		t.Fatalf("paused value must not move: %+v", r)
	}
	finished := CountdownState{Finished: true, FinishedAt: 5000}
	if r := DeriveCountdown(finished, 5000); r.Status != StatusFinished {
		t.Fatalf("expected finished at zero overtime: %+v", r)
	}
	if r := DeriveCountdown(finished, 8000); r.Status != StatusOvertime || r.OvertimeMs != 3000 {
		t.Fatalf("expected overtime: %+v", r)
	}
	if r := DeriveCountdown(CountdownState{}, 1); r.Status != StatusIdle {
		t.Fatalf("expected idle: %+v", r)
	}
}

func TestSettleCountdownOnce(t *testing.T) {
	c := CountdownState{TargetMs: 1000, StartedAt: 10, Running: true}
	if _, done := settleCountdown(c, 500); done {
		t.Fatalf("countdown settled early")
	}
	settled, done := settleCountdown(c, 2000)
	if !done || !settled.Finished || settled.Running || settled.LastFinishedMs != 1000 || settled.FinishedAt != 1010 {
		t.Fatalf("unexpected settle: %+v", settled)
	}
	if _, again := settleCountdown(settled, 5000); again {
		t.Fatalf("settled countdown fired twice")
	}
}

func TestTickEmitsCompletionEffects(t *testing.T) {
	s := DefaultState()
	s, _, err := s.Start(1000, 120000)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	s, effects := s.Tick(131000)
	if countEffects(effects, EffectRecordHistory) != 1 || countEffects(effects, EffectChime) != 1 {
		t.Fatalf("unexpected effects: %+v", effects)
	}
	if countEffects(effects, EffectNotify) != 0 {
		t.Fatalf("foreground completion should not notify")
	}
	if _, effects = s.Tick(140000); len(effects) != 0 {
		t.Fatalf("second tick must not emit effects: %+v", effects)
	}
}

func TestStartRejectsZeroDuration(t *testing.T) {
	s := DefaultState()
	next, effects, err := s.Start(1000, 0)
	if !errors.Is(err, ErrZeroDuration) {
		t.Fatalf("expected ErrZeroDuration, got %v", err)
	}
	if len(effects) != 0 || next.Countdown.Running {
		t.Fatalf("zero duration must not change state")
	}
	if _, _, err := s.Preset(1000, 0); !errors.Is(err, ErrZeroDuration) {
		t.Fatalf("expected ErrZeroDuration from preset, got %v", err)
	}
}

func TestStopAfterTimeRanOutPauses(t *testing.T) {
	s, _, _ := DefaultState().Start(1000, 10000)
	s, _ = s.Stop(20000)
	r := DeriveCountdown(s.Countdown, 20000)
	if r.Status != StatusPaused || r.RemainingMs != 0 {
		t.Fatalf("expected paused with zero remaining, got %+v", r)
	}
	if s.Countdown.Finished {
		t.Fatalf("stop must not finish the countdown")
	}
}

func TestSwitchModeKeepsRawValues(t *testing.T) {
	s, _, _ := DefaultState().Start(1000, 60000)
	s, _, err := s.SwitchMode(2000, ModeStopwatch)
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if !s.Countdown.Running || s.Countdown.StartedAt != 1000 || s.Countdown.TargetMs != 60000 {
		t.Fatalf("hidden countdown must keep its start and target: %+v", s.Countdown)
	}
	same, effects, _ := s.SwitchMode(3000, ModeStopwatch)
	if len(effects) != 0 || same.Mode != ModeStopwatch {
		t.Fatalf("switching to the active mode must be a no-op")
	}
	if _, _, err := s.SwitchMode(3000, Mode("lap")); err == nil {
		t.Fatalf("expected unknown mode error")
	}
}

func TestCheckBackgroundNotifies(t *testing.T) {
	s, _, _ := DefaultState().Start(1000, 60000)
	s, _, _ = s.SwitchMode(2000, ModeStopwatch)
	s, effects := s.CheckBackground(30000)
	if len(effects) != 0 {
		t.Fatalf("countdown still running, got %+v", effects)
	}
	s, effects = s.CheckBackground(61000)
	if countEffects(effects, EffectNotify) != 1 || countEffects(effects, EffectRecordHistory) != 1 {
		t.Fatalf("expected background completion, got %+v", effects)
	}
	if _, effects = s.CheckBackground(62000); len(effects) != 0 {
		t.Fatalf("background completion fired twice")
	}

	fg, _, _ := DefaultState().Start(1000, 1000)
	if _, effects := fg.CheckBackground(5000); len(effects) != 0 {
		t.Fatalf("active countdown is not the watcher's job")
	}
}

func TestNormalizeRepairsInvariant(t *testing.T) {
	s := State{Mode: "bogus", Countdown: CountdownState{Running: true}, Stopwatch: StopwatchState{Running: true}}
	s = s.normalize()
	if s.Mode != ModeCountdown || s.Countdown.Running || s.Stopwatch.Running {
		t.Fatalf("unexpected normalized state: %+v", s)
	}

	s = State{Mode: ModeCountdown, Countdown: CountdownState{Running: true, StartedAt: 1}}
	if s.normalize().Countdown.Running {
		t.Fatalf("countdown without a target should not stay running")
	}
}
