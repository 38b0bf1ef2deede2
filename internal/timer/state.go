// Package timer implements the countdown/stopwatch state machine.
//
// State transitions are pure: they take the persisted State and the current
// wall-clock time in Unix milliseconds and return the next State together
// with the side effects to perform. Engine interprets those effects.
package timer

import (
	"errors"
	"fmt"
)

// Mode selects the active timer.
type Mode string

const (
	ModeCountdown Mode = "countdown"
	ModeStopwatch Mode = "stopwatch"
)

// ParseMode validates a mode name.
func ParseMode(value string) (Mode, error) {
	switch Mode(value) {
	case ModeCountdown, ModeStopwatch:
		return Mode(value), nil
	}
	return "", fmt.Errorf("unknown timer mode %q", value)
}

// Status is the derived state of a timer.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusPaused
	StatusFinished
	StatusOvertime
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusFinished:
		return "finished"
	case StatusOvertime:
		return "overtime"
	default:
		return "idle"
	}
}

var (
	// ErrZeroDuration is returned when a countdown would start with nothing to count.
	ErrZeroDuration = errors.New("countdown duration is zero")
	// ErrLapUnavailable is returned when a lap is requested outside a running stopwatch.
	ErrLapUnavailable = errors.New("laps need a running stopwatch")
)

// CountdownState is the persisted countdown. Times are Unix milliseconds.
type CountdownState struct {
	// RemainingMs holds the time left while paused.
	RemainingMs    int64 `json:"elapsedTime"`
	TargetMs       int64 `json:"countdownTarget"`
	StartedAt      int64 `json:"startTime"`
	Running        bool  `json:"isRunning"`
	Finished       bool  `json:"hasFinished"`
	LastFinishedMs int64 `json:"lastFinishedDuration"`
	FinishedAt     int64 `json:"finishedAt"`
}

// Lap is a stopwatch split.
type Lap struct {
	Index        int   `json:"number"`
	CumulativeMs int64 `json:"time"`
	DeltaMs      int64 `json:"lapTime"`
}

// StopwatchState is the persisted stopwatch. Laps are newest first.
type StopwatchState struct {
	AccumulatedMs int64 `json:"elapsedTime"`
	Laps          []Lap `json:"laps"`
	LastLapMs     int64 `json:"lastLapTime"`
	StartedAt     int64 `json:"startTime"`
	Running       bool  `json:"isRunning"`
}

// State holds both timers; Mode picks the one on screen.
type State struct {
	Mode      Mode           `json:"mode"`
	Countdown CountdownState `json:"countdown"`
	Stopwatch StopwatchState `json:"stopwatch"`
}

// DefaultState is an idle countdown.
func DefaultState() State {
	return State{Mode: ModeCountdown}
}

// EffectKind enumerates side effects emitted by transitions.
type EffectKind int

const (
	EffectPersist EffectKind = iota
	EffectRecordHistory
	EffectChime
	EffectNotify
)

// Effect is a side effect for Engine to carry out.
type Effect struct {
	Kind       EffectKind
	DurationMs int64
	Message    string
	Actions    []string
}

// Notification text for a countdown that completes while the stopwatch is shown.
const (
	BackgroundMessage = "Countdown complete!"
	ActionGoCountdown = "Go to countdown"
	ActionDismiss     = "Dismiss"
)

// CountdownReading is a countdown evaluated at a point in time.
type CountdownReading struct {
	Status      Status
	RemainingMs int64
	OvertimeMs  int64
	// Due is set when a running countdown has reached zero but has not been settled yet.
	Due bool
}

// DeriveCountdown evaluates c at now without changing it.
func DeriveCountdown(c CountdownState, now int64) CountdownReading {
	switch {
	case c.Running:
		remaining := c.TargetMs - (now - c.StartedAt)
		if remaining <= 0 {
			return CountdownReading{Status: StatusFinished, OvertimeMs: -remaining, Due: true}
		}
		return CountdownReading{Status: StatusRunning, RemainingMs: remaining}
	case c.Finished:
		over := now - c.FinishedAt
		if over > 0 {
			return CountdownReading{Status: StatusOvertime, OvertimeMs: over}
		}
		return CountdownReading{Status: StatusFinished}
	case c.TargetMs > 0:
		return CountdownReading{Status: StatusPaused, RemainingMs: c.RemainingMs}
	default:
		return CountdownReading{Status: StatusIdle}
	}
}

// DeriveStopwatch returns the elapsed time and status of w at now.
func DeriveStopwatch(w StopwatchState, now int64) (int64, Status) {
	switch {
	case w.Running:
		return w.AccumulatedMs + now - w.StartedAt, StatusRunning
	case w.AccumulatedMs > 0 || len(w.Laps) > 0:
		return w.AccumulatedMs, StatusPaused
	default:
		return 0, StatusIdle
	}
}

// settleCountdown finishes a running countdown whose time is up. The bool
// reports whether this call performed the transition; once settled the
// countdown is no longer running, so a second call is a no-op.
func settleCountdown(c CountdownState, now int64) (CountdownState, bool) {
	if !c.Running || c.StartedAt <= 0 {
		return c, false
	}
	if !DeriveCountdown(c, now).Due {
		return c, false
	}
	return CountdownState{
		TargetMs:       c.TargetMs,
		Finished:       true,
		LastFinishedMs: c.TargetMs,
		FinishedAt:     c.StartedAt + c.TargetMs,
	}, true
}

func completionEffects(durationMs int64, background bool) []Effect {
	effects := []Effect{
		{Kind: EffectRecordHistory, DurationMs: durationMs},
		{Kind: EffectChime},
	}
	if background {
		effects = append(effects, Effect{
			Kind:    EffectNotify,
			Message: BackgroundMessage,
			Actions: []string{ActionGoCountdown, ActionDismiss},
		})
	}
	return append(effects, Effect{Kind: EffectPersist})
}

// Running reports whether the active timer is running.
func (s State) Running() bool {
	if s.Mode == ModeStopwatch {
		return s.Stopwatch.Running
	}
	return s.Countdown.Running
}

// Start runs the active timer. A paused countdown resumes from its remaining
// time; otherwise inputMs is used.
func (s State) Start(now, inputMs int64) (State, []Effect, error) {
	if s.Mode == ModeStopwatch {
		if s.Stopwatch.Running {
			return s, nil, nil
		}
		s.Stopwatch.StartedAt = now
		s.Stopwatch.Running = true
		return s, []Effect{{Kind: EffectPersist}}, nil
	}

	c := s.Countdown
	if c.Running {
		return s, nil, nil
	}
	target := inputMs
	if c.RemainingMs > 0 {
		target = c.RemainingMs
	}
	if target <= 0 {
		return s, nil, ErrZeroDuration
	}
	s.Countdown = CountdownState{
		TargetMs:       target,
		StartedAt:      now,
		Running:        true,
		LastFinishedMs: c.LastFinishedMs,
	}
	return s, []Effect{{Kind: EffectPersist}}, nil
}

// Stop pauses the active timer. A countdown stopped after its time ran out
// pauses with zero remaining instead of finishing.
func (s State) Stop(now int64) (State, []Effect) {
	if s.Mode == ModeStopwatch {
		w := s.Stopwatch
		if !w.Running {
			return s, nil
		}
		w.AccumulatedMs += now - w.StartedAt
		w.StartedAt = 0
		w.Running = false
		s.Stopwatch = w
		return s, []Effect{{Kind: EffectPersist}}
	}

	c := s.Countdown
	if !c.Running {
		return s, nil
	}
	c.RemainingMs = max(0, c.TargetMs-(now-c.StartedAt))
	c.StartedAt = 0
	c.Running = false
	s.Countdown = c
	return s, []Effect{{Kind: EffectPersist}}
}

// Reset clears the active timer.
func (s State) Reset() (State, []Effect) {
	if s.Mode == ModeStopwatch {
		s.Stopwatch = StopwatchState{}
	} else {
		s.Countdown = CountdownState{}
	}
	return s, []Effect{{Kind: EffectPersist}}
}

// Lap records a split on a running stopwatch.
func (s State) Lap(now int64) (State, []Effect, error) {
	if s.Mode != ModeStopwatch || !s.Stopwatch.Running {
		return s, nil, ErrLapUnavailable
	}
	w := s.Stopwatch
	current := w.AccumulatedMs + now - w.StartedAt
	lap := Lap{
		Index:        len(w.Laps) + 1,
		CumulativeMs: current,
		DeltaMs:      current - w.LastLapMs,
	}
	w.Laps = append([]Lap{lap}, w.Laps...)
	w.LastLapMs = current
	s.Stopwatch = w
	return s, []Effect{{Kind: EffectPersist}}, nil
}

// Preset pauses a running stopwatch, switches to the countdown and starts a
// fresh one of seconds.
func (s State) Preset(now int64, seconds int) (State, []Effect, error) {
	if seconds <= 0 {
		return s, nil, ErrZeroDuration
	}
	s, effects, err := s.SwitchMode(now, ModeCountdown)
	if err != nil {
		return s, nil, err
	}
	if w := s.Stopwatch; w.Running {
		w.AccumulatedMs += now - w.StartedAt
		w.StartedAt = 0
		w.Running = false
		s.Stopwatch = w
	}
	s.Countdown = CountdownState{
		TargetMs:       int64(seconds) * 1000,
		StartedAt:      now,
		Running:        true,
		LastFinishedMs: s.Countdown.LastFinishedMs,
	}
	return s, append(effects, Effect{Kind: EffectPersist}), nil
}

// SwitchMode makes mode active. Both timers keep their raw start/target values,
// so a timer left running keeps counting while hidden. A countdown that ran
// out while hidden is settled on arrival.
func (s State) SwitchMode(now int64, mode Mode) (State, []Effect, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return s, nil, err
	}
	if s.Mode == mode {
		return s, nil, nil
	}
	s.Mode = mode
	effects := []Effect{{Kind: EffectPersist}}
	if mode == ModeCountdown {
		var done bool
		if s.Countdown, done = settleCountdown(s.Countdown, now); done {
			effects = append(effects, completionEffects(s.Countdown.LastFinishedMs, false)...)
		}
	}
	return s, effects, nil
}

// Tick settles the countdown, whichever mode is active. Completion while the
// stopwatch is shown also raises a notification.
func (s State) Tick(now int64) (State, []Effect) {
	var done bool
	if s.Countdown, done = settleCountdown(s.Countdown, now); !done {
		return s, nil
	}
	return s, completionEffects(s.Countdown.LastFinishedMs, s.Mode != ModeCountdown)
}

// CheckBackground settles the countdown only when it is not the active mode.
func (s State) CheckBackground(now int64) (State, []Effect) {
	if s.Mode == ModeCountdown {
		return s, nil
	}
	return s.Tick(now)
}

// normalize repairs values that would break the running invariant.
func (s State) normalize() State {
	if _, err := ParseMode(string(s.Mode)); err != nil {
		s.Mode = ModeCountdown
	}
	if s.Countdown.Running && (s.Countdown.StartedAt <= 0 || s.Countdown.TargetMs <= 0) {
		s.Countdown.Running = false
	}
	if s.Stopwatch.Running && s.Stopwatch.StartedAt <= 0 {
		s.Stopwatch.Running = false
	}
	return s
}
