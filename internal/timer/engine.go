package timer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/liftkit/internal/history"
	"github.com/verte-zerg/liftkit/internal/store"
)

// StateKey is the storage key for the persisted State.
const StateKey = "timerState"

// Input limits for the countdown fields.
const (
	MaxInputMinutes = 99
	MaxInputSeconds = 59
)

// Notifier is the outward sound and notification surface.
type Notifier interface {
	Chime()
	Notify(message string, actions []string)
}

// NopNotifier discards everything.
type NopNotifier struct{}

// Chime implements Notifier.
func (NopNotifier) Chime() {}

// Notify implements Notifier.
func (NopNotifier) Notify(string, []string) {}

// Options configures an Engine. Zero fields get working defaults.
type Options struct {
	Clock    clockwork.Clock
	Store    store.KV
	History  *history.Log
	Notifier Notifier
	Logger   zerolog.Logger
}

// Engine owns the timer state for one session and carries out transition effects.
type Engine struct {
	state    State
	minutes  int
	seconds  int
	clock    clockwork.Clock
	kv       store.KV
	history  *history.Log
	notifier Notifier
	log      zerolog.Logger
}

// NewEngine constructs an idle engine. Call Load to restore persisted state.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		state:    DefaultState(),
		clock:    opts.Clock,
		kv:       opts.Store,
		history:  opts.History,
		notifier: opts.Notifier,
		log:      opts.Logger,
	}
	if e.clock == nil {
		e.clock = clockwork.NewRealClock()
	}
	if e.kv == nil {
		e.kv = store.NewMemory()
	}
	if e.history == nil {
		e.history = history.New(e.kv, e.clock)
	}
	if e.notifier == nil {
		e.notifier = NopNotifier{}
	}
	return e
}

// Load restores persisted state. Missing or malformed data leaves the default state.
func (e *Engine) Load(ctx context.Context) error {
	value, ok, err := e.kv.Get(ctx, StateKey)
	if err != nil {
		return fmt.Errorf("failed to read timer state: %w", err)
	}
	if !ok {
		return nil
	}
	var st State
	if err := json.Unmarshal([]byte(value), &st); err != nil {
		e.log.Warn().Err(err).Msg("ignoring malformed timer state")
		return nil
	}
	e.state = st.normalize()
	return nil
}

func (e *Engine) now() int64 {
	return e.clock.Now().UnixMilli()
}

// SetInput sets the countdown fields, clamped to 0-99 minutes and 0-59 seconds.
func (e *Engine) SetInput(minutes, seconds int) {
	e.minutes = min(max(minutes, 0), MaxInputMinutes)
	e.seconds = min(max(seconds, 0), MaxInputSeconds)
}

// Input returns the countdown fields.
func (e *Engine) Input() (minutes, seconds int) {
	return e.minutes, e.seconds
}

func (e *Engine) inputMs() int64 {
	return int64(e.minutes*60+e.seconds) * 1000
}

func (e *Engine) setInputMs(ms int64) {
	total := int(ms / 1000)
	e.SetInput(total/60, total%60)
}

// Mode returns the active mode.
func (e *Engine) Mode() Mode {
	return e.state.Mode
}

// State returns a copy of the current state.
func (e *Engine) State() State {
	st := e.state
	st.Stopwatch.Laps = append([]Lap(nil), e.state.Stopwatch.Laps...)
	return st
}

// Running reports whether the active timer is running.
func (e *Engine) Running() bool {
	return e.state.Running()
}

// BackgroundRunning reports whether the hidden timer is running.
func (e *Engine) BackgroundRunning() bool {
	if e.state.Mode == ModeCountdown {
		return e.state.Stopwatch.Running
	}
	return e.state.Countdown.Running
}

// Start runs the active timer. ErrZeroDuration leaves the engine untouched.
func (e *Engine) Start(ctx context.Context) error {
	next, effects, err := e.state.Start(e.now(), e.inputMs())
	if err != nil {
		return err
	}
	e.commit(ctx, next, effects)
	return nil
}

// Stop pauses the active timer.
func (e *Engine) Stop(ctx context.Context) {
	next, effects := e.state.Stop(e.now())
	e.commit(ctx, next, effects)
}

// Toggle stops a running timer or starts a stopped one.
func (e *Engine) Toggle(ctx context.Context) error {
	if e.Running() {
		e.Stop(ctx)
		return nil
	}
	return e.Start(ctx)
}

// Reset clears the active timer.
func (e *Engine) Reset(ctx context.Context) {
	next, effects := e.state.Reset()
	e.commit(ctx, next, effects)
}

// Lap records a stopwatch split.
func (e *Engine) Lap(ctx context.Context) error {
	next, effects, err := e.state.Lap(e.now())
	if err != nil {
		return err
	}
	e.commit(ctx, next, effects)
	return nil
}

// LapOrReset mirrors the secondary button: lap while the stopwatch runs, reset otherwise.
func (e *Engine) LapOrReset(ctx context.Context) {
	if err := e.Lap(ctx); errors.Is(err, ErrLapUnavailable) {
		e.Reset(ctx)
	}
}

// SetPreset starts a countdown of seconds and mirrors it into the input fields.
func (e *Engine) SetPreset(ctx context.Context, seconds int) error {
	next, effects, err := e.state.Preset(e.now(), seconds)
	if err != nil {
		return err
	}
	e.setInputMs(int64(seconds) * 1000)
	e.commit(ctx, next, effects)
	return nil
}

// SwitchMode changes the active timer.
func (e *Engine) SwitchMode(ctx context.Context, mode Mode) error {
	next, effects, err := e.state.SwitchMode(e.now(), mode)
	if err != nil {
		return err
	}
	e.commit(ctx, next, effects)
	return nil
}

// Tick settles a countdown that has run out. It is safe to call at any cadence.
func (e *Engine) Tick(ctx context.Context) {
	next, effects := e.state.Tick(e.now())
	e.commit(ctx, next, effects)
}

// CheckBackground settles a hidden countdown that has run out.
func (e *Engine) CheckBackground(ctx context.Context) {
	next, effects := e.state.CheckBackground(e.now())
	e.commit(ctx, next, effects)
}

// Resume settles anything that completed while the program was not running.
func (e *Engine) Resume(ctx context.Context) {
	e.Tick(ctx)
}

// Checkpoint re-persists state while a timer runs so a crash loses little.
func (e *Engine) Checkpoint(ctx context.Context) {
	if e.state.Countdown.Running || e.state.Stopwatch.Running {
		e.persist(ctx)
	}
}

// History returns completed countdowns, newest first.
func (e *Engine) History(ctx context.Context) ([]history.Entry, error) {
	return e.history.List(ctx)
}

func (e *Engine) commit(ctx context.Context, next State, effects []Effect) {
	e.state = next
	for _, eff := range effects {
		switch eff.Kind {
		case EffectPersist:
			e.persist(ctx)
		case EffectRecordHistory:
			if _, err := e.history.Append(ctx, eff.DurationMs); err != nil {
				e.log.Warn().Err(err).Msg("countdown not recorded in history")
			}
			e.log.Info().Int64("duration_ms", eff.DurationMs).Msg("countdown complete")
		case EffectChime:
			e.notifier.Chime()
		case EffectNotify:
			e.notifier.Notify(eff.Message, eff.Actions)
		}
	}
}

func (e *Engine) persist(ctx context.Context) {
	data, err := json.Marshal(e.state)
	if err != nil {
		e.log.Warn().Err(err).Msg("failed to encode timer state")
		return
	}
	if err := e.kv.Set(ctx, StateKey, string(data)); err != nil {
		e.log.Warn().Err(err).Msg("timer state kept in memory only")
	}
}
