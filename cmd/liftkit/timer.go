package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/liftkit/internal/history"
	"github.com/verte-zerg/liftkit/internal/model"
	"github.com/verte-zerg/liftkit/internal/report"
	"github.com/verte-zerg/liftkit/internal/store"
	"github.com/verte-zerg/liftkit/internal/timer"
)

const watchInterval = 100 * time.Millisecond

// cliNotifier rings the bell on stderr and logs background completions.
type cliNotifier struct {
	bell io.Writer
	log  zerolog.Logger
}

func (n cliNotifier) Chime() {
	if n.bell == nil {
		return
	}
	if _, err := n.bell.Write([]byte("\a")); err != nil {
		// Best-effort chime.
		_ = err
	}
}

func (n cliNotifier) Notify(message string, _ []string) {
	n.log.Info().Msg(message)
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List recently completed countdowns",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	st, done, err := openStore()
	if err != nil {
		return err
	}
	defer done()

	clock := clockwork.NewRealClock()
	entries, err := history.New(st, clock).List(cmd.Context())
	if err != nil {
		return err
	}
	rests := make([]model.CompletedRest, 0, len(entries))
	for _, e := range entries {
		rests = append(rests, model.CompletedRest{Duration: e.Duration(), CompletedAt: e.Time()})
	}
	return report.RenderHistory(cmd.OutOrStdout(), rests, clock.Now())
}

func newTimerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Control the rest timer outside the TUI",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the active timer",
		Args:  cobra.NoArgs,
		RunE:  runTimerStatusCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Follow the active timer until interrupted",
		Args:  cobra.NoArgs,
		RunE:  runTimerWatchCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "start [duration]",
		Short: "Start a countdown (e.g. 90, 90s, 1:30) or resume the active timer",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTimerStartCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Pause the active timer",
		Args:  cobra.NoArgs,
		RunE:  runTimerStopCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Clear the active timer",
		Args:  cobra.NoArgs,
		RunE:  runTimerResetCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:       "mode countdown|stopwatch",
		Short:     "Switch the active timer",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(timer.ModeCountdown), string(timer.ModeStopwatch)},
		RunE:      runTimerModeCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "lap",
		Short: "Record a stopwatch lap",
		Args:  cobra.NoArgs,
		RunE:  runTimerLapCmd,
	})
	return cmd
}

// withEngine loads the persisted timer, settles anything that completed while
// nothing was running, and hands the engine to fn.
func withEngine(cmd *cobra.Command, fn func(context.Context, *timer.Engine, clockwork.Clock) error) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st, done, err := openStore()
	if err != nil {
		return err
	}
	defer done()
	return runWithEngine(cmd.Context(), cmd.ErrOrStderr(), cfg, st, clockwork.NewRealClock(), fn)
}

func runWithEngine(ctx context.Context, errOut io.Writer, cfg model.Config, kv store.KV, clock clockwork.Clock, fn func(context.Context, *timer.Engine, clockwork.Clock) error) error {
	logger := setupLogger(errOut, cfg.LogLevel)
	notifier := cliNotifier{log: logger}
	if cfg.Chime {
		notifier.bell = errOut
	}
	engine := timer.NewEngine(timer.Options{
		Clock:    clock,
		Store:    kv,
		Notifier: notifier,
		Logger:   logger,
	})
	if err := engine.Load(ctx); err != nil {
		return err
	}
	engine.Resume(ctx)
	return fn(ctx, engine, clock)
}

func runTimerStatusCmd(cmd *cobra.Command, _ []string) error {
	return withEngine(cmd, func(_ context.Context, e *timer.Engine, _ clockwork.Clock) error {
		return report.RenderTimerStatus(cmd.OutOrStdout(), e.View())
	})
}

func runTimerStartCmd(cmd *cobra.Command, args []string) error {
	return withEngine(cmd, func(ctx context.Context, e *timer.Engine, _ clockwork.Clock) error {
		if len(args) == 1 {
			seconds, err := parseRestDuration(args[0])
			if err != nil {
				return err
			}
			if err := e.SetPreset(ctx, seconds); err != nil {
				return err
			}
		} else if err := e.Start(ctx); err != nil {
			if errors.Is(err, timer.ErrZeroDuration) {
				return fmt.Errorf("nothing to resume; pass a duration: %w", err)
			}
			return err
		}
		return report.RenderTimerStatus(cmd.OutOrStdout(), e.View())
	})
}

func runTimerStopCmd(cmd *cobra.Command, _ []string) error {
	return withEngine(cmd, func(ctx context.Context, e *timer.Engine, _ clockwork.Clock) error {
		e.Stop(ctx)
		return report.RenderTimerStatus(cmd.OutOrStdout(), e.View())
	})
}

func runTimerResetCmd(cmd *cobra.Command, _ []string) error {
	return withEngine(cmd, func(ctx context.Context, e *timer.Engine, _ clockwork.Clock) error {
		e.Reset(ctx)
		return report.RenderTimerStatus(cmd.OutOrStdout(), e.View())
	})
}

func runTimerModeCmd(cmd *cobra.Command, args []string) error {
	mode, err := timer.ParseMode(args[0])
	if err != nil {
		return err
	}
	return withEngine(cmd, func(ctx context.Context, e *timer.Engine, _ clockwork.Clock) error {
		if err := e.SwitchMode(ctx, mode); err != nil {
			return err
		}
		return report.RenderTimerStatus(cmd.OutOrStdout(), e.View())
	})
}

func runTimerLapCmd(cmd *cobra.Command, _ []string) error {
	return withEngine(cmd, func(ctx context.Context, e *timer.Engine, _ clockwork.Clock) error {
		if err := e.Lap(ctx); err != nil {
			return err
		}
		return report.RenderTimerStatus(cmd.OutOrStdout(), e.View())
	})
}

func runTimerWatchCmd(cmd *cobra.Command, _ []string) error {
	return withEngine(cmd, func(ctx context.Context, e *timer.Engine, clock clockwork.Clock) error {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watchTimer(ctx, e, clock, cmd.OutOrStdout())
	})
}

// watchTimer redraws the status line until ctx is cancelled.
func watchTimer(ctx context.Context, e *timer.Engine, clock clockwork.Clock, out io.Writer) error {
	ticker := clock.NewTicker(watchInterval)
	defer ticker.Stop()
	for {
		if _, err := fmt.Fprintf(out, "\r\x1b[K%s", report.StatusLine(e.View())); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			e.Checkpoint(context.WithoutCancel(ctx))
			_, err := fmt.Fprintln(out)
			return err
		case <-ticker.Chan():
			e.Tick(ctx)
		}
	}
}

// parseRestDuration accepts plain seconds ("90"), Go durations ("90s", "2m")
// and minutes:seconds ("1:30").
func parseRestDuration(value string) (int, error) {
	value = strings.TrimSpace(value)
	if minutes, seconds, ok := strings.Cut(value, ":"); ok {
		m, merr := strconv.Atoi(minutes)
		s, serr := strconv.Atoi(seconds)
		if merr != nil || serr != nil || m < 0 || s < 0 || s > timer.MaxInputSeconds {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		return positiveSeconds(value, m*60+s)
	}
	if n, err := strconv.Atoi(value); err == nil {
		return positiveSeconds(value, n)
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	return positiveSeconds(value, int(d/time.Second))
}

func positiveSeconds(value string, seconds int) (int, error) {
	if seconds <= 0 {
		return 0, fmt.Errorf("duration %q must be at least one second: %w", value, timer.ErrZeroDuration)
	}
	return seconds, nil
}
