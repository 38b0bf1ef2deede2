package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/liftkit/internal/timer"
)

const secondsStep = 5

func (m *Model) updateTimer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case " ", "space":
		return m, m.afterTimerChange(m.engine.Toggle(m.ctx))
	case "r":
		m.engine.Reset(m.ctx)
		return m, m.afterTimerChange(nil)
	case "l":
		err := m.engine.Lap(m.ctx)
		if errors.Is(err, timer.ErrLapUnavailable) {
			err = nil
		}
		return m, m.afterTimerChange(err)
	case "c":
		return m, m.afterTimerChange(m.engine.SwitchMode(m.ctx, timer.ModeCountdown))
	case "s":
		return m, m.afterTimerChange(m.engine.SwitchMode(m.ctx, timer.ModeStopwatch))
	case "up", "down", "left", "right":
		m.adjustInput(key)
		return m, nil
	}
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		idx := int(key[0] - '1')
		if idx < len(m.cfg.Presets) {
			return m, m.afterTimerChange(m.engine.SetPreset(m.ctx, m.cfg.Presets[idx]))
		}
	}
	return m, nil
}

// afterTimerChange reports an operation error and restarts the fast tick.
// Starting with an empty input is ignored.
func (m *Model) afterTimerChange(err error) tea.Cmd {
	if err != nil && !errors.Is(err, timer.ErrZeroDuration) {
		m.log.Warn().Err(err).Msg("timer operation failed")
	}
	return tea.Batch(m.drainNotifier(), m.armFastTick())
}

func (m *Model) adjustInput(key string) {
	if m.engine.Mode() != timer.ModeCountdown || m.engine.Running() {
		return
	}
	minutes, seconds := m.engine.Input()
	switch key {
	case "up":
		minutes++
	case "down":
		minutes--
	case "right":
		seconds += secondsStep
	case "left":
		seconds -= secondsStep
	}
	m.engine.SetInput(minutes, seconds)
}

func (m *Model) renderTimer() string {
	v := m.engine.View()
	lines := []string{m.renderModeSwitch(v), ""}

	display := displayStyle.Render(v.Display)
	if v.Overtime != "" {
		display += "  " + worstStyle.Render(v.Overtime)
	}
	lines = append(lines, display, mutedStyle.Render(statusLabel(v)))

	if v.Mode == timer.ModeCountdown {
		minutes, seconds := m.engine.Input()
		lines = append(lines, "", fmt.Sprintf("Set: %02d:%02d", minutes, seconds))
		if v.LastFinishedMs > 0 {
			lines = append(lines, mutedStyle.Render("Last rest: "+timer.FormatDuration(v.LastFinishedMs, false)))
		}
		if presets := m.renderPresets(); presets != "" {
			lines = append(lines, "", presets)
		}
	} else if len(v.Laps) > 0 {
		lines = append(lines, "")
		for _, lap := range v.Laps {
			line := fmt.Sprintf("Lap %2d  %s  %s", lap.Index,
				timer.FormatDuration(lap.DeltaMs, true), timer.FormatDuration(lap.CumulativeMs, true))
			switch {
			case lap.Best:
				line = bestStyle.Render(line)
			case lap.Worst:
				line = worstStyle.Render(line)
			}
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderModeSwitch(v timer.View) string {
	countdown := mutedStyle.Render("Countdown")
	stopwatch := mutedStyle.Render("Stopwatch")
	if v.Mode == timer.ModeCountdown {
		countdown = accentStyle.Render("Countdown")
	} else {
		stopwatch = accentStyle.Render("Stopwatch")
	}
	line := countdown + "  " + stopwatch
	if v.BackgroundRunning {
		other := "stopwatch"
		if v.Mode == timer.ModeStopwatch {
			other = "countdown"
		}
		line += mutedStyle.Render("  (" + other + " running)")
	}
	return line
}

func statusLabel(v timer.View) string {
	switch v.Status {
	case timer.StatusFinished:
		return "Done"
	case timer.StatusOvertime:
		return "Overtime"
	default:
		return strings.ToUpper(v.Status.String()[:1]) + v.Status.String()[1:]
	}
}

func (m *Model) renderPresets() string {
	parts := make([]string, 0, len(m.cfg.Presets))
	for i, seconds := range m.cfg.Presets {
		parts = append(parts, fmt.Sprintf("%d %s", i+1, timer.FormatDuration(int64(seconds)*1000, false)))
	}
	return mutedStyle.Render(strings.Join(parts, "  "))
}
