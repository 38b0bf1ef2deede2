package report

import (
	"fmt"
	"io"
	"time"

	"github.com/verte-zerg/liftkit/internal/model"
	"github.com/verte-zerg/liftkit/internal/plates"
	"github.com/verte-zerg/liftkit/internal/timer"
)

// RenderSolve prints a solve result with a per-side table and a bar diagram.
func RenderSolve(w io.Writer, target, bar float64, res plates.Result, width int) error {
	if _, err := fmt.Fprintf(w, "Target: %s  Bar: %s  Per side: %s\n",
		plates.FormatWeight(target), plates.FormatWeight(bar), plates.FormatWeight(res.PerSideTarget)); err != nil {
		return err
	}
	used := res.Used()
	if len(used) == 0 {
		if _, err := fmt.Fprintln(w, "Empty bar."); err != nil {
			return err
		}
	} else {
		rows := make([][]string, 0, len(used))
		for _, l := range used {
			rows = append(rows, []string{
				plates.FormatWeight(l.Weight),
				fmt.Sprintf("%d", l.PerSide),
				fmt.Sprintf("%d", l.Available),
			})
		}
		for _, line := range formatTable([]string{"Plate", "Per side", "Owned"}, rows, map[int]bool{0: true, 1: true, 2: true}) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, BarDiagram(res, width)); err != nil {
			return err
		}
	}
	if res.Remainder > 0 {
		if _, err := fmt.Fprintf(w, "Loaded %s, %s short.", plates.FormatWeight(res.Achieved), plates.FormatWeight(res.Remainder)); err != nil {
			return err
		}
		if res.Rounded != res.Achieved {
			if _, err := fmt.Fprintf(w, " Try %s.", plates.FormatWeight(res.Rounded)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// RenderInventory prints plate counts, standard plates first.
func RenderInventory(w io.Writer, rows []model.InventoryRow, useFractional bool) error {
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		kind := "standard"
		if r.Fractional {
			kind = "fractional"
		}
		cells = append(cells, []string{plates.FormatWeight(r.Weight), fmt.Sprintf("%d", r.Count), kind})
	}
	for _, line := range formatTable([]string{"Plate", "Count", "Kind"}, cells, map[int]bool{0: true, 1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	state := "off"
	if useFractional {
		state = "on"
	}
	_, err := fmt.Fprintf(w, "Fractional plates: %s\n", state)
	return err
}

// RenderHistory prints completed countdowns, newest first, with a sparkline
// of their lengths in chronological order.
func RenderHistory(w io.Writer, rests []model.CompletedRest, now time.Time) error {
	if len(rests) == 0 {
		_, err := fmt.Fprintln(w, "No completed countdowns.")
		return err
	}
	rows := make([][]string, 0, len(rests))
	values := make([]float64, len(rests))
	for i, r := range rests {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			timer.FormatDuration(r.Duration.Milliseconds(), false),
			r.CompletedAt.Local().Format("2006-01-02 15:04"),
			Ago(now.Sub(r.CompletedAt)),
		})
		values[len(rests)-1-i] = r.Duration.Seconds()
	}
	for _, line := range formatTable([]string{"#", "Length", "Completed", ""}, rows, map[int]bool{0: true, 1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if len(values) > 1 {
		if _, err := fmt.Fprintf(w, "Trend: %s\n", Sparkline(values)); err != nil {
			return err
		}
	}
	return nil
}

// StatusLine summarises the active timer on one line.
func StatusLine(v timer.View) string {
	line := fmt.Sprintf("%s %s %s", v.Mode, v.Status, v.Display)
	if v.Overtime != "" {
		line += " " + v.Overtime
	}
	if v.BackgroundRunning {
		other := timer.ModeStopwatch
		if v.Mode == timer.ModeStopwatch {
			other = timer.ModeCountdown
		}
		line += fmt.Sprintf(" (%s running)", other)
	}
	return line
}

// RenderTimerStatus prints the active timer as seen at the moment of the call.
func RenderTimerStatus(w io.Writer, v timer.View) error {
	if _, err := fmt.Fprintln(w, StatusLine(v)); err != nil {
		return err
	}
	if v.LastFinishedMs > 0 && v.Mode == timer.ModeCountdown {
		if _, err := fmt.Fprintf(w, "Last rest: %s\n", timer.FormatDuration(v.LastFinishedMs, false)); err != nil {
			return err
		}
	}
	for _, lap := range v.Laps {
		mark := ""
		switch {
		case lap.Best:
			mark = " best"
		case lap.Worst:
			mark = " worst"
		}
		if _, err := fmt.Fprintf(w, "Lap %d  %s  %s%s\n", lap.Index,
			timer.FormatDuration(lap.DeltaMs, true), timer.FormatDuration(lap.CumulativeMs, true), mark); err != nil {
			return err
		}
	}
	return nil
}

// Ago renders a coarse relative age such as "3m ago".
func Ago(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	}
}
