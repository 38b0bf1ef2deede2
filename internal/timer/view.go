package timer

// LapView is a lap annotated for display.
type LapView struct {
	Lap
	Best  bool
	Worst bool
}

// View is everything a renderer needs for the active timer.
type View struct {
	Mode       Mode
	Status     Status
	DisplayMs  int64
	Display    string
	OvertimeMs int64
	Overtime   string
	Laps       []LapView
	// LastFinishedMs is the length of the most recent completed countdown.
	LastFinishedMs    int64
	BackgroundRunning bool
}

// Finished reports whether the countdown has completed, including overtime.
func (v View) Finished() bool {
	return v.Status == StatusFinished || v.Status == StatusOvertime
}

// View derives the display for the active timer. It does not settle completion; call Tick for that.
func (e *Engine) View() View {
	now := e.now()
	v := View{
		Mode:              e.state.Mode,
		LastFinishedMs:    e.state.Countdown.LastFinishedMs,
		BackgroundRunning: e.BackgroundRunning(),
	}
	if e.state.Mode == ModeStopwatch {
		v.DisplayMs, v.Status = DeriveStopwatch(e.state.Stopwatch, now)
		v.Laps = annotateLaps(e.state.Stopwatch.Laps)
	} else {
		reading := DeriveCountdown(e.state.Countdown, now)
		v.Status = reading.Status
		v.DisplayMs = reading.RemainingMs
		if reading.Status == StatusIdle {
			v.DisplayMs = e.inputMs()
		}
		v.OvertimeMs = reading.OvertimeMs
		if v.OvertimeMs > 0 {
			v.Overtime = "+" + FormatDuration(v.OvertimeMs, false)
		}
	}
	v.Display = FormatDuration(v.DisplayMs, true)
	return v
}

// annotateLaps marks the fastest and slowest split once there are more than two.
// Ties go to the newest lap.
func annotateLaps(laps []Lap) []LapView {
	out := make([]LapView, len(laps))
	for i, lap := range laps {
		out[i] = LapView{Lap: lap}
	}
	if len(laps) <= 2 {
		return out
	}
	best, worst := 0, 0
	for i, lap := range laps {
		if lap.DeltaMs < laps[best].DeltaMs {
			best = i
		}
		if lap.DeltaMs > laps[worst].DeltaMs {
			worst = i
		}
	}
	out[best].Best = true
	out[worst].Worst = true
	return out
}
