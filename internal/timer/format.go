package timer

import "fmt"

// FormatDuration renders milliseconds as MM:SS, or MM:SS.cc with centiseconds.
func FormatDuration(ms int64, withCentis bool) string {
	if ms < 0 {
		ms = 0
	}
	totalSeconds := ms / 1000
	out := fmt.Sprintf("%02d:%02d", totalSeconds/60, totalSeconds%60)
	if withCentis {
		out += fmt.Sprintf(".%02d", (ms%1000)/10)
	}
	return out
}
