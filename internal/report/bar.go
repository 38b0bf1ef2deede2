package report

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/liftkit/internal/plates"
)

const sleeve = "|==|"

// BarDiagram draws one side's plates mirrored around the bar, heaviest closest
// to the centre. The result is truncated to width cells when width > 0.
func BarDiagram(res plates.Result, width int) string {
	var side []string
	for _, l := range res.Loads {
		for i := 0; i < l.PerSide; i++ {
			side = append(side, "["+plates.FormatWeight(l.Weight)+"]")
		}
	}
	left := make([]string, len(side))
	for i, p := range side {
		left[len(side)-1-i] = p
	}
	out := strings.Join(left, "") + sleeve + "------" + sleeve + strings.Join(side, "")
	if width > 0 && runewidth.StringWidth(out) > width {
		out = runewidth.Truncate(out, width, "…")
	}
	return out
}
