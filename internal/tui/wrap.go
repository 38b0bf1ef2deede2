package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const segmentGap = "  "

// wrapSegments packs help segments into lines no wider than width. A segment
// is never split; one wider than width gets a line of its own.
func wrapSegments(segments []string, width int) []string {
	if len(segments) == 0 {
		return nil
	}
	if width <= 0 {
		return []string{strings.Join(segments, segmentGap)}
	}
	var lines []string
	var current strings.Builder
	currentWidth := 0
	gapWidth := runewidth.StringWidth(segmentGap)
	for _, seg := range segments {
		segWidth := runewidth.StringWidth(seg)
		if currentWidth > 0 && currentWidth+gapWidth+segWidth > width {
			lines = append(lines, current.String())
			current.Reset()
			currentWidth = 0
		}
		if currentWidth > 0 {
			current.WriteString(segmentGap)
			currentWidth += gapWidth
		}
		current.WriteString(seg)
		currentWidth += segWidth
	}
	if currentWidth > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
