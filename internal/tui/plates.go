package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/liftkit/internal/plates"
	"github.com/verte-zerg/liftkit/internal/report"
)

const (
	fieldTarget = iota
	fieldBar
	fieldInventory
	fieldCount
)

type plateRow struct {
	kind   plates.Kind
	weight float64
}

func (m *Model) initPlates() {
	m.plateInputs = []textinput.Model{
		newNumberInput("Target: ", "225"),
		newNumberInput("Bar:    ", "45"),
	}
	if target := m.inventory.Target(); target > 0 {
		m.plateInputs[fieldTarget].SetValue(plates.FormatWeight(target))
	}
	m.plateInputs[fieldBar].SetValue(plates.FormatWeight(m.cfg.Bar))

	m.plateTable = table.New(
		table.WithColumns([]table.Column{
			{Title: "Plate", Width: 6},
			{Title: "Count", Width: 6},
			{Title: "Kind", Width: 11},
		}),
		table.WithHeight(6),
	)
	m.plateTable.SetStyles(plateTableStyles())
	m.refreshPlateRows()
	m.focusPlateField()
}

func newNumberInput(prompt, placeholder string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = placeholder
	input.CharLimit = 8
	input.Width = 10
	return input
}

func numericRunes(runes []rune) bool {
	for _, r := range runes {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

func plateTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Background(lipgloss.Color("#4A4A4A")).
		Bold(true)
	return styles
}

func (m *Model) refreshPlateRows() {
	m.plateRows = m.plateRows[:0]
	rows := make([]table.Row, 0, len(plates.Denominations(plates.Standard))+len(plates.Denominations(plates.Fractional)))
	for _, kind := range []plates.Kind{plates.Standard, plates.Fractional} {
		for _, weight := range plates.Denominations(kind) {
			m.plateRows = append(m.plateRows, plateRow{kind: kind, weight: weight})
			label := kind.String()
			if kind == plates.Fractional && !m.inventory.Fractional() {
				label += " (off)"
			}
			rows = append(rows, table.Row{
				plates.FormatWeight(weight),
				strconv.Itoa(m.inventory.Get(kind, weight)),
				label,
			})
		}
	}
	m.plateTable.SetRows(rows)
}

func (m *Model) focusPlateField() {
	for i := range m.plateInputs {
		if m.activeTab == tabPlates && i == m.plateFocus {
			m.plateInputs[i].Focus()
		} else {
			m.plateInputs[i].Blur()
		}
	}
	if m.activeTab == tabPlates && m.plateFocus == fieldInventory {
		m.plateTable.Focus()
	} else {
		m.plateTable.Blur()
	}
}

func (m *Model) layoutPlates() {
	_, bodyHeight, _ := m.layoutHeights()
	m.plateTable.SetHeight(maxInt(3, minInt(len(m.plateRows)+1, bodyHeight-len(m.plateInputs)-8)))
}

func (m *Model) updatePlates(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.plateFocus = (m.plateFocus + 1) % fieldCount
		m.focusPlateField()
		return m, nil
	case "shift+tab":
		m.plateFocus = (m.plateFocus + fieldCount - 1) % fieldCount
		m.focusPlateField()
		return m, nil
	case "enter":
		m.solve()
		return m, nil
	case "f":
		m.inventory.SetFractional(m.ctx, !m.inventory.Fractional())
		m.refreshPlateRows()
		m.resolve()
		return m, nil
	case "x":
		m.inventory.ClearTarget(m.ctx)
		m.plateInputs[fieldTarget].SetValue("")
		m.result = nil
		m.plateErr = ""
		return m, nil
	}

	if m.plateFocus == fieldInventory {
		switch msg.String() {
		case "+", "=":
			m.adjustPlateCount(1)
			return m, nil
		case "-":
			m.adjustPlateCount(-1)
			return m, nil
		}
		var cmd tea.Cmd
		m.plateTable, cmd = m.plateTable.Update(msg)
		return m, cmd
	}

	if msg.Type == tea.KeyRunes && !numericRunes(msg.Runes) {
		return m, nil
	}
	var cmd tea.Cmd
	m.plateInputs[m.plateFocus], cmd = m.plateInputs[m.plateFocus].Update(msg)
	return m, cmd
}

func (m *Model) adjustPlateCount(delta int) {
	idx := m.plateTable.Cursor()
	if idx < 0 || idx >= len(m.plateRows) {
		return
	}
	row := m.plateRows[idx]
	if err := m.inventory.Set(m.ctx, row.kind, row.weight, m.inventory.Get(row.kind, row.weight)+delta); err != nil {
		m.plateErr = err.Error()
		return
	}
	m.refreshPlateRows()
	m.resolve()
}

// resolve re-runs the last solve after an inventory change.
func (m *Model) resolve() {
	if m.result != nil || m.plateErr != "" {
		m.solve()
	}
}

func (m *Model) solve() {
	targetText := strings.TrimSpace(m.plateInputs[fieldTarget].Value())
	if targetText == "" {
		m.result = nil
		m.plateErr = "Enter a target weight."
		return
	}
	target, err := strconv.ParseFloat(targetText, 64)
	if err != nil {
		m.result = nil
		m.plateErr = fmt.Sprintf("Invalid target %q.", targetText)
		return
	}
	bar := m.cfg.Bar
	if barText := strings.TrimSpace(m.plateInputs[fieldBar].Value()); barText != "" {
		if bar, err = strconv.ParseFloat(barText, 64); err != nil {
			m.result = nil
			m.plateErr = fmt.Sprintf("Invalid bar weight %q.", barText)
			return
		}
	}

	res, err := plates.Solve(m.inventory.Request(target, bar))
	switch {
	case errors.Is(err, plates.ErrBelowMinimum):
		m.result = nil
		m.plateErr = fmt.Sprintf("Target is below the bar (%s).", plates.FormatWeight(bar))
		return
	case errors.Is(err, plates.ErrExceedsAvailable):
		m.result = nil
		m.plateErr = fmt.Sprintf("Target exceeds available plates (max %s).", plates.FormatWeight(m.inventory.MaxTotal(bar)))
		return
	case err != nil:
		m.result = nil
		m.plateErr = err.Error()
		return
	}
	m.inventory.SetTarget(m.ctx, target)
	m.result = &res
	m.resultTarget = target
	m.plateErr = ""
}

func (m *Model) renderPlates() string {
	lines := make([]string, 0, len(m.plateInputs)+8)
	for _, input := range m.plateInputs {
		lines = append(lines, input.View())
	}
	lines = append(lines, "")
	switch {
	case m.plateErr != "":
		lines = append(lines, errorStyle.Render(m.plateErr))
	case m.result != nil:
		lines = append(lines, m.renderResult(*m.result)...)
	default:
		lines = append(lines, mutedStyle.Render("Enter a target and press enter."))
	}
	lines = append(lines, "", m.plateTable.View())
	return strings.Join(lines, "\n")
}

func (m *Model) renderResult(res plates.Result) []string {
	lines := []string{
		accentStyle.Render(fmt.Sprintf("%s total", plates.FormatWeight(m.resultTarget))) +
			mutedStyle.Render(fmt.Sprintf("  %s per side", plates.FormatWeight(res.PerSideTarget))),
	}
	used := res.Used()
	if len(used) == 0 {
		lines = append(lines, "Empty bar.")
	} else {
		parts := make([]string, 0, len(used))
		for _, l := range used {
			parts = append(parts, fmt.Sprintf("%d × %s", l.PerSide, plates.FormatWeight(l.Weight)))
		}
		lines = append(lines, "Each side: "+strings.Join(parts, ", "))
		lines = append(lines, report.BarDiagram(res, m.width))
	}
	if res.Remainder > 0 {
		short := fmt.Sprintf("Loaded %s, %s short.", plates.FormatWeight(res.Achieved), plates.FormatWeight(res.Remainder))
		if res.Rounded != res.Achieved {
			short += fmt.Sprintf(" Try %s.", plates.FormatWeight(res.Rounded))
		}
		lines = append(lines, worstStyle.Render(short))
	}
	return lines
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
