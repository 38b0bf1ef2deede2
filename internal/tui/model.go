// Package tui provides the Bubble Tea interface for the plate calculator and rest timer.
package tui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/liftkit/internal/model"
	"github.com/verte-zerg/liftkit/internal/plates"
	"github.com/verte-zerg/liftkit/internal/report"
	"github.com/verte-zerg/liftkit/internal/timer"
)

const (
	tabTimer = iota
	tabPlates
	tabHistory
)

const (
	fastTickInterval       = 10 * time.Millisecond
	durabilityTickInterval = 5 * time.Second
	backgroundTickInterval = time.Second
	bannerTimeout          = 10 * time.Second
)

type (
	fastTickMsg       struct{ gen int }
	durabilityTickMsg struct{}
	backgroundTickMsg struct{}
	bannerExpiredMsg  struct{ gen int }
)

// Options wires the model to its collaborators.
type Options struct {
	Config    model.Config
	Engine    *timer.Engine
	Inventory *plates.InventoryStore
	Notifier  *Notifier
	// Clock stamps history ages; it should be the engine's clock.
	Clock clockwork.Clock
	// Bell receives the chime. Nil disables it.
	Bell   io.Writer
	Logger zerolog.Logger
}

// Model implements the tabbed Bubble Tea UI.
type Model struct {
	ctx       context.Context
	cfg       model.Config
	engine    *timer.Engine
	inventory *plates.InventoryStore
	notifier  *Notifier
	clock     clockwork.Clock
	bell      io.Writer
	log       zerolog.Logger

	tabs      []string
	activeTab int
	width     int
	height    int

	tickGen   int
	banner    *banner
	bannerGen int

	plateInputs  []textinput.Model
	plateFocus   int
	plateTable   table.Model
	plateRows    []plateRow
	result       *plates.Result
	resultTarget float64
	plateErr     string

	historyView viewport.Model
}

// NewModel constructs the UI. Engine and Inventory must already be loaded.
func NewModel(opts Options) *Model {
	m := &Model{
		ctx:       context.Background(),
		cfg:       opts.Config,
		engine:    opts.Engine,
		inventory: opts.Inventory,
		notifier:  opts.Notifier,
		clock:     opts.Clock,
		bell:      opts.Bell,
		log:       opts.Logger,
		tabs:      []string{"Timer", "Plates", "History"},
	}
	if m.notifier == nil {
		m.notifier = NewNotifier()
	}
	if m.clock == nil {
		m.clock = clockwork.NewRealClock()
	}
	if !m.cfg.Chime {
		m.bell = nil
	}
	m.historyView = viewport.New(0, 0)
	m.initPlates()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.engine.Resume(m.ctx)
	return tea.Batch(
		m.drainNotifier(),
		m.armFastTick(),
		tea.Tick(durabilityTickInterval, func(time.Time) tea.Msg { return durabilityTickMsg{} }),
		tea.Tick(backgroundTickInterval, func(time.Time) tea.Msg { return backgroundTickMsg{} }),
	)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case fastTickMsg:
		if msg.gen != m.tickGen {
			return m, nil
		}
		m.engine.Tick(m.ctx)
		if !m.engine.Running() {
			return m, m.drainNotifier()
		}
		return m, tea.Batch(m.drainNotifier(), m.nextFastTick())
	case durabilityTickMsg:
		m.engine.Checkpoint(m.ctx)
		return m, tea.Tick(durabilityTickInterval, func(time.Time) tea.Msg { return durabilityTickMsg{} })
	case backgroundTickMsg:
		m.engine.CheckBackground(m.ctx)
		return m, tea.Batch(
			m.drainNotifier(),
			tea.Tick(backgroundTickInterval, func(time.Time) tea.Msg { return backgroundTickMsg{} }),
		)
	case bannerExpiredMsg:
		if msg.gen == m.bannerGen {
			m.banner = nil
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.banner != nil {
		switch msg.String() {
		case "g":
			m.banner = nil
			m.activeTab = tabTimer
			return m, m.afterTimerChange(m.engine.SwitchMode(m.ctx, timer.ModeCountdown))
		case "esc":
			m.banner = nil
			return m, nil
		}
	}
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "[":
		m.moveTab(-1)
		return m, nil
	case "]":
		m.moveTab(1)
		return m, nil
	}
	switch m.activeTab {
	case tabTimer:
		return m.updateTimer(msg)
	case tabPlates:
		return m.updatePlates(msg)
	default:
		var cmd tea.Cmd
		m.historyView, cmd = m.historyView.Update(msg)
		return m, cmd
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabHistory {
		m.refreshHistory()
	}
	m.focusPlateField()
}

// armFastTick starts a new tick chain when the active timer runs. Older chains
// are dropped by generation.
func (m *Model) armFastTick() tea.Cmd {
	m.tickGen++
	if !m.engine.Running() {
		return nil
	}
	return m.nextFastTick()
}

func (m *Model) nextFastTick() tea.Cmd {
	gen := m.tickGen
	return tea.Tick(fastTickInterval, func(time.Time) tea.Msg { return fastTickMsg{gen: gen} })
}

// drainNotifier turns queued chimes and banners into commands.
func (m *Model) drainNotifier() tea.Cmd {
	chimes, banners := m.notifier.drain()
	if chimes == 0 && len(banners) == 0 {
		return nil
	}
	var cmds []tea.Cmd
	if chimes > 0 {
		if m.activeTab == tabHistory {
			m.refreshHistory()
		}
		if m.bell != nil {
			bell := m.bell
			cmds = append(cmds, func() tea.Msg {
				if _, err := bell.Write([]byte("\a")); err != nil {
					// Best-effort chime.
					_ = err
				}
				return nil
			})
		}
	}
	if len(banners) > 0 {
		latest := banners[len(banners)-1]
		m.banner = &latest
		m.bannerGen++
		gen := m.bannerGen
		cmds = append(cmds, tea.Tick(bannerTimeout, func(time.Time) tea.Msg { return bannerExpiredMsg{gen: gen} }))
	}
	return tea.Batch(cmds...)
}

func (m *Model) refreshHistory() {
	entries, err := m.engine.History(m.ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("failed to load history")
	}
	rests := make([]model.CompletedRest, 0, len(entries))
	for _, e := range entries {
		rests = append(rests, model.CompletedRest{Duration: e.Duration(), CompletedAt: e.Time()})
	}
	var buf bytes.Buffer
	if err := report.RenderHistory(&buf, rests, m.clock.Now()); err != nil {
		m.log.Warn().Err(err).Msg("failed to render history")
	}
	m.historyView.SetContent(strings.TrimRight(buf.String(), "\n"))
}

func (m *Model) updateLayout() {
	_, bodyHeight, _ := m.layoutHeights()
	m.historyView.Width = m.width
	m.historyView.Height = bodyHeight
	m.layoutPlates()
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = maxInt(1, lipgloss.Height(activeNavStyle.Render("X")))
	if m.banner != nil {
		headerHeight += lipgloss.Height(m.renderBanner())
	}
	footerHeight = len(m.helpLines())
	bodyHeight = maxInt(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := m.renderTabs()
	if m.banner != nil {
		header = m.renderBanner() + "\n" + header
	}
	var body string
	switch m.activeTab {
	case tabTimer:
		body = m.renderTimer()
	case tabPlates:
		body = m.renderPlates()
	default:
		body = m.historyView.View()
	}
	footer := footerStyle.Render(strings.Join(m.helpLines(), "\n"))
	return strings.Join([]string{
		fitLines(header, m.width, headerHeight),
		fitLines(body, m.width, bodyHeight),
		fitLines(footer, m.width, footerHeight),
	}, "\n")
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderBanner() string {
	if m.banner == nil {
		return ""
	}
	text := m.banner.message
	if len(m.banner.actions) == 2 {
		text += mutedStyle.Render("  g: " + m.banner.actions[0] + "  esc: " + m.banner.actions[1])
	}
	return bannerStyle.Render(text)
}

func (m *Model) helpLines() []string {
	var segments []string
	switch m.activeTab {
	case tabTimer:
		segments = []string{"space: start/stop", "r: reset", "l: lap", "c/s: countdown/stopwatch", "1-9: presets", "arrows: set time"}
	case tabPlates:
		segments = []string{"enter: solve", "tab: next field", "+/-: plate count", "f: fractional", "x: clear target"}
	default:
		segments = []string{"up/down: scroll"}
	}
	segments = append(segments, "[/]: tabs", "q: quit")
	return wrapSegments(segments, m.width)
}
