package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lumakit/dmxlink/internal/protocol"
)

// DefaultRefreshInterval is how often the monitor polls the gateway
const DefaultRefreshInterval = 200 * time.Millisecond

// channelsPerRow is how many channel values one grid row shows
const channelsPerRow = 16

// UniverseFetcher reads full universes. *device.Device satisfies this.
type UniverseFetcher interface {
	GetUniverseData(universe uint16) ([]byte, error)
}

type tickMsg time.Time

type frameMsg struct {
	universe uint16
	values   []byte
	err      error
}

// MonitorModel is a Bubble Tea model that polls one universe and renders
// its channel values as a live grid.
type MonitorModel struct {
	fetcher  UniverseFetcher
	endpoint string
	universe uint16
	refresh  time.Duration

	values []byte
	err    error
	frames int

	spin   spinner.Model
	width  int
	height int
}

// NewMonitor creates a monitor for one universe of the given gateway
func NewMonitor(fetcher UniverseFetcher, endpoint string, universe uint16) MonitorModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	width, height := GetTerminalSize()
	return MonitorModel{
		fetcher:  fetcher,
		endpoint: endpoint,
		universe: universe,
		refresh:  DefaultRefreshInterval,
		spin:     s,
		width:    width,
		height:   height,
	}
}

// Init implements tea.Model
func (m MonitorModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.fetch())
}

// Update implements tea.Model
func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			if m.universe > 0 {
				m.universe--
				m.values = nil
				m.frames = 0
			}
			return m, nil
		case "right", "l":
			m.universe++
			m.values = nil
			m.frames = 0
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.width < MinTerminalWidth {
			m.width = MinTerminalWidth
		}
		if m.width > MaxContentWidth {
			m.width = MaxContentWidth
		}
		m.height = msg.Height
		return m, nil

	case frameMsg:
		// A frame for a universe we already switched away from is stale
		if msg.universe == m.universe {
			m.err = msg.err
			if msg.err == nil {
				m.values = msg.values
				m.frames++
			}
		}
		return m, tea.Tick(m.refresh, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})

	case tickMsg:
		return m, m.fetch()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model
func (m MonitorModel) View() string {
	var b strings.Builder

	title := titleStyle.Render(fmt.Sprintf("Universe %d", m.universe))
	status := statusStyle.Render(fmt.Sprintf("%s  %d frames", m.endpoint, m.frames))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, title, status))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	case m.values == nil:
		b.WriteString(statusStyle.Render(m.spin.View() + " waiting for first frame"))
		b.WriteString("\n")
	default:
		b.WriteString(gridBorderStyle(m.width).Render(renderGrid(m.values)))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("←/→ universe  q quit"))
	b.WriteString("\n")
	return b.String()
}

// renderGrid formats channel values as rows of 16, one three-digit cell
// per channel. Zero channels are dimmed so live levels stand out.
func renderGrid(values []byte) string {
	var rows []string
	for start := 0; start < len(values) && start < protocol.UniverseSize; start += channelsPerRow {
		end := start + channelsPerRow
		if end > len(values) {
			end = len(values)
		}

		cells := make([]string, 0, channelsPerRow+1)
		cells = append(cells, rowLabelStyle.Render(fmt.Sprintf("%3d", start)))
		for _, v := range values[start:end] {
			cell := fmt.Sprintf("%3d", v)
			if v == 0 {
				cells = append(cells, zeroChannelStyle.Render(cell))
			} else {
				cells = append(cells, activeChannelStyle.Render(cell))
			}
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	return strings.Join(rows, "\n")
}

// fetch reads the current universe off the model so the command does not
// race with universe switches
func (m MonitorModel) fetch() tea.Cmd {
	fetcher := m.fetcher
	universe := m.universe
	return func() tea.Msg {
		values, err := fetcher.GetUniverseData(universe)
		return frameMsg{universe: universe, values: values, err: err}
	}
}

// RunMonitor runs the monitor in the alternate screen until the user
// quits
func RunMonitor(fetcher UniverseFetcher, endpoint string, universe uint16) error {
	p := tea.NewProgram(NewMonitor(fetcher, endpoint, universe), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
