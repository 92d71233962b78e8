// Package guimonitor renders the GUI capture ring as a live scrolling
// table, in the same bubbletea/bubbles/lipgloss idiom the teacher uses
// for its startup progress screen: a tea.Tick driving periodic polling
// rather than a push subscription, since the ring is a plain SPSC
// queue with no notification mechanism of its own.
package guimonitor

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/schollz/zynmidirouter/internal/ring"
	"github.com/schollz/zynmidirouter/internal/types"
)

// pollInterval is how often the model drains the GUI ring. The ring
// holds 32 slots and drops captures once full; this interval is
// longer than a callback period (midiemulate ticks every 5ms), so the
// ring absorbs several periods' captures between polls, while staying
// far from a busy loop.
const pollInterval = 30 * time.Millisecond

// historyRows bounds how many captured events the table keeps on
// screen at once.
const historyRows = 200

type tickMsg time.Time

// Model is a tea.Model that polls a *ring.GUI and shows captured
// events (class, channel, two data bytes) in a scrolling table, most
// recent first.
type Model struct {
	src   *ring.GUI
	table table.Model
	rows  []table.Row
	start time.Time
}

// New builds a monitor model reading from src.
func New(src *ring.GUI) Model {
	columns := []table.Column{
		{Title: "t+ms", Width: 10},
		{Title: "class", Width: 14},
		{Title: "chan", Width: 5},
		{Title: "d1", Width: 5},
		{Title: "d2", Width: 5},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
		table.WithHeight(historyRows),
	)

	style := table.DefaultStyles()
	style.Header = style.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	style.Selected = lipgloss.NewStyle()
	t.SetStyles(style)

	return Model{src: src, table: t, start: zeroTime()}
}

// zeroTime exists only so New doesn't call time.Now() at construction
// — the first tick sets the real epoch, keeping the model's own
// elapsed-time math the only place that reads the wall clock.
func zeroTime() time.Time { return time.Time{} }

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(msg.Height - 4)
		return m, nil

	case tickMsg:
		if m.start.IsZero() {
			m.start = time.Time(msg)
		}
		elapsed := time.Time(msg).Sub(m.start).Milliseconds()
		for {
			ev32 := m.src.Read()
			if ev32 == 0 {
				break
			}
			status := byte(ev32 >> 16)
			d1 := byte(ev32 >> 8)
			d2 := byte(ev32)
			class := types.Class(status >> 4)
			row := table.Row{
				fmt.Sprintf("%d", elapsed),
				class.String(),
				fmt.Sprintf("%d", status&0x0F),
				fmt.Sprintf("%d", d1),
				fmt.Sprintf("%d", d2),
			}
			m.rows = append([]table.Row{row}, m.rows...)
		}
		if len(m.rows) > historyRows {
			m.rows = m.rows[:historyRows]
		}
		m.table.SetRows(m.rows)
		return m, tick()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Render("GUI capture ring")
	help := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("q to quit")
	return lipgloss.JoinVertical(lipgloss.Left, title, m.table.View(), help)
}

// Run starts the monitor program and blocks until the user quits.
func Run(src *ring.GUI) error {
	p := tea.NewProgram(New(src))
	_, err := p.Run()
	return err
}
