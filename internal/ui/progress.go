// Package ui draws the interactive progress view of a render batch.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"kpoet/internal/driver"
)

const statusColumn = 10

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	statusColors = map[driver.Status]lipgloss.Color{
		driver.StatusQueued:  "7",
		driver.StatusWorking: "6",
		driver.StatusDone:    "2",
		driver.StatusError:   "1",
	}

	// Share of a unit's work finished once it enters a stage.
	stageWeight = map[driver.Stage]float64{
		driver.StageLoad:   0.2,
		driver.StageRender: 0.5,
		driver.StageWrite:  0.9,
	}

	stageVerb = map[driver.Stage]string{
		driver.StageLoad:   "loading",
		driver.StageRender: "rendering",
		driver.StageWrite:  "writing",
	}
)

type unitRow struct {
	path    string
	stage   driver.Stage
	status  driver.Status
	elapsed time.Duration
}

func (r unitRow) finished() bool {
	return r.status == driver.StatusDone || r.status == driver.StatusError
}

func (r unitRow) label() string {
	if r.status == driver.StatusWorking {
		if verb, ok := stageVerb[r.stage]; ok {
			return verb
		}
	}
	return string(r.status)
}

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []unitRow
	byPath  map[string]int
	batch   string // label of the latest batch-wide event
	width   int
	done    bool
}

type eventMsg driver.Event
type closedMsg struct{}

// NewProgressModel returns a Bubble Tea model listing files with their render
// status. The program quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	m := &progressModel{
		title:   title,
		events:  events,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("6")))),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(76)),
		rows:    make([]unitRow, len(files)),
		byPath:  make(map[string]int, len(files)),
		width:   80,
	}
	for i, f := range files {
		m.rows[i] = unitRow{path: f, status: driver.StatusQueued}
		m.byPath[f] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

// next waits for the following driver event.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return closedMsg{}
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(driver.Event(msg)), m.next())
	case closedMsg:
		m.done = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	if ev.File == "" {
		m.batch = unitRow{stage: ev.Stage, status: ev.Status}.label()
		return nil
	}
	i, ok := m.byPath[ev.File]
	if !ok {
		return nil
	}
	row := &m.rows[i]
	row.status = ev.Status
	if ev.Stage != "" {
		row.stage = ev.Stage
	}
	if ev.Elapsed > 0 {
		row.elapsed = ev.Elapsed
	}
	return m.bar.SetPercent(m.percent())
}

// percent is the finished share of the batch, counting units in flight by the
// weight of their stage.
func (m *progressModel) percent() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range m.rows {
		if r.finished() {
			sum++
			continue
		}
		sum += stageWeight[r.stage]
	}
	return sum / float64(len(m.rows))
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	header := m.title
	if m.batch != "" {
		header += " (" + m.batch + ")"
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-statusColumn-14, 20)
	finished, failed := 0, 0
	for _, r := range m.rows {
		status := lipgloss.NewStyle().Foreground(statusColors[r.status]).Render(fmt.Sprintf("%*s", statusColumn, r.label()))
		fmt.Fprintf(&b, "  %s %s", status, truncate(r.path, nameWidth))
		if r.finished() {
			finished++
			if r.status == driver.StatusError {
				failed++
			}
			if r.elapsed > 0 {
				b.WriteString(dimStyle.Render(" " + r.elapsed.Round(time.Millisecond).String()))
			}
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	fmt.Fprintf(&b, "\n%d/%d finished", finished, len(m.rows))
	if failed > 0 {
		fmt.Fprintf(&b, ", %d failed", failed)
	}
	b.WriteByte('\n')
	return b.String()
}

// truncate shortens value to width terminal cells, marking the cut with "..."
// when there is room for it.
func truncate(value string, width int) string {
	switch {
	case width <= 0 || runewidth.StringWidth(value) <= width:
		return value
	case width <= 3:
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
