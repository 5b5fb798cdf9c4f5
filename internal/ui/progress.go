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

	"husk/internal/driver"
)

// stages lists the driver stages in the order they run. The lower stage
// only runs when lowering was requested.
var stages = []driver.Stage{
	driver.StageParse,
	driver.StageDecl,
	driver.StageInfer,
	driver.StageContract,
	driver.StageLower,
}

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	prog    progress.Model

	// phases tracks stage-wide events, files per-file events.
	phases  map[driver.Stage]phaseState
	current driver.Stage
	want    int
	files   []fileItem
	index   map[string]int
	width   int
	done    bool
}

type phaseState struct {
	status  driver.Status
	elapsed time.Duration
}

type fileItem struct {
	path   string
	status string
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel renders check progress for files from events. lower says
// whether the lower stage will run. The model quits when events is closed.
func NewProgressModel(title string, files []string, lower bool, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	want := len(stages)
	if !lower {
		want--
	}
	items := make([]fileItem, len(files))
	index := make(map[string]int, len(files))
	for i, f := range files {
		items[i] = fileItem{path: f, status: string(driver.StatusQueued)}
		index[f] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		phases:  make(map[driver.Stage]phaseState, len(stages)),
		want:    want,
		files:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(driver.Event(msg)), m.listen())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if label := stageLabel(m.current); label != "" && !m.done {
		header = fmt.Sprintf("%s (%s)", header, label)
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	for _, st := range stages {
		ps, ok := m.phases[st]
		if !ok {
			continue
		}
		line := fmt.Sprintf("  %s %-8s", styleStatus(string(ps.status)).Render(fmt.Sprintf("%8s", ps.status)), st)
		if ps.elapsed > 0 {
			line += fmt.Sprintf(" %s", ps.elapsed.Round(time.Microsecond))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(m.phases) > 0 {
		b.WriteString("\n")
	}

	nameWidth := max(m.width-16, 20)
	for _, f := range m.files {
		status := styleStatus(f.status).Render(fmt.Sprintf("%12s", f.status))
		fmt.Fprintf(&b, "  %s %s\n", status, truncate(f.path, nameWidth))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listen() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) apply(ev driver.Event) tea.Cmd {
	if ev.File == "" {
		m.phases[ev.Stage] = phaseState{status: ev.Status, elapsed: ev.Elapsed}
		if ev.Status == driver.StatusWorking {
			m.current = ev.Stage
		}
		return m.prog.SetPercent(m.percent())
	}
	idx, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	switch ev.Status {
	case driver.StatusWorking:
		m.files[idx].status = stageLabel(ev.Stage)
	default:
		m.files[idx].status = string(ev.Status)
	}
	return nil
}

// percent counts finished stages; the running stage counts as half.
func (m *progressModel) percent() float64 {
	if m.want == 0 {
		return 1
	}
	var sum float64
	for _, ps := range m.phases {
		switch ps.status {
		case driver.StatusDone, driver.StatusError:
			sum++
		case driver.StatusWorking:
			sum += 0.5
		}
	}
	return min(sum/float64(m.want), 1)
}

func stageLabel(stage driver.Stage) string {
	switch stage {
	case driver.StageParse:
		return "parsing"
	case driver.StageDecl:
		return "resolving"
	case driver.StageInfer:
		return "typing"
	case driver.StageContract:
		return "contracts"
	case driver.StageLower:
		return "lowering"
	default:
		return ""
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case string(driver.StatusDone):
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case string(driver.StatusError):
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case string(driver.StatusQueued):
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
