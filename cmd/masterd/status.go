package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/streamforge/jetmaster/internal/master"
)

// statusStyles mirrors the teacher's tui.Styles: a handful of named
// lipgloss styles the view composes from, rather than inlining styling at
// every render call.
type statusStyles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	good    lipgloss.Style
	bad     lipgloss.Style
	pending lipgloss.Style
	footer  lipgloss.Style
}

func defaultStatusStyles() statusStyles {
	return statusStyles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		value:   lipgloss.NewStyle().Bold(true),
		good:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		bad:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		pending: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		footer:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// statusModel polls a single master.Job until it reaches a terminal
// status, rendering its status line and last collected metrics. It is a
// read-only observer: all job mutation happens on the goroutine that
// called TryStartJob.
type statusModel struct {
	styles statusStyles
	job    *master.Job
	status master.JobStatus
	done   bool
}

func newStatusModel(job *master.Job) statusModel {
	return statusModel{styles: defaultStatusStyles(), job: job, status: job.Status()}
}

func (m statusModel) Init() tea.Cmd {
	return tickCmd()
}

func (m statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tickMsg:
		m.status = m.job.Status()
		if m.status.IsTerminal() {
			m.done = true
			return m, tea.Quit
		}
		return m, tickCmd()
	}
	return m, nil
}

func (m statusModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("masterd — job status") + "\n\n")
	b.WriteString(m.styles.label.Render("job: ") + m.styles.value.Render(m.job.JobID()) + "\n")
	b.WriteString(m.styles.label.Render("status: ") + m.renderStatus() + "\n\n")

	jm := m.job.JobMetrics()
	if len(jm.Values) == 0 {
		b.WriteString(m.styles.footer.Render("no metrics collected yet") + "\n")
	} else {
		for _, v := range jm.Values {
			b.WriteString(fmt.Sprintf("  %s = %v\n", m.styles.label.Render(v.Name), v.Value))
		}
	}

	b.WriteString("\n" + m.styles.footer.Render("press q to quit"))
	return b.String()
}

func (m statusModel) renderStatus() string {
	switch m.status {
	case master.StatusCompleted:
		return m.styles.good.Render(string(m.status))
	case master.StatusFailed:
		return m.styles.bad.Render(string(m.status))
	case master.StatusRunning:
		return m.styles.good.Render(string(m.status))
	default:
		return m.styles.pending.Render(string(m.status))
	}
}
