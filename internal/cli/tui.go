package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/hmaputil/pkg/pipeline"
)

const (
	barWidth     = 32
	minBarWidth  = 10
	tickInterval = 100 * time.Millisecond
)

// =============================================================================
// Messages
// =============================================================================

// progressMsg carries one pipeline tick.
type progressMsg struct {
	done, total int
}

// finishedMsg carries the outcome of the run.
type finishedMsg struct {
	result *pipeline.Result
	err    error
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// =============================================================================
// ProgressModel - Render progress display
// =============================================================================

// ProgressModel is the bubbletea model shown while a render runs.
type ProgressModel struct {
	Title    string
	Done     int
	Total    int
	Width    int
	Start    time.Time
	Now      time.Time
	Stopping bool
	Finished bool

	cancel context.CancelFunc
}

// NewProgressModel creates a progress model. cancel is called when the
// user asks to stop.
func NewProgressModel(title string, cancel context.CancelFunc) ProgressModel {
	now := time.Now()
	return ProgressModel{
		Title:  title,
		Width:  barWidth,
		Start:  now,
		Now:    now,
		cancel: cancel,
	}
}

func (m ProgressModel) Init() tea.Cmd {
	return tick()
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			// The run stops at the next step boundary and reports back.
			if !m.Stopping && m.cancel != nil {
				m.cancel()
			}
			m.Stopping = true
		}
	case progressMsg:
		m.Done, m.Total = msg.done, msg.total
	case finishedMsg:
		m.Finished = true
		return m, tea.Quit
	case tickMsg:
		m.Now = time.Time(msg)
		if !m.Finished {
			return m, tick()
		}
	case tea.WindowSizeMsg:
		m.Width = min(barWidth, max(minBarWidth, msg.Width-40))
	}
	return m, nil
}

func (m ProgressModel) View() string {
	if m.Finished {
		return ""
	}
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(renderBar(m.Done, m.Total, m.Width))

	pct := 0
	if m.Total > 0 {
		pct = m.Done * 100 / m.Total
	}
	elapsed := m.Now.Sub(m.Start).Round(tickInterval)
	b.WriteString(StyleDim.Render(fmt.Sprintf(" %3d%%  %d/%d steps · %s", pct, m.Done, m.Total, elapsed)))
	b.WriteString("\n")

	if m.Stopping {
		b.WriteString(StyleWarning.Render("stopping after the current step…"))
	} else {
		b.WriteString(StyleDim.Render("q to cancel"))
	}
	b.WriteString("\n")
	return b.String()
}

// =============================================================================
// Runner Glue
// =============================================================================

// runFunc executes a pipeline run reporting ticks to progress.
type runFunc func(ctx context.Context, progress pipeline.ProgressFunc) (*pipeline.Result, error)

// runWithProgress executes fn while a ProgressModel renders on out. The run
// always completes before this returns; a failing display does not stop it.
func (c *CLI) runWithProgress(ctx context.Context, out io.Writer, title string, fn runFunc, opts ...tea.ProgramOption) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts = append([]tea.ProgramOption{tea.WithOutput(out)}, opts...)
	p := tea.NewProgram(NewProgressModel(title, cancel), opts...)

	finished := make(chan finishedMsg, 1)
	go func() {
		res, err := fn(ctx, func(done, total int) {
			p.Send(progressMsg{done: done, total: total})
		})
		msg := finishedMsg{result: res, err: err}
		finished <- msg
		p.Send(msg)
	}()

	if _, err := p.Run(); err != nil {
		c.Logger.Warn("progress display failed", "error", err)
	}
	msg := <-finished
	return msg.result, msg.err
}
