// Package tui is the terminal front end: the list and calendar views, the
// capture box, and the once-per-second tick that drives the focus engine.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/harrisonrobin/focusa/pkg/focus"
	"github.com/harrisonrobin/focusa/pkg/model"
	"github.com/harrisonrobin/focusa/pkg/overdue"
	"github.com/harrisonrobin/focusa/pkg/planner"
)

const tickInterval = time.Second

type tickMsg time.Time

type parsedMsg struct {
	rec model.Record
	err error
}

type syncedMsg struct {
	recs []model.Record
	err  error
}

// Model is the bubbletea model. All planner mutations happen inside Update,
// so the planner only ever sees one goroutine.
type Model struct {
	ctx     context.Context
	planner *planner.Planner
	overdue *overdue.Table
	log     zerolog.Logger
	now     func() time.Time

	input     textinput.Model
	capturing bool
	busy      string

	cursor  int
	status  string
	isError bool
}

func New(ctx context.Context, p *planner.Planner, log zerolog.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "e.g. dentist next friday at 3pm, high priority"
	ti.CharLimit = 280
	ti.Width = 60

	return Model{
		ctx:     ctx,
		planner: p,
		overdue: overdue.NewTable(),
		log:     log,
		now:     time.Now,
		input:   ti,
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, p *planner.Planner, log zerolog.Logger) error {
	_, err := tea.NewProgram(New(ctx, p, log), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.onTick(time.Time(msg))
		return m, tick()

	case parsedMsg:
		m.busy = ""
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.planner.Offer(msg.rec)
		m.setStatus("Add this task? y to accept, n to discard")
		return m, nil

	case syncedMsg:
		m.busy = ""
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		added := m.planner.ApplyExternal(msg.recs)
		m.clampCursor()
		m.setStatus(fmt.Sprintf("Synced %d calendar events", len(added)))
		return m, nil

	case tea.KeyMsg:
		if m.capturing {
			return m.updateCapture(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m *Model) onTick(now time.Time) {
	before, running := m.planner.Engine.Snapshot()
	if running && !before.Paused {
		after, _ := m.planner.Engine.Tick()
		if after.Mode != before.Mode {
			m.setStatus(transitionMessage(after))
		}
	}

	for _, e := range m.overdue.Sweep(m.planner.Store.CalendarEvents(), now) {
		m.log.Debug().Str("task", e.TaskID).Msg("task overdue")
	}
}

func (m Model) updateCapture(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.capturing = false
		m.input.Blur()
		m.input.SetValue("")
		return m, nil
	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		m.capturing = false
		m.input.Blur()
		m.input.SetValue("")
		if text == "" {
			return m, nil
		}
		m.busy = "Parsing…"
		return m, m.parseCmd(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.rows()

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "a":
		m.capturing = true
		return m, m.input.Focus()

	case "y":
		if task, err := m.planner.Accept(); err == nil {
			m.setStatus("Added " + task.Name)
		}
	case "n":
		if _, ok := m.planner.Candidate(); ok {
			m.planner.Reject()
			m.setStatus("Discarded")
		}

	case "j", "down":
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}

	case "x", " ":
		if task, ok := m.selected(rows); ok {
			if t, ok := m.planner.ToggleStatus(task.ID); ok {
				m.setStatus(fmt.Sprintf("%s marked %s", t.Name, t.Status))
			}
			m.clampCursor()
		}

	case "f":
		if task, ok := m.selected(rows); ok {
			if _, err := m.planner.StartFocus(task.ID); err != nil {
				m.setError(err)
			} else {
				m.setStatus("Focusing on " + task.Name)
			}
		}
	case "p":
		if st, ok := m.planner.Engine.PauseResume(); ok {
			if st.Paused {
				m.setStatus("Paused")
			} else {
				m.setStatus("Resumed")
			}
		}
	case "s":
		if st, ok := m.planner.Engine.Skip(); ok {
			m.setStatus(transitionMessage(st))
		}
	case "r":
		m.planner.Engine.Reset()
		m.setStatus("Timer reset")

	case ">", "<":
		days := 1
		if msg.String() == "<" {
			days = -1
		}
		if task, ok := m.selected(rows); ok {
			if t, ok := m.planner.Store.ShiftDays(task.ID, days); ok {
				m.setStatus(fmt.Sprintf("Moved %s to %s", t.Name, t.DateText))
			} else {
				m.setError(fmt.Errorf("cannot move %q: unrecognised date %q", task.Name, task.DateText))
			}
		}

	case "S":
		if m.busy != "" {
			return m, nil
		}
		m.busy = "Syncing…"
		return m, m.syncCmd()
	case "D":
		n := m.planner.Disconnect()
		m.clampCursor()
		m.setStatus(fmt.Sprintf("Removed %d calendar tasks", n))
	}

	return m, nil
}

func (m Model) parseCmd(text string) tea.Cmd {
	p, ctx := m.planner, m.ctx
	return func() tea.Msg {
		rec, err := p.ParseText(ctx, text)
		return parsedMsg{rec: rec, err: err}
	}
}

func (m Model) syncCmd() tea.Cmd {
	p, ctx := m.planner, m.ctx
	return func() tea.Msg {
		recs, err := p.FetchExternal(ctx)
		return syncedMsg{recs: recs, err: err}
	}
}

// rows is the list surface: active tasks by priority, then completed ones.
func (m Model) rows() []model.Task {
	return append(m.planner.Store.ActiveByPriority(), m.planner.Store.Completed()...)
}

func (m Model) selected(rows []model.Task) (model.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(rows) {
		return model.Task{}, false
	}
	return rows[m.cursor], true
}

func (m *Model) clampCursor() {
	n := m.planner.Store.Len()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) setStatus(s string) {
	m.status, m.isError = s, false
}

func (m *Model) setError(err error) {
	m.log.Warn().Err(err).Msg("action failed")
	m.status, m.isError = userMessage(err), true
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, focus.ErrConflict):
		return "A timer is already running for another task. Reset it first."
	case errors.Is(err, planner.ErrTaskNotActive):
		return "Completed tasks cannot be focused."
	default:
		return err.Error()
	}
}

func transitionMessage(st focus.State) string {
	switch st.Mode {
	case focus.ModeLongBreak:
		return fmt.Sprintf("Cycle %d done. Take a long break.", st.CycleCount)
	case focus.ModeShortBreak:
		return fmt.Sprintf("Cycle %d done. Short break.", st.CycleCount)
	default:
		return "Back to work."
	}
}
