package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/harrisonrobin/focusa/pkg/colors"
	"github.com/harrisonrobin/focusa/pkg/focus"
	"github.com/harrisonrobin/focusa/pkg/model"
)

const help = "a add • y/n accept/discard • x done • f focus • p pause • s skip • r reset • </> move day • S sync • D disconnect • q quit"

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("focusa"))
	b.WriteString("\n\n")
	b.WriteString(m.focusView())
	b.WriteString("\n")

	if c := m.candidateView(); c != "" {
		b.WriteString(c)
		b.WriteString("\n")
	}

	if m.capturing {
		b.WriteString(panelStyle.Render("New task\n" + m.input.View()))
		b.WriteString("\n")
	}

	b.WriteString(m.listView())
	b.WriteString("\n")

	switch {
	case m.busy != "":
		b.WriteString(mutedStyle.Render(m.busy))
	case m.isError:
		b.WriteString(errorStyle.Render(m.status))
	default:
		b.WriteString(m.status)
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(help))
	return b.String()
}

func (m Model) focusView() string {
	task, st, ok := m.planner.FocusTask()
	if !ok {
		return panelStyle.Render(mutedStyle.Render("No focus timer. Select a task and press f."))
	}

	style := workStyle
	label := "Focus"
	switch st.Mode {
	case focus.ModeShortBreak:
		style, label = breakStyle, "Short break"
	case focus.ModeLongBreak:
		style, label = breakStyle, "Long break"
	}

	clock := fmt.Sprintf("%02d:%02d", st.TimeLeft/60, st.TimeLeft%60)
	if st.Paused {
		clock += " (paused)"
	}

	lines := []string{
		style.Render(label+"  "+clock),
		task.Name,
		mutedStyle.Render(fmt.Sprintf("cycles completed: %d / long break every %d",
			st.CycleCount, m.planner.Engine.Config().CyclesPerLongBreak)),
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) candidateView() string {
	rec, ok := m.planner.Candidate()
	if !ok {
		return ""
	}

	when := rec.DateText
	if !rec.AllDay() {
		when += " at " + *rec.TimeText
	}
	lines := []string{
		selectedStyle.Render(rec.Name),
		fmt.Sprintf("%s • %s • %s priority", when, rec.Category, rec.Priority),
		mutedStyle.Render("y accept • n discard"),
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) listView() string {
	active := m.planner.Store.ActiveByPriority()
	completed := m.planner.Store.Completed()

	var b strings.Builder
	b.WriteString(sectionStyle.Render(fmt.Sprintf("Active (%d)", len(active))))
	b.WriteString("\n")
	for i, t := range active {
		b.WriteString(m.row(t, i == m.cursor))
		b.WriteString("\n")
	}

	if len(completed) > 0 {
		b.WriteString(sectionStyle.Render(fmt.Sprintf("Completed (%d)", len(completed))))
		b.WriteString("\n")
		for i, t := range completed {
			b.WriteString(m.row(t, len(active)+i == m.cursor))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) row(t model.Task, selected bool) string {
	cursor := "  "
	if selected {
		cursor = "> "
	}

	badge := lipgloss.NewStyle().Foreground(colors.ForPriority(t.Priority)).Render(fmt.Sprintf("%-6s", t.Priority))

	when := t.DateText
	if !t.AllDay() {
		when += " " + t.Time()
	} else {
		when += " (all day)"
	}

	name := colors.Task(t).Render(t.Name)
	if selected {
		name = selectedStyle.Inherit(colors.Task(t)).Render(t.Name)
	}

	var marks []string
	if t.Origin == model.OriginExternal {
		marks = append(marks, mutedStyle.Render("cal"))
	}
	if m.overdue.Has(t.ID) {
		marks = append(marks, overdueStyle.Render("overdue"))
	}
	if id, ok := m.planner.Engine.AttachedTo(); ok && id == t.ID {
		marks = append(marks, workStyle.Render("●"))
	}

	line := fmt.Sprintf("%s%s %s  %s", cursor, badge, name, mutedStyle.Render(when))
	if len(marks) > 0 {
		line += "  " + strings.Join(marks, " ")
	}
	return line
}
