// Package colors maps task categories to display colours.
package colors

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/harrisonrobin/focusa/pkg/model"
)

// Muted is used for completed tasks and unknown categories.
const Muted = lipgloss.Color("245")

var palette = map[model.Category]lipgloss.Color{
	model.CategoryWork:     lipgloss.Color("33"),  // blue
	model.CategoryPersonal: lipgloss.Color("170"), // magenta
	model.CategoryStudy:    lipgloss.Color("214"), // orange
	model.CategoryHealth:   lipgloss.Color("42"),  // green
	model.CategoryErrands:  lipgloss.Color("178"), // yellow
	model.CategoryOther:    lipgloss.Color("109"), // grey-cyan
}

// ForCategory returns the colour of a category.
func ForCategory(c model.Category) lipgloss.Color {
	if col, ok := palette[c]; ok {
		return col
	}
	return Muted
}

// ForPriority returns the colour used for the priority badge.
func ForPriority(p model.Priority) lipgloss.Color {
	switch p {
	case model.PriorityHigh:
		return lipgloss.Color("196")
	case model.PriorityLow:
		return lipgloss.Color("244")
	default:
		return lipgloss.Color("220")
	}
}

// Task returns the style for a task row.
func Task(t model.Task) lipgloss.Style {
	if !t.Active() {
		return lipgloss.NewStyle().Foreground(Muted).Strikethrough(true)
	}
	return lipgloss.NewStyle().Foreground(ForCategory(t.Category))
}
