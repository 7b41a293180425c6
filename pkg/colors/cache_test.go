package colors

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/harrisonrobin/focusa/pkg/model"
)

func TestForCategory(t *testing.T) {
	seen := map[lipgloss.Color]model.Category{}
	for _, c := range model.Categories {
		col := ForCategory(c)
		assert.NotEqual(t, Muted, col, "category %s has no colour", c)
		if prev, dup := seen[col]; dup {
			t.Errorf("categories %s and %s share colour %s", prev, c, col)
		}
		seen[col] = c
	}

	assert.Equal(t, Muted, ForCategory("Unknown"))
}

func TestTask(t *testing.T) {
	active := model.Task{Status: model.StatusActive, Category: model.CategoryWork}
	done := model.Task{Status: model.StatusCompleted, Category: model.CategoryWork}

	assert.Equal(t, lipgloss.Color("33"), Task(active).GetForeground())
	assert.Equal(t, Muted, Task(done).GetForeground())
	assert.True(t, Task(done).GetStrikethrough())
}
