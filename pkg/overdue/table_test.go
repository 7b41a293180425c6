package overdue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/harrisonrobin/focusa/pkg/tasks"
)

var now = time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

func TestIsOverdue(t *testing.T) {
	tests := []struct {
		name string
		ev   tasks.CalendarEvent
		want bool
	}{
		{"timed past", tasks.CalendarEvent{Start: now.Add(-time.Minute)}, true},
		{"timed future", tasks.CalendarEvent{Start: now.Add(time.Minute)}, false},
		{"completed", tasks.CalendarEvent{Start: now.Add(-time.Hour), Completed: true}, false},
		{"all day today", tasks.CalendarEvent{Start: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), AllDay: true}, false},
		{"all day yesterday", tasks.CalendarEvent{Start: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), AllDay: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOverdue(tt.ev, now))
		})
	}
}

func TestList(t *testing.T) {
	events := []tasks.CalendarEvent{
		{TaskID: "a", Title: "A", Start: now.Add(-time.Hour)},
		{TaskID: "b", Title: "B", Start: now.Add(time.Hour)},
		{TaskID: "c", Title: "C", Start: now.Add(-2 * time.Hour), Completed: true},
	}

	got := List(events, now)
	assert.Equal(t, []Entry{{TaskID: "a", Title: "A", Due: now.Add(-time.Hour)}}, got)
}

func TestTable_Sweep(t *testing.T) {
	table := NewTable()
	events := []tasks.CalendarEvent{
		{TaskID: "a", Title: "A", Start: now.Add(-time.Hour)},
		{TaskID: "b", Title: "B", Start: now.Add(30 * time.Minute)},
	}

	fresh := table.Sweep(events, now)
	assert.Len(t, fresh, 1)
	assert.True(t, table.Has("a"))

	assert.Empty(t, table.Sweep(events, now), "already reported")

	fresh = table.Sweep(events, now.Add(time.Hour))
	assert.Len(t, fresh, 1)
	assert.Equal(t, "b", fresh[0].TaskID)

	// a is moved to a different past time; report again
	events[0].Start = now.Add(-3 * time.Hour)
	fresh = table.Sweep(events, now.Add(time.Hour))
	assert.Len(t, fresh, 1)
	assert.Equal(t, "a", fresh[0].TaskID)

	// completing drops it from the table
	events[0].Completed = true
	table.Sweep(events, now.Add(time.Hour))
	assert.False(t, table.Has("a"))

	table.Remove("b")
	assert.False(t, table.Has("b"))
}
