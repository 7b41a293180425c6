// Package overdue reports active tasks whose scheduled time has passed.
package overdue

import (
	"time"

	"github.com/harrisonrobin/focusa/pkg/tasks"
)

type Entry struct {
	TaskID string
	Title  string
	Due    time.Time
	AllDay bool
}

// IsOverdue reports whether ev is still open and past due at now. All-day
// tasks only become overdue once their day has ended.
func IsOverdue(ev tasks.CalendarEvent, now time.Time) bool {
	if ev.Completed {
		return false
	}
	if ev.AllDay {
		return !now.Before(ev.Start.AddDate(0, 0, 1))
	}
	return ev.Start.Before(now)
}

// List returns every overdue entry among events, in the order given.
func List(events []tasks.CalendarEvent, now time.Time) []Entry {
	var out []Entry
	for _, ev := range events {
		if IsOverdue(ev, now) {
			out = append(out, entryFor(ev))
		}
	}
	return out
}

// Table remembers which tasks have already been reported so that Sweep only
// returns tasks that became overdue since the last call.
type Table struct {
	Entries map[string]Entry
}

func NewTable() *Table {
	return &Table{Entries: make(map[string]Entry)}
}

// Sweep returns tasks newly overdue at now. Tasks that were moved back into
// the future, completed, or removed are forgotten so they can be reported
// again later.
func (t *Table) Sweep(events []tasks.CalendarEvent, now time.Time) []Entry {
	current := make(map[string]Entry)
	var fresh []Entry

	for _, ev := range events {
		if !IsOverdue(ev, now) {
			continue
		}
		e := entryFor(ev)
		current[ev.TaskID] = e

		old, seen := t.Entries[ev.TaskID]
		if !seen || !old.Due.Equal(e.Due) {
			fresh = append(fresh, e)
		}
	}

	t.Entries = current
	return fresh
}

// Remove forgets a task.
func (t *Table) Remove(taskID string) {
	delete(t.Entries, taskID)
}

// Has reports whether a task is currently known to be overdue.
func (t *Table) Has(taskID string) bool {
	_, ok := t.Entries[taskID]
	return ok
}

func entryFor(ev tasks.CalendarEvent) Entry {
	return Entry{TaskID: ev.TaskID, Title: ev.Title, Due: ev.Start, AllDay: ev.AllDay}
}
