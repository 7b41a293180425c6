package tasks

import (
	"time"

	"github.com/harrisonrobin/focusa/pkg/model"
)

// CalendarEvent is the calendar-surface view of one task.
type CalendarEvent struct {
	TaskID    string
	Title     string
	Start     time.Time
	AllDay    bool
	Completed bool
	Category  model.Category
	Origin    model.Origin
}

// CalendarEvents converts every task whose text parses into a calendar
// entry. Tasks with unparseable dates are skipped here but stay in the
// list views.
func (s *Store) CalendarEvents() []CalendarEvent {
	out := make([]CalendarEvent, 0, len(s.tasks))
	for _, t := range s.tasks {
		at, ok := s.dt.ToTimestamp(t.DateText, t.TimeText)
		if !ok {
			continue
		}
		out = append(out, CalendarEvent{
			TaskID:    t.ID,
			Title:     t.Name,
			Start:     at,
			AllDay:    t.AllDay(),
			Completed: t.Status == model.StatusCompleted,
			Category:  t.Category,
			Origin:    t.Origin,
		})
	}
	return out
}

// ShiftDays moves a task by days on the calendar, keeping its clock time
// and all-day state. It returns false when the task is unknown or its text
// does not parse.
func (s *Store) ShiftDays(id string, days int) (model.Task, bool) {
	t, ok := s.Get(id)
	if !ok {
		return model.Task{}, false
	}
	at, ok := s.dt.ToTimestamp(t.DateText, t.TimeText)
	if !ok {
		return model.Task{}, false
	}
	return s.ApplyCalendarMove(id, at.AddDate(0, 0, days), t.AllDay())
}
