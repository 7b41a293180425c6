// Package tasks holds the in-memory task collection.
package tasks

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/harrisonrobin/focusa/pkg/datetime"
	"github.com/harrisonrobin/focusa/pkg/model"
)

// Detacher is notified whenever a task leaves the active set so that any
// focus timer bound to it can be torn down.
type Detacher interface {
	Detach(taskID string) bool
}

// Store owns the task records in insertion order. It is not safe for
// concurrent use.
type Store struct {
	tasks []model.Task
	dt    *datetime.Reconciler
	timer Detacher
	log   zerolog.Logger
	newID func() string
}

// New returns an empty store. timer may be nil.
func New(dt *datetime.Reconciler, timer Detacher, log zerolog.Logger) *Store {
	return &Store{
		dt:    dt,
		timer: timer,
		log:   log,
		newID: newTaskID,
	}
}

// newTaskID returns a time-ordered UUID.
func newTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Add stores rec as a new active local task.
func (s *Store) Add(rec model.Record) model.Task {
	return s.insert(rec, model.OriginLocal)
}

// ReplaceExternal drops every external task and inserts recs as the new
// external batch.
func (s *Store) ReplaceExternal(recs []model.Record) []model.Task {
	removed := s.RemoveAllExternal()

	added := make([]model.Task, 0, len(recs))
	for _, rec := range recs {
		added = append(added, s.insert(rec, model.OriginExternal))
	}

	s.log.Info().Int("removed", removed).Int("added", len(added)).Msg("external tasks replaced")
	return added
}

// RemoveAllExternal drops every external task and returns how many were removed.
func (s *Store) RemoveAllExternal() int {
	kept := s.tasks[:0]
	removed := 0
	for _, t := range s.tasks {
		if t.Origin == model.OriginExternal {
			s.detach(t.ID)
			removed++
			continue
		}
		kept = append(kept, t)
	}
	clear(s.tasks[len(kept):])
	s.tasks = kept
	return removed
}

// ToggleStatus flips a task between active and completed. Unknown ids are
// ignored.
func (s *Store) ToggleStatus(id string) (model.Task, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, false
	}

	t := &s.tasks[i]
	if t.Status == model.StatusActive {
		t.Status = model.StatusCompleted
	} else {
		t.Status = model.StatusActive
	}
	s.detach(id)

	s.log.Debug().Str("task", id).Str("status", string(t.Status)).Msg("status toggled")
	return *t, true
}

// ActiveByPriority returns active tasks sorted High, Medium, Low. Equal
// priorities keep insertion order.
func (s *Store) ActiveByPriority() []model.Task {
	out := s.filter(model.StatusActive)
	slices.SortStableFunc(out, func(a, b model.Task) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
	return out
}

// Completed returns completed tasks in insertion order.
func (s *Store) Completed() []model.Task {
	return s.filter(model.StatusCompleted)
}

// All returns every task in insertion order.
func (s *Store) All() []model.Task {
	return slices.Clone(s.tasks)
}

// Get looks a task up by id.
func (s *Store) Get(id string) (model.Task, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, false
	}
	return s.tasks[i], true
}

// Len returns the number of stored tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// ApplyCalendarMove rewrites a task's date and time text from a calendar
// drop. Unknown ids are ignored.
func (s *Store) ApplyCalendarMove(id string, at time.Time, allDay bool) (model.Task, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, false
	}

	t := &s.tasks[i]
	t.DateText, t.TimeText = s.dt.FromTimestamp(at, allDay)

	s.log.Debug().Str("task", id).Str("date", t.DateText).Str("time", t.Time()).Msg("task moved")
	return *t, true
}

func (s *Store) insert(rec model.Record, origin model.Origin) model.Task {
	t := model.Task{
		ID:       s.newID(),
		Name:     rec.Name,
		DateText: rec.DateText,
		TimeText: rec.TimeText,
		Category: rec.Category,
		Priority: rec.Priority,
		Status:   model.StatusActive,
		Origin:   origin,
	}
	s.tasks = append(s.tasks, t)
	return t
}

func (s *Store) filter(status model.Status) []model.Task {
	var out []model.Task
	for _, t := range s.tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t model.Task) bool { return t.ID == id })
}

func (s *Store) detach(id string) {
	if s.timer != nil && s.timer.Detach(id) {
		s.log.Info().Str("task", id).Msg("focus timer detached")
	}
}
