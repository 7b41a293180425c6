package tasks

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/focusa/pkg/datetime"
	"github.com/harrisonrobin/focusa/pkg/focus"
	"github.com/harrisonrobin/focusa/pkg/model"
)

func newTestStore(t *testing.T, timer Detacher) *Store {
	t.Helper()
	dt := datetime.New(time.UTC, zerolog.Nop())
	return New(dt, timer, zerolog.Nop())
}

func rec(name string, p model.Priority) model.Record {
	return model.Record{
		Name:     name,
		DateText: "March 5, 2024",
		TimeText: model.StringPtr("9:00 AM"),
		Category: model.CategoryWork,
		Priority: p,
	}
}

func names(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Name)
	}
	return out
}

func TestStore_Add(t *testing.T) {
	s := newTestStore(t, nil)

	a := s.Add(rec("a", model.PriorityLow))
	b := s.Add(rec("b", model.PriorityLow))

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, model.StatusActive, a.Status)
	assert.Equal(t, model.OriginLocal, a.Origin)
	assert.Equal(t, 2, s.Len())

	got, ok := s.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, a, got)
}

func TestStore_IDsNeverReused(t *testing.T) {
	s := newTestStore(t, nil)
	seen := map[string]bool{}

	for i := 0; i < 5; i++ {
		s.Add(rec("local", model.PriorityMedium))
		s.ReplaceExternal([]model.Record{rec("ext-a", model.PriorityHigh), rec("ext-b", model.PriorityLow)})
		for _, task := range s.All() {
			seen[task.ID] = true
		}
	}

	// 5 local + 5 batches of 2 external, all distinct
	assert.Len(t, seen, 15)
}

func TestStore_ActiveByPriority(t *testing.T) {
	s := newTestStore(t, nil)

	s.Add(rec("low-1", model.PriorityLow))
	s.Add(rec("high-1", model.PriorityHigh))
	s.Add(rec("med-1", model.PriorityMedium))
	s.Add(rec("low-2", model.PriorityLow))
	s.Add(rec("high-2", model.PriorityHigh))

	assert.Equal(t, []string{"high-1", "high-2", "med-1", "low-1", "low-2"}, names(s.ActiveByPriority()))
}

func TestStore_ActiveByPriorityStableAcrossToggles(t *testing.T) {
	s := newTestStore(t, nil)

	var ids []string
	for i := 0; i < 6; i++ {
		ids = append(ids, s.Add(rec(fmt.Sprintf("m%d", i), model.PriorityMedium)).ID)
	}
	s.Add(rec("h0", model.PriorityHigh))

	s.ToggleStatus(ids[1])
	s.ToggleStatus(ids[4])
	s.Add(rec("m6", model.PriorityMedium))
	s.ToggleStatus(ids[1])
	s.ToggleStatus(ids[0])
	s.ToggleStatus(ids[0])

	assert.Equal(t, []string{"h0", "m0", "m1", "m2", "m3", "m5", "m6"}, names(s.ActiveByPriority()))
	assert.Equal(t, []string{"m4"}, names(s.Completed()))
}

func TestStore_Completed(t *testing.T) {
	s := newTestStore(t, nil)

	a := s.Add(rec("a", model.PriorityLow))
	b := s.Add(rec("b", model.PriorityHigh))
	c := s.Add(rec("c", model.PriorityMedium))

	s.ToggleStatus(c.ID)
	s.ToggleStatus(a.ID)
	s.ToggleStatus(b.ID)

	assert.Equal(t, []string{"a", "b", "c"}, names(s.Completed()), "insertion order, no priority sort")
	assert.Empty(t, s.ActiveByPriority())
}

func TestStore_ToggleStatus(t *testing.T) {
	s := newTestStore(t, nil)
	a := s.Add(rec("a", model.PriorityLow))

	got, ok := s.ToggleStatus(a.ID)
	require.True(t, ok)
	assert.Equal(t, model.StatusCompleted, got.Status)

	got, ok = s.ToggleStatus(a.ID)
	require.True(t, ok)
	assert.Equal(t, model.StatusActive, got.Status)
	assert.Equal(t, a.ID, got.ID, "revival keeps the same task")

	before := s.All()
	_, ok = s.ToggleStatus("missing")
	assert.False(t, ok)
	assert.Equal(t, before, s.All())
}

func TestStore_ToggleStatusResetsAttachedTimer(t *testing.T) {
	engine := focus.NewEngine(focus.DefaultConfig(), zerolog.Nop())
	s := newTestStore(t, engine)

	a := s.Add(rec("a", model.PriorityLow))
	b := s.Add(rec("b", model.PriorityLow))

	_, err := engine.Start(a.ID)
	require.NoError(t, err)

	s.ToggleStatus(b.ID)
	_, running := engine.Snapshot()
	assert.True(t, running, "toggling another task leaves the timer alone")

	s.ToggleStatus(a.ID)
	_, running = engine.Snapshot()
	assert.False(t, running)
}

func TestStore_ReplaceExternal(t *testing.T) {
	s := newTestStore(t, nil)

	local := s.Add(rec("local", model.PriorityMedium))
	s.ReplaceExternal([]model.Record{rec("A", model.PriorityHigh), rec("B", model.PriorityLow)})
	added := s.ReplaceExternal([]model.Record{rec("C", model.PriorityLow), rec("D", model.PriorityHigh)})

	require.Len(t, added, 2)
	var external []string
	for _, task := range s.All() {
		if task.Origin == model.OriginExternal {
			external = append(external, task.Name)
			assert.Equal(t, model.StatusActive, task.Status)
		}
	}
	assert.Equal(t, []string{"C", "D"}, external)

	got, ok := s.Get(local.ID)
	require.True(t, ok)
	assert.Equal(t, local, got, "local tasks untouched")
}

func TestStore_RemoveAllExternal(t *testing.T) {
	engine := focus.NewEngine(focus.DefaultConfig(), zerolog.Nop())
	s := newTestStore(t, engine)

	s.Add(rec("local", model.PriorityMedium))
	ext := s.ReplaceExternal([]model.Record{rec("A", model.PriorityHigh)})
	_, err := engine.Start(ext[0].ID)
	require.NoError(t, err)

	assert.Equal(t, 1, s.RemoveAllExternal())
	assert.Equal(t, []string{"local"}, names(s.All()))

	_, running := engine.Snapshot()
	assert.False(t, running, "removing the attached task tears down the timer")

	assert.Equal(t, 0, s.RemoveAllExternal())
}

func TestStore_ApplyCalendarMove(t *testing.T) {
	s := newTestStore(t, nil)
	a := s.Add(rec("a", model.PriorityLow))

	got, ok := s.ApplyCalendarMove(a.ID, time.Date(2024, 4, 1, 14, 30, 15, 0, time.UTC), false)
	require.True(t, ok)
	assert.Equal(t, "April 1, 2024", got.DateText)
	assert.Equal(t, "2:30 PM", got.Time())

	got, ok = s.ApplyCalendarMove(a.ID, time.Date(2024, 4, 2, 14, 30, 0, 0, time.UTC), true)
	require.True(t, ok)
	assert.Equal(t, "April 2, 2024", got.DateText)
	assert.True(t, got.AllDay())

	_, ok = s.ApplyCalendarMove("missing", time.Now(), false)
	assert.False(t, ok)
}

func TestStore_UnparseableDateStaysListed(t *testing.T) {
	s := newTestStore(t, nil)

	bad := rec("bad date", model.PriorityHigh)
	bad.DateText = "February 30, 2024"
	b := s.Add(bad)
	s.Add(rec("good", model.PriorityLow))

	events := s.CalendarEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "good", events[0].Title)

	assert.Equal(t, []string{"bad date", "good"}, names(s.ActiveByPriority()))

	s.ToggleStatus(b.ID)
	assert.Equal(t, []string{"bad date"}, names(s.Completed()))

	_, ok := s.ShiftDays(b.ID, 1)
	assert.False(t, ok)
}

func TestStore_CalendarEvents(t *testing.T) {
	s := newTestStore(t, nil)

	timed := s.Add(rec("timed", model.PriorityLow))
	allDay := rec("all day", model.PriorityLow)
	allDay.TimeText = nil
	s.Add(allDay)
	s.ToggleStatus(timed.ID)

	events := s.CalendarEvents()
	require.Len(t, events, 2)

	assert.True(t, time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC).Equal(events[0].Start))
	assert.False(t, events[0].AllDay)
	assert.True(t, events[0].Completed)

	assert.True(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC).Equal(events[1].Start))
	assert.True(t, events[1].AllDay)
}

func TestStore_ShiftDays(t *testing.T) {
	s := newTestStore(t, nil)
	a := s.Add(rec("a", model.PriorityLow))

	got, ok := s.ShiftDays(a.ID, 1)
	require.True(t, ok)
	assert.Equal(t, "March 6, 2024", got.DateText)
	assert.Equal(t, "9:00 AM", got.Time())

	got, ok = s.ShiftDays(a.ID, -30)
	require.True(t, ok)
	assert.Equal(t, "February 5, 2024", got.DateText)
}
