// Package datetime converts between a task's textual date/time pair and a
// single point in time for the calendar surface.
package datetime

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DateLayout is the canonical textual date, e.g. "March 5, 2024".
	DateLayout = "January 2, 2006"
	// TimeLayout is the canonical textual time, e.g. "9:05 AM".
	TimeLayout = "3:04 PM"
)

// dateLayouts are tried in order when reading date text. The canonical
// layout comes first so round-trips never depend on the fallbacks.
var dateLayouts = []string{
	DateLayout,
	"Jan 2, 2006",
	"Monday, January 2, 2006",
	"Mon, Jan 2, 2006",
	"2 January 2006",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

// timeLayouts are matched against upper-cased time text.
var timeLayouts = []string{
	TimeLayout,
	"3:04PM",
	"3 PM",
	"3PM",
	"15:04",
	"15:04:05",
}

// Reconciler converts in a single location. The zero value is not usable;
// use New.
type Reconciler struct {
	loc *time.Location
	log zerolog.Logger
}

// New returns a Reconciler for loc. A nil loc means time.Local.
func New(loc *time.Location, log zerolog.Logger) *Reconciler {
	if loc == nil {
		loc = time.Local
	}
	return &Reconciler{loc: loc, log: log}
}

// Location returns the location used for parsing and formatting.
func (r *Reconciler) Location() *time.Location {
	return r.loc
}

// ToTimestamp combines dateText and timeText into one point in time. A nil
// timeText yields midnight of that day; callers must carry the all-day flag
// themselves. ok is false when either part fails to parse.
func (r *Reconciler) ToTimestamp(dateText string, timeText *string) (t time.Time, ok bool) {
	day, ok := r.parseDate(dateText)
	if !ok {
		r.log.Warn().Str("date", dateText).Msg("unparseable date text")
		return time.Time{}, false
	}

	if timeText == nil {
		return day, true
	}

	clock, ok := parseClock(*timeText)
	if !ok {
		r.log.Warn().Str("date", dateText).Str("time", *timeText).Msg("unparseable time text")
		return time.Time{}, false
	}

	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, r.loc), true
}

// FromTimestamp formats t as ("Month Day, Year", "H:MM AM/PM"). When allDay
// is set the time is nil regardless of t's clock.
func (r *Reconciler) FromTimestamp(t time.Time, allDay bool) (dateText string, timeText *string) {
	local := t.In(r.loc)
	dateText = local.Format(DateLayout)
	if allDay {
		return dateText, nil
	}
	s := local.Format(TimeLayout)
	return dateText, &s
}

func (r *Reconciler) parseDate(s string) (time.Time, bool) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, r.loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseClock(s string) (time.Time, bool) {
	s = strings.ToUpper(strings.Join(strings.Fields(s), " "))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
