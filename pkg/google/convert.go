package google

import (
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/focusa/pkg/datetime"
	"github.com/harrisonrobin/focusa/pkg/model"
)

const (
	untitled        = "(no title)"
	dateOnly        = "2006-01-02"
	statusCancelled = "cancelled"
)

// EventToRecord converts a calendar event into an external task record.
// All-day events (Start.Date) carry no time text. Cancelled events and
// events without a usable start are skipped.
func EventToRecord(ev *calendar.Event, dt *datetime.Reconciler) (model.Record, bool) {
	if ev == nil || ev.Status == statusCancelled || ev.Start == nil {
		return model.Record{}, false
	}

	name := strings.TrimSpace(ev.Summary)
	if name == "" {
		name = untitled
	}

	rec := model.Record{
		Name:     name,
		Category: model.CategoryOther,
		Priority: model.PriorityMedium,
	}

	switch {
	case ev.Start.DateTime != "":
		at, err := time.Parse(time.RFC3339, ev.Start.DateTime)
		if err != nil {
			return model.Record{}, false
		}
		rec.DateText, rec.TimeText = dt.FromTimestamp(at, false)
	case ev.Start.Date != "":
		day, err := time.ParseInLocation(dateOnly, ev.Start.Date, dt.Location())
		if err != nil {
			return model.Record{}, false
		}
		rec.DateText, rec.TimeText = dt.FromTimestamp(day, true)
	default:
		return model.Record{}, false
	}

	return rec, true
}
