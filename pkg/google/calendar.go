package google

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/focusa/pkg/datetime"
	"github.com/harrisonrobin/focusa/pkg/model"
)

// DefaultHorizon bounds how far ahead Fetch looks.
const DefaultHorizon = 30 * 24 * time.Hour

// CalendarClient reads events from one Google calendar.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	dt         *datetime.Reconciler
	log        zerolog.Logger
	now        func() time.Time
	horizon    time.Duration
}

// NewCalendarClient wraps an existing calendar service.
func NewCalendarClient(srv *calendar.Service, calendarID string, dt *datetime.Reconciler, log zerolog.Logger) *CalendarClient {
	return &CalendarClient{
		srv:        srv,
		calendarID: calendarID,
		dt:         dt,
		log:        log,
		now:        time.Now,
		horizon:    DefaultHorizon,
	}
}

// ListEvents fetches single (expanded) events starting in [timeMin, timeMax).
func (c *CalendarClient) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	var items []*calendar.Event
	err := c.srv.Events.List(c.calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Pages(ctx, func(page *calendar.Events) error {
			items = append(items, page.Items...)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events from calendar: %w", err)
	}
	return items, nil
}

// Fetch returns today's and upcoming events as task records.
func (c *CalendarClient) Fetch(ctx context.Context) ([]model.Record, error) {
	now := c.now().In(c.dt.Location())
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	events, err := c.ListEvents(ctx, start, start.Add(c.horizon))
	if err != nil {
		return nil, err
	}

	recs := make([]model.Record, 0, len(events))
	for _, ev := range events {
		rec, ok := EventToRecord(ev, c.dt)
		if !ok {
			c.log.Debug().Str("event", ev.Id).Msg("skipping calendar event")
			continue
		}
		recs = append(recs, rec)
	}

	c.log.Info().Int("events", len(events)).Int("records", len(recs)).Msg("calendar fetched")
	return recs, nil
}
