package google

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/harrisonrobin/focusa/pkg/auth"
	"github.com/harrisonrobin/focusa/pkg/datetime"
	"github.com/harrisonrobin/focusa/pkg/model"
)

// NewClient authorizes with the cached token and resolves calendarName to
// its id.
func NewClient(ctx context.Context, calendarName string, dt *datetime.Reconciler, log zerolog.Logger) (*CalendarClient, error) {
	hc, err := auth.Client(ctx)
	if err != nil {
		return nil, err
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(hc))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Calendar client: %w", err)
	}

	calendarID, err := FindCalendarID(ctx, srv, calendarName)
	if err != nil {
		return nil, err
	}
	return NewCalendarClient(srv, calendarID, dt, log), nil
}

// FindCalendarID looks up a calendar by its display name.
func FindCalendarID(ctx context.Context, srv *calendar.Service, name string) (string, error) {
	list, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to retrieve calendar list: %w", err)
	}
	for _, item := range list.Items {
		if item.Summary == name {
			return item.Id, nil
		}
	}
	return "", fmt.Errorf("calendar '%s' not found", name)
}

// Source connects on first use so that starting the app never requires
// network access.
type Source struct {
	calendarName string
	dt           *datetime.Reconciler
	log          zerolog.Logger

	mu     sync.Mutex
	client *CalendarClient
}

func NewSource(calendarName string, dt *datetime.Reconciler, log zerolog.Logger) *Source {
	return &Source{calendarName: calendarName, dt: dt, log: log}
}

// Fetch returns the upcoming events of the configured calendar.
func (s *Source) Fetch(ctx context.Context) ([]model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		c, err := NewClient(ctx, s.calendarName, s.dt, s.log)
		if err != nil {
			return nil, err
		}
		s.client = c
	}
	return s.client.Fetch(ctx)
}

// Close drops the connection; the next Fetch reconnects.
func (s *Source) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = nil
}
