package datetime

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReconciler(t *testing.T) *Reconciler {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.FixedZone("EST", -5*3600)
	}
	return New(loc, zerolog.Nop())
}

func strp(s string) *string { return &s }

func TestToTimestamp(t *testing.T) {
	r := newTestReconciler(t)
	loc := r.Location()

	tests := []struct {
		name   string
		date   string
		time   *string
		want   time.Time
		wantOK bool
	}{
		{"canonical", "March 5, 2024", strp("9:05 AM"), time.Date(2024, 3, 5, 9, 5, 0, 0, loc), true},
		{"afternoon", "December 31, 2023", strp("11:59 PM"), time.Date(2023, 12, 31, 23, 59, 0, 0, loc), true},
		{"noon", "July 4, 2024", strp("12:00 PM"), time.Date(2024, 7, 4, 12, 0, 0, 0, loc), true},
		{"midnight", "July 4, 2024", strp("12:00 AM"), time.Date(2024, 7, 4, 0, 0, 0, 0, loc), true},
		{"lowercase meridiem", "July 4, 2024", strp("3:30 pm"), time.Date(2024, 7, 4, 15, 30, 0, 0, loc), true},
		{"24 hour clock", "2024-07-04", strp("15:30"), time.Date(2024, 7, 4, 15, 30, 0, 0, loc), true},
		{"short month", "Jan 2, 2025", strp("8 AM"), time.Date(2025, 1, 2, 8, 0, 0, 0, loc), true},
		{"all day", "March 5, 2024", nil, time.Date(2024, 3, 5, 0, 0, 0, 0, loc), true},
		{"extra spaces", "  March  5,   2024 ", strp(" 9:05  AM"), time.Date(2024, 3, 5, 9, 5, 0, 0, loc), true},
		{"february 30", "February 30, 2024", strp("9:00 AM"), time.Time{}, false},
		{"february 30 all day", "February 30, 2024", nil, time.Time{}, false},
		{"leap day", "February 29, 2024", nil, time.Date(2024, 2, 29, 0, 0, 0, 0, loc), true},
		{"garbage date", "next tuesday-ish", nil, time.Time{}, false},
		{"empty date", "", nil, time.Time{}, false},
		{"garbage time", "March 5, 2024", strp("after lunch"), time.Time{}, false},
		{"empty time", "March 5, 2024", strp(""), time.Time{}, false},
		{"hour out of range", "March 5, 2024", strp("13:00 PM"), time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.ToTimestamp(tt.date, tt.time)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromTimestamp(t *testing.T) {
	r := newTestReconciler(t)
	loc := r.Location()

	date, tm := r.FromTimestamp(time.Date(2024, 3, 5, 9, 5, 42, 0, loc), false)
	assert.Equal(t, "March 5, 2024", date)
	require.NotNil(t, tm)
	assert.Equal(t, "9:05 AM", *tm)

	date, tm = r.FromTimestamp(time.Date(2024, 11, 20, 18, 0, 0, 0, loc), false)
	assert.Equal(t, "November 20, 2024", date)
	require.NotNil(t, tm)
	assert.Equal(t, "6:00 PM", *tm)

	date, tm = r.FromTimestamp(time.Date(2024, 3, 5, 17, 45, 0, 0, loc), true)
	assert.Equal(t, "March 5, 2024", date)
	assert.Nil(t, tm, "all-day must drop the clock component")
}

func TestFromTimestamp_ConvertsToLocation(t *testing.T) {
	r := New(time.FixedZone("UTC+2", 2*3600), zerolog.Nop())

	date, tm := r.FromTimestamp(time.Date(2024, 3, 5, 23, 30, 0, 0, time.UTC), false)
	assert.Equal(t, "March 6, 2024", date)
	require.NotNil(t, tm)
	assert.Equal(t, "1:30 AM", *tm)
}

func TestRoundTrip(t *testing.T) {
	r := New(time.UTC, zerolog.Nop())

	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 500; i++ {
		// walk through odd minute/second offsets across a couple of years
		ts := start.Add(time.Duration(i) * (37*time.Hour + 13*time.Minute + 17*time.Second))

		for _, allDay := range []bool{false, true} {
			in := ts
			if allDay {
				in = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
			}

			date, tm := r.FromTimestamp(in, allDay)
			got, ok := r.ToTimestamp(date, tm)
			require.True(t, ok, "reparse %q %v", date, tm)
			assert.True(t, in.Truncate(time.Minute).Equal(got), "round trip %v -> %v", in, got)

			// a second pass must be stable
			date2, tm2 := r.FromTimestamp(got, allDay)
			assert.Equal(t, date, date2)
			assert.Equal(t, tm, tm2)
		}
	}
}
