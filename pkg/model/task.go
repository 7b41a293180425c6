package model

import "strings"

// Priority orders tasks for the active list. Lower values sort first.
type Priority int

const (
	PriorityHigh Priority = iota
	PriorityMedium
	PriorityLow
)

var priorityNames = [...]string{"High", "Medium", "Low"}

func (p Priority) String() string {
	if p < PriorityHigh || p > PriorityLow {
		return "Medium"
	}
	return priorityNames[p]
}

// ParsePriority maps a collaborator-supplied string to a Priority.
// Unknown values fall back to PriorityMedium.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(b []byte) error {
	*p = ParsePriority(string(b))
	return nil
}

type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategoryStudy    Category = "Study"
	CategoryHealth   Category = "Health"
	CategoryErrands  Category = "Errands"
	CategoryOther    Category = "Other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryWork,
	CategoryPersonal,
	CategoryStudy,
	CategoryHealth,
	CategoryErrands,
	CategoryOther,
}

// ParseCategory matches s case-insensitively against Categories.
// Unknown values map to CategoryOther.
func ParseCategory(s string) Category {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c
		}
	}
	return CategoryOther
}

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

type Origin string

const (
	OriginLocal    Origin = "local"
	OriginExternal Origin = "external"
)

// Record is the shape shared by accepted candidates and synced calendar
// entries before the store assigns an id.
type Record struct {
	Name     string   `json:"taskName"`
	DateText string   `json:"date"`
	TimeText *string  `json:"time"` // nil means all-day
	Category Category `json:"category"`
	Priority Priority `json:"priority"`
}

// AllDay reports whether the record has no clock time.
func (r Record) AllDay() bool {
	return r.TimeText == nil
}

// Task is a stored record.
type Task struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	DateText string   `json:"date"`
	TimeText *string  `json:"time,omitempty"`
	Category Category `json:"category"`
	Priority Priority `json:"priority"`
	Status   Status   `json:"status"`
	Origin   Origin   `json:"origin"`
}

// AllDay reports whether the task has no clock time.
func (t Task) AllDay() bool {
	return t.TimeText == nil
}

// Active reports whether the task is still open.
func (t Task) Active() bool {
	return t.Status == StatusActive
}

// Time returns the time text, or "" for all-day tasks.
func (t Task) Time() string {
	if t.TimeText == nil {
		return ""
	}
	return *t.TimeText
}

// StringPtr is a helper for building optional time text.
func StringPtr(s string) *string {
	return &s
}
