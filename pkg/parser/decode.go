package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harrisonrobin/focusa/pkg/model"
)

type rawRecord struct {
	TaskName string  `json:"taskName"`
	Date     string  `json:"date"`
	Time     *string `json:"time"`
	Category string  `json:"category"`
	Priority string  `json:"priority"`
}

// decodeRecord extracts the JSON object from a model reply, tolerating
// markdown code fences and surrounding prose.
func decodeRecord(text string) (model.Record, error) {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		if idx := strings.Index(cleaned, "\n"); idx >= 0 {
			cleaned = cleaned[idx+1:]
		}
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}
	if start, end := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}

	var raw rawRecord
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return model.Record{}, fmt.Errorf("%w: %w", ErrNoTask, err)
	}

	name := strings.TrimSpace(raw.TaskName)
	if name == "" {
		return model.Record{}, ErrNoTask
	}

	rec := model.Record{
		Name:     name,
		DateText: strings.TrimSpace(raw.Date),
		Category: model.ParseCategory(raw.Category),
		Priority: model.ParsePriority(raw.Priority),
	}
	if raw.Time != nil {
		if t := strings.TrimSpace(*raw.Time); t != "" && !strings.EqualFold(t, "null") {
			rec.TimeText = &t
		}
	}
	return rec, nil
}
