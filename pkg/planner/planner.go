// Package planner ties the task store, the focus engine and the external
// collaborators into the single session the UI talks to.
package planner

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/harrisonrobin/focusa/pkg/focus"
	"github.com/harrisonrobin/focusa/pkg/model"
	"github.com/harrisonrobin/focusa/pkg/tasks"
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrTaskNotActive = errors.New("task is completed")
	ErrNoCandidate   = errors.New("no task awaiting confirmation")
	ErrNoParser      = errors.New("task parser not configured")
	ErrNoSource      = errors.New("calendar not connected")
)

// TaskParser turns free text into a candidate record.
type TaskParser interface {
	Parse(ctx context.Context, text string) (model.Record, error)
}

// CalendarSource supplies the external batch on demand.
type CalendarSource interface {
	Fetch(ctx context.Context) ([]model.Record, error)
}

// Planner owns one Store and one Engine. Methods that mutate state must be
// called from a single goroutine; ParseText and FetchExternal only talk to
// collaborators and may run elsewhere.
type Planner struct {
	Store  *tasks.Store
	Engine *focus.Engine

	parser    TaskParser
	source    CalendarSource
	candidate *model.Record
	log       zerolog.Logger
}

// New wires a planner. parser and source may be nil.
func New(store *tasks.Store, engine *focus.Engine, parser TaskParser, source CalendarSource, log zerolog.Logger) *Planner {
	return &Planner{
		Store:  store,
		Engine: engine,
		parser: parser,
		source: source,
		log:    log,
	}
}

// ParseText asks the parsing collaborator for a candidate without touching
// planner state.
func (p *Planner) ParseText(ctx context.Context, text string) (model.Record, error) {
	if p.parser == nil {
		return model.Record{}, ErrNoParser
	}
	rec, err := p.parser.Parse(ctx, text)
	if err != nil {
		return model.Record{}, fmt.Errorf("parse task: %w", err)
	}
	return rec, nil
}

// Capture parses text and holds the result as the pending candidate. On
// failure no candidate is created.
func (p *Planner) Capture(ctx context.Context, text string) (model.Record, error) {
	rec, err := p.ParseText(ctx, text)
	if err != nil {
		return model.Record{}, err
	}
	p.Offer(rec)
	return rec, nil
}

// Offer replaces the pending candidate.
func (p *Planner) Offer(rec model.Record) {
	p.candidate = &rec
}

// Candidate returns the record awaiting confirmation.
func (p *Planner) Candidate() (model.Record, bool) {
	if p.candidate == nil {
		return model.Record{}, false
	}
	return *p.candidate, true
}

// Accept commits the candidate as a local task.
func (p *Planner) Accept() (model.Task, error) {
	if p.candidate == nil {
		return model.Task{}, ErrNoCandidate
	}
	task := p.Store.Add(*p.candidate)
	p.candidate = nil

	p.log.Info().Str("task", task.ID).Str("name", task.Name).Msg("task accepted")
	return task, nil
}

// Reject discards the candidate.
func (p *Planner) Reject() {
	p.candidate = nil
}

// FetchExternal pulls a batch from the calendar source without touching
// planner state.
func (p *Planner) FetchExternal(ctx context.Context) ([]model.Record, error) {
	if p.source == nil {
		return nil, ErrNoSource
	}
	recs, err := p.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("calendar sync: %w", err)
	}
	return recs, nil
}

// ApplyExternal replaces the external batch.
func (p *Planner) ApplyExternal(recs []model.Record) []model.Task {
	return p.Store.ReplaceExternal(recs)
}

// Sync fetches and applies in one step. On failure the previous batch stays.
func (p *Planner) Sync(ctx context.Context) ([]model.Task, error) {
	recs, err := p.FetchExternal(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("sync failed")
		return nil, err
	}
	return p.ApplyExternal(recs), nil
}

// Disconnect removes every external task.
func (p *Planner) Disconnect() int {
	n := p.Store.RemoveAllExternal()
	p.log.Info().Int("removed", n).Msg("calendar disconnected")
	return n
}

// ToggleStatus flips a task's status; any focus timer on it is torn down.
func (p *Planner) ToggleStatus(id string) (model.Task, bool) {
	return p.Store.ToggleStatus(id)
}

// StartFocus attaches the focus timer to an existing active task.
func (p *Planner) StartFocus(id string) (focus.State, error) {
	task, ok := p.Store.Get(id)
	if !ok {
		return focus.State{}, ErrTaskNotFound
	}
	if !task.Active() {
		return focus.State{}, ErrTaskNotActive
	}
	return p.Engine.Start(id)
}

// FocusTask returns the task the timer is attached to.
func (p *Planner) FocusTask() (model.Task, focus.State, bool) {
	st, ok := p.Engine.Snapshot()
	if !ok {
		return model.Task{}, focus.State{}, false
	}
	task, ok := p.Store.Get(st.TaskID)
	if !ok {
		return model.Task{}, focus.State{}, false
	}
	return task, st, true
}
