// Package focus implements the work/break timer that is attached to at most
// one task at a time.
package focus

import (
	"errors"

	"github.com/rs/zerolog"
)

// ErrConflict is returned by Start when the timer already belongs to a
// different task.
var ErrConflict = errors.New("focus timer already running for another task")

type Mode string

const (
	ModeWork       Mode = "work"
	ModeShortBreak Mode = "shortBreak"
	ModeLongBreak  Mode = "longBreak"
)

// IsBreak reports whether m is one of the break modes.
func (m Mode) IsBreak() bool {
	return m == ModeShortBreak || m == ModeLongBreak
}

// State is a snapshot of the running timer.
type State struct {
	TaskID     string `json:"task_id"`
	TimeLeft   int    `json:"time_left"` // seconds
	Mode       Mode   `json:"mode"`
	CycleCount int    `json:"cycle_count"`
	Paused     bool   `json:"paused"`
}

// Engine is the timer state machine. It holds no reference to the task
// store; it only remembers which task id it is attached to.
//
// Engine is not safe for concurrent use. The owner drives Tick from the
// same goroutine that issues every other call.
type Engine struct {
	cfg   Config
	state *State
	log   zerolog.Logger
}

// NewEngine returns an engine with no active timer. Invalid fields in cfg
// fall back to DefaultConfig.
func NewEngine(cfg Config, log zerolog.Logger) *Engine {
	c := DefaultConfig()
	c.Merge(cfg)
	return &Engine{cfg: c, log: log}
}

// Config returns the current configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Configure updates one option. The running countdown is untouched; the new
// value applies from the next mode transition.
func (e *Engine) Configure(option, raw string) bool {
	if !e.cfg.Set(option, raw) {
		e.log.Debug().Str("option", option).Str("value", raw).Msg("ignoring invalid focus setting")
		return false
	}
	return true
}

// Snapshot returns the current state and whether a timer exists.
func (e *Engine) Snapshot() (State, bool) {
	if e.state == nil {
		return State{}, false
	}
	return *e.state, true
}

// AttachedTo returns the id of the task owning the timer.
func (e *Engine) AttachedTo() (string, bool) {
	if e.state == nil {
		return "", false
	}
	return e.state.TaskID, true
}

// Start begins a fresh work interval for taskID. Starting again for the same
// task restarts it.
func (e *Engine) Start(taskID string) (State, error) {
	if e.state != nil && e.state.TaskID != taskID {
		return *e.state, ErrConflict
	}

	e.state = &State{
		TaskID:   taskID,
		TimeLeft: e.cfg.Seconds(ModeWork),
		Mode:     ModeWork,
	}
	e.log.Info().Str("task", taskID).Int("seconds", e.state.TimeLeft).Msg("focus started")
	return *e.state, nil
}

// Tick advances the countdown by one second. At zero the engine moves to the
// next mode instead of going negative. Paused or absent timers are left as-is.
func (e *Engine) Tick() (State, bool) {
	if e.state == nil {
		return State{}, false
	}
	if e.state.Paused {
		return *e.state, true
	}

	e.state.TimeLeft--
	if e.state.TimeLeft <= 0 {
		e.transition()
	}
	return *e.state, true
}

// PauseResume toggles the paused flag.
func (e *Engine) PauseResume() (State, bool) {
	if e.state == nil {
		return State{}, false
	}
	e.state.Paused = !e.state.Paused
	return *e.state, true
}

// Skip ends the current interval immediately.
func (e *Engine) Skip() (State, bool) {
	if e.state == nil {
		return State{}, false
	}
	e.transition()
	return *e.state, true
}

// Reset discards the timer.
func (e *Engine) Reset() {
	if e.state != nil {
		e.log.Info().Str("task", e.state.TaskID).Msg("focus reset")
	}
	e.state = nil
}

// Detach resets the engine if it is attached to taskID.
func (e *Engine) Detach(taskID string) bool {
	if e.state == nil || e.state.TaskID != taskID {
		return false
	}
	e.Reset()
	return true
}

func (e *Engine) transition() {
	s := e.state
	from := s.Mode

	if s.Mode == ModeWork {
		s.CycleCount++
		if s.CycleCount%e.cfg.CyclesPerLongBreak == 0 {
			s.Mode = ModeLongBreak
		} else {
			s.Mode = ModeShortBreak
		}
	} else {
		s.Mode = ModeWork
	}

	s.TimeLeft = e.cfg.Seconds(s.Mode)
	s.Paused = false

	e.log.Debug().
		Str("task", s.TaskID).
		Str("from", string(from)).
		Str("to", string(s.Mode)).
		Int("cycles", s.CycleCount).
		Msg("focus transition")
}
