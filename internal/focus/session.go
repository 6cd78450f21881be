// Package focus implements the work/break countdown used while working on
// the selected task.
package focus

import (
	"fmt"
	"time"
)

type State string

const (
	StateIdle  State = "idle"
	StateWork  State = "work"
	StateBreak State = "break"
)

type Event int

const (
	EventNone Event = iota
	// EventWorkDone: a work period ended and a break started.
	EventWorkDone
	// EventBreakDone: a break ended and the next work period started.
	EventBreakDone
	// EventFinished: the last work period ended and the session is idle again.
	EventFinished
)

func (e Event) String() string {
	switch e {
	case EventWorkDone:
		return "work-done"
	case EventBreakDone:
		return "break-done"
	case EventFinished:
		return "finished"
	default:
		return "none"
	}
}

type Settings struct {
	Work   time.Duration
	Break  time.Duration
	Target int
}

func DefaultSettings() Settings {
	return Settings{Work: 25 * time.Minute, Break: 5 * time.Minute, Target: 4}
}

func (s Settings) normalized() Settings {
	d := DefaultSettings()
	if s.Work < time.Second {
		s.Work = d.Work
	}
	if s.Break < time.Second {
		s.Break = d.Break
	}
	if s.Target < 1 {
		s.Target = d.Target
	}
	return s
}

// Session is the timer state machine. It does not keep time itself;
// callers advance it one second at a time with Tick.
type Session struct {
	settings  Settings
	state     State
	remaining time.Duration
	completed int
	paused    bool
}

func NewSession(s Settings) *Session {
	s = s.normalized()
	return &Session{settings: s, state: StateIdle, remaining: s.Work}
}

// Start begins a work period. A session that already reached its target
// starts counting from zero again.
func (s *Session) Start() {
	if s.completed >= s.settings.Target {
		s.completed = 0
	}
	s.state = StateWork
	s.remaining = s.settings.Work
	s.paused = false
}

// Stop returns to idle. Completed periods are kept.
func (s *Session) Stop() {
	s.state = StateIdle
	s.remaining = s.settings.Work
	s.paused = false
}

// TogglePause pauses or resumes a running session and reports whether it
// is now paused. It does nothing while idle.
func (s *Session) TogglePause() bool {
	if s.state == StateIdle {
		return false
	}
	s.paused = !s.paused
	return s.paused
}

// Tick advances the countdown by one second.
func (s *Session) Tick() Event {
	if s.state == StateIdle || s.paused {
		return EventNone
	}
	s.remaining -= time.Second
	if s.remaining > 0 {
		return EventNone
	}

	switch s.state {
	case StateWork:
		s.completed++
		if s.completed >= s.settings.Target {
			s.Stop()
			return EventFinished
		}
		s.state = StateBreak
		s.remaining = s.settings.Break
		return EventWorkDone
	default:
		s.state = StateWork
		s.remaining = s.settings.Work
		return EventBreakDone
	}
}

func (s *Session) State() State             { return s.state }
func (s *Session) Remaining() time.Duration { return s.remaining }
func (s *Session) Completed() int           { return s.completed }
func (s *Session) Paused() bool             { return s.paused }
func (s *Session) Settings() Settings       { return s.settings }

// Progress is the share of the target already completed, in [0, 1].
func (s *Session) Progress() float64 {
	p := float64(s.completed) / float64(s.settings.Target)
	if p > 1 {
		return 1
	}
	return p
}

func (s *Session) Status() Status {
	return Status{
		State:     s.state,
		Remaining: s.remaining,
		Completed: s.completed,
		Target:    s.settings.Target,
		Paused:    s.paused,
	}
}

// Status is a copy of a session's observable state.
type Status struct {
	State     State
	Remaining time.Duration
	Completed int
	Target    int
	Paused    bool
}

// Format renders d as MM:SS. Minutes are not wrapped at 60.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
