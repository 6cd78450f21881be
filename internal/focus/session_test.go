package focus

import (
	"context"
	"sync"
	"testing"
	"time"
)

func tickN(s *Session, n int) []Event {
	var evs []Event
	for i := 0; i < n; i++ {
		if ev := s.Tick(); ev != EventNone {
			evs = append(evs, ev)
		}
	}
	return evs
}

func TestSession_WorkBreakCycleUntilTarget(t *testing.T) {
	t.Parallel()

	s := NewSession(Settings{Work: 3 * time.Second, Break: 2 * time.Second, Target: 2})
	if s.State() != StateIdle {
		t.Fatalf("expected idle; got %s", s.State())
	}
	if ev := s.Tick(); ev != EventNone {
		t.Fatalf("idle session must not tick; got %v", ev)
	}

	s.Start()
	if evs := tickN(s, 3); len(evs) != 1 || evs[0] != EventWorkDone {
		t.Fatalf("expected work-done after 3 ticks; got %v", evs)
	}
	if s.State() != StateBreak || s.Remaining() != 2*time.Second || s.Completed() != 1 {
		t.Fatalf("unexpected state after work: %+v", s.Status())
	}

	if evs := tickN(s, 2); len(evs) != 1 || evs[0] != EventBreakDone {
		t.Fatalf("expected break-done; got %v", evs)
	}
	if s.State() != StateWork {
		t.Fatalf("expected work after break; got %s", s.State())
	}

	if evs := tickN(s, 3); len(evs) != 1 || evs[0] != EventFinished {
		t.Fatalf("expected finished; got %v", evs)
	}
	if s.State() != StateIdle || s.Completed() != 2 || s.Progress() != 1 {
		t.Fatalf("unexpected final state: %+v", s.Status())
	}

	s.Start()
	if s.Completed() != 0 {
		t.Fatalf("restart after finishing should reset completed; got %d", s.Completed())
	}
}

func TestSession_PauseFreezesCountdown(t *testing.T) {
	t.Parallel()

	s := NewSession(Settings{Work: 10 * time.Second, Break: time.Second, Target: 1})
	if s.TogglePause() {
		t.Fatalf("pausing an idle session should be a no-op")
	}
	s.Start()
	s.Tick()
	if !s.TogglePause() {
		t.Fatalf("expected paused")
	}
	tickN(s, 5)
	if got := s.Remaining(); got != 9*time.Second {
		t.Fatalf("remaining moved while paused: %v", got)
	}
	s.TogglePause()
	s.Tick()
	if got := s.Remaining(); got != 8*time.Second {
		t.Fatalf("expected 8s; got %v", got)
	}
}

func TestSession_StopKeepsCompleted(t *testing.T) {
	t.Parallel()

	s := NewSession(Settings{Work: time.Second, Break: time.Second, Target: 3})
	s.Start()
	s.Tick()
	s.Stop()
	if s.State() != StateIdle || s.Completed() != 1 || s.Remaining() != time.Second {
		t.Fatalf("unexpected state after stop: %+v", s.Status())
	}
}

func TestSettingsDefaults(t *testing.T) {
	t.Parallel()

	s := NewSession(Settings{})
	if s.Settings() != DefaultSettings() {
		t.Fatalf("expected defaults; got %+v", s.Settings())
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := map[time.Duration]string{
		0:                              "00:00",
		59 * time.Second:               "00:59",
		25 * time.Minute:               "25:00",
		61*time.Minute + 5*time.Second: "61:05",
		-3 * time.Second:               "00:00",
		1500 * time.Millisecond:        "00:01",
	}
	for in, want := range tests {
		if got := Format(in); got != want {
			t.Fatalf("Format(%v) = %q; want %q", in, got, want)
		}
	}
}

func TestRunner_RunsToCompletion(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var events []Event
	r := NewRunner(
		Settings{Work: 2 * time.Second, Break: time.Second, Target: 2},
		WithInterval(time.Millisecond),
		OnEvent(func(ev Event, _ Status) {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		}),
	)

	r.Start(context.Background())
	select {
	case <-r.Finished():
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not finish")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []Event{EventWorkDone, EventBreakDone, EventFinished}
	if len(events) != len(want) {
		t.Fatalf("events: got %v want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events: got %v want %v", events, want)
		}
	}
	if st := r.Status(); st.State != StateIdle || st.Completed != 2 {
		t.Fatalf("unexpected final status: %+v", st)
	}
}

func TestRunner_RestartNeverDuplicatesTicker(t *testing.T) {
	t.Parallel()

	r := NewRunner(Settings{Work: time.Hour, Break: time.Minute, Target: 1}, WithInterval(time.Millisecond))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		r.Start(ctx)
		if n := r.loops.Load(); n > 1 {
			t.Fatalf("found %d ticker goroutines after start #%d", n, i+1)
		}
	}
	r.TogglePause(ctx)
	if n := r.loops.Load(); n != 0 {
		t.Fatalf("paused runner still has %d ticker goroutines", n)
	}
	r.TogglePause(ctx)
	if n := r.loops.Load(); n != 1 {
		t.Fatalf("resumed runner has %d ticker goroutines", n)
	}
	r.Stop()
	if n := r.loops.Load(); n != 0 {
		t.Fatalf("stopped runner still has %d ticker goroutines", n)
	}
	if st := r.Status(); st.State != StateIdle {
		t.Fatalf("expected idle after stop; got %s", st.State)
	}
}
