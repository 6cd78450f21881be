package focus

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Runner drives a Session from a ticker on its own goroutine.
//
// At most one ticker goroutine exists per Runner: every start first stops
// and waits for the previous one. Callbacks run on the ticker goroutine and
// must not call Runner methods synchronously.
type Runner struct {
	mu       sync.Mutex
	session  *Session
	interval time.Duration
	onTick   func(Status)
	onEvent  func(Event, Status)

	cancel   context.CancelFunc
	done     chan struct{}
	finished chan struct{}
	loops    atomic.Int32
}

type RunnerOption func(*Runner)

// WithInterval sets the wall time of one session second. Tests shrink it.
func WithInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

func OnTick(fn func(Status)) RunnerOption {
	return func(r *Runner) { r.onTick = fn }
}

func OnEvent(fn func(Event, Status)) RunnerOption {
	return func(r *Runner) { r.onEvent = fn }
}

func NewRunner(s Settings, opts ...RunnerOption) *Runner {
	r := &Runner{
		session:  NewSession(s),
		interval: time.Second,
		finished: make(chan struct{}),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Start begins a new work period and (re)starts the ticker.
func (r *Runner) Start(ctx context.Context) {
	r.stopLoop()
	r.mu.Lock()
	r.session.Start()
	r.finished = make(chan struct{})
	r.mu.Unlock()
	r.startLoop(ctx)
}

// Stop halts the ticker and returns the session to idle.
func (r *Runner) Stop() {
	r.stopLoop()
	r.mu.Lock()
	r.session.Stop()
	r.mu.Unlock()
}

// TogglePause pauses or resumes. Pausing stops the ticker so no tick can
// fire while paused.
func (r *Runner) TogglePause(ctx context.Context) bool {
	r.mu.Lock()
	if r.session.State() == StateIdle {
		r.mu.Unlock()
		return false
	}
	paused := r.session.TogglePause()
	r.mu.Unlock()

	if paused {
		r.stopLoop()
	} else {
		r.startLoop(ctx)
	}
	return paused
}

func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.Status()
}

// Finished is closed when the current run reaches its target.
func (r *Runner) Finished() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}

func (r *Runner) startLoop(ctx context.Context) {
	r.stopLoop()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	r.mu.Lock()
	r.cancel = cancel
	r.done = done
	finished := r.finished
	r.mu.Unlock()

	r.loops.Add(1)
	go func() {
		defer close(done)
		defer r.loops.Add(-1)

		t := time.NewTicker(r.interval)
		defer t.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-t.C:
			}

			r.mu.Lock()
			ev := r.session.Tick()
			st := r.session.Status()
			r.mu.Unlock()

			if r.onTick != nil {
				r.onTick(st)
			}
			if ev != EventNone && r.onEvent != nil {
				r.onEvent(ev, st)
			}
			if ev == EventFinished {
				close(finished)
				return
			}
		}
	}()
}

func (r *Runner) stopLoop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
