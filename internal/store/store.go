// Package store holds the client's single in-memory copy of the task list.
//
// All mutation goes through Store actions. Each action marks the store as
// loading, calls the gateway, then replaces the whole state in one step.
// Views read derived values (FilteredTasks, SelectedTask) that are computed
// from the current state on every call.
package store

import (
	"context"
	"errors"
	"sync"

	"taskdeck/internal/events"
	"taskdeck/internal/model"

	"go.uber.org/zap"
)

// Fixed messages surfaced through Error() when an action fails.
const (
	MsgLoadFailed   = "Failed to load tasks"
	MsgCreateFailed = "Failed to create task"
	MsgUpdateFailed = "Failed to update task"
	MsgStatusFailed = "Failed to update task status"
	MsgDeleteFailed = "Failed to delete task"
	MsgFocusFailed  = "Failed to record focus session"
)

var (
	ErrUnknownTask = errors.New("task is not loaded")
	ErrMissingID   = errors.New("service returned a task without an id")
)

// Gateway is the remote task service as the store needs it.
type Gateway interface {
	List(ctx context.Context) ([]model.Task, error)
	Create(ctx context.Context, draft model.Task) (model.Task, error)
	UpdateStatus(ctx context.Context, id int64, status model.Status) (model.Task, error)
	Update(ctx context.Context, id int64, patch model.Patch) (model.Task, error)
	Remove(ctx context.Context, id int64) error
}

// ActionError is returned by a failed action. Message is the text the store
// also exposes through Error(); Err is the gateway failure.
type ActionError struct {
	Message string
	Err     error
}

func (e *ActionError) Error() string { return e.Message + ": " + e.Err.Error() }

func (e *ActionError) Unwrap() error { return e.Err }

type state struct {
	tasks          []model.Task
	selectedTaskID int64
	loading        bool
	err            string
	filter         model.Filter
}

type Store struct {
	gw      Gateway
	log     *zap.Logger
	changes *events.Notifier
	watch   *events.Bus[Snapshot]

	// pubMu orders state replacement together with snapshot delivery, so
	// watchers receive snapshots in the order they were produced.
	pubMu    sync.Mutex
	mu       sync.RWMutex
	st       state
	inflight int

	fenceMu sync.Mutex
	fences  map[int64]*fence
}

type fence struct {
	mu   sync.Mutex
	refs int
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l.Named("store")
		}
	}
}

// WithNotifier shares a process-wide change notifier with other views.
func WithNotifier(n *events.Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.changes = n
		}
	}
}

func New(gw Gateway, opts ...Option) *Store {
	s := &Store{
		gw:      gw,
		log:     zap.NewNop(),
		changes: events.NewNotifier(),
		watch:   events.NewBus[Snapshot](),
		st:      state{filter: model.FilterAll},
		fences:  map[int64]*fence{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Changes is notified after every successful mutation.
func (s *Store) Changes() *events.Notifier { return s.changes }

// Watch calls fn with a snapshot after every state change. fn runs on the
// goroutine that changed the state and must not call Store actions
// synchronously.
func (s *Store) Watch(fn func(Snapshot)) (cancel func()) {
	return s.watch.Subscribe(fn)
}

// Close drops all watchers and change subscribers.
func (s *Store) Close() {
	s.watch.Close()
	s.changes.Close()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{st: s.st}
}

func (s *Store) Tasks() []model.Task         { return s.Snapshot().Tasks() }
func (s *Store) FilteredTasks() []model.Task { return s.Snapshot().FilteredTasks() }
func (s *Store) SelectedTask() (model.Task, bool) {
	return s.Snapshot().SelectedTask()
}
func (s *Store) SelectedTaskID() int64 { return s.Snapshot().SelectedTaskID() }
func (s *Store) Loading() bool         { return s.Snapshot().Loading() }
func (s *Store) Error() string         { return s.Snapshot().Error() }
func (s *Store) Filter() model.Filter  { return s.Snapshot().Filter() }

// Load replaces the task list with the service's. On failure the current
// list is kept. Only the first task with a given id is kept.
func (s *Store) Load(ctx context.Context) error {
	s.begin()
	tasks, err := s.gw.List(ctx)
	if err != nil {
		return s.fail(MsgLoadFailed, err)
	}
	tasks = dedupe(tasks)
	s.finish(func(st *state) {
		st.tasks = tasks
		if st.selectedTaskID != 0 && indexOf(tasks, st.selectedTaskID) < 0 {
			st.selectedTaskID = 0
		}
	})
	return nil
}

// Select records id as the selected task without checking that it exists.
func (s *Store) Select(id int64) {
	s.update(func(st *state) { st.selectedTaskID = id })
}

func (s *Store) ClearSelection() {
	s.update(func(st *state) { st.selectedTaskID = 0 })
}

func (s *Store) SetFilter(f model.Filter) {
	if f == "" {
		f = model.FilterAll
	}
	s.update(func(st *state) { st.filter = f })
}

// Add creates draft on the service and appends the created task.
func (s *Store) Add(ctx context.Context, draft model.Task) (model.Task, error) {
	if draft.Priority == "" {
		draft.Priority = model.PriorityMedium
	}
	draft.ID = 0

	s.begin()
	created, err := s.gw.Create(ctx, draft)
	if err == nil && created.IsDraft() {
		err = ErrMissingID
	}
	if err != nil {
		return model.Task{}, s.fail(MsgCreateFailed, err)
	}
	s.finish(func(st *state) { st.tasks = upsert(st.tasks, created) })
	s.changes.Notify()
	return created, nil
}

// UpdateFields applies patch to the task and stores the service's copy.
func (s *Store) UpdateFields(ctx context.Context, id int64, patch model.Patch) (model.Task, error) {
	unlock := s.lockTask(id)
	defer unlock()
	return s.updateFields(ctx, id, patch, MsgUpdateFailed)
}

func (s *Store) updateFields(ctx context.Context, id int64, patch model.Patch, msg string) (model.Task, error) {
	s.begin()
	updated, err := s.gw.Update(ctx, id, patch)
	if err != nil {
		return model.Task{}, s.fail(msg, err)
	}
	s.finish(func(st *state) { st.tasks = replace(st.tasks, id, updated) })
	s.changes.Notify()
	return updated, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id int64, status model.Status) (model.Task, error) {
	unlock := s.lockTask(id)
	defer unlock()

	s.begin()
	updated, err := s.gw.UpdateStatus(ctx, id, status)
	if err != nil {
		return model.Task{}, s.fail(MsgStatusFailed, err)
	}
	s.finish(func(st *state) { st.tasks = replace(st.tasks, id, updated) })
	s.changes.Notify()
	return updated, nil
}

// Remove deletes the task and clears the selection if it pointed at it.
func (s *Store) Remove(ctx context.Context, id int64) error {
	unlock := s.lockTask(id)
	defer unlock()

	s.begin()
	if err := s.gw.Remove(ctx, id); err != nil {
		return s.fail(MsgDeleteFailed, err)
	}
	s.finish(func(st *state) {
		st.tasks = without(st.tasks, id)
		if st.selectedTaskID == id {
			st.selectedTaskID = 0
		}
	})
	s.changes.Notify()
	return nil
}

// RecordFocusSession adds one completed focus session to the task's count.
func (s *Store) RecordFocusSession(ctx context.Context, id int64) (model.Task, error) {
	unlock := s.lockTask(id)
	defer unlock()

	snap := s.Snapshot()
	i := indexOf(snap.st.tasks, id)
	if i < 0 {
		s.begin()
		return model.Task{}, s.fail(MsgFocusFailed, ErrUnknownTask)
	}
	n := snap.st.tasks[i].PomodoroCount + 1
	return s.updateFields(ctx, id, model.Patch{PomodoroCount: &n}, MsgFocusFailed)
}

func (s *Store) begin() {
	s.update(func(st *state) {
		s.inflight++
		st.loading = true
		st.err = ""
	})
}

func (s *Store) finish(apply func(*state)) {
	s.update(func(st *state) {
		apply(st)
		if s.inflight > 0 {
			s.inflight--
		}
		st.loading = s.inflight > 0
	})
}

func (s *Store) fail(msg string, err error) error {
	s.log.Warn(msg, zap.Error(err))
	s.finish(func(st *state) { st.err = msg })
	return &ActionError{Message: msg, Err: err}
}

// update replaces the state with a modified copy and publishes it.
// apply must not modify slices of the previous state in place.
func (s *Store) update(apply func(*state)) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	next := s.st
	apply(&next)
	s.st = next
	s.mu.Unlock()

	s.watch.Publish(Snapshot{st: next})
}

// lockTask serializes mutations of one task in call order.
func (s *Store) lockTask(id int64) (unlock func()) {
	s.fenceMu.Lock()
	f := s.fences[id]
	if f == nil {
		f = &fence{}
		s.fences[id] = f
	}
	f.refs++
	s.fenceMu.Unlock()

	f.mu.Lock()
	return func() {
		f.mu.Unlock()
		s.fenceMu.Lock()
		f.refs--
		if f.refs == 0 {
			delete(s.fences, id)
		}
		s.fenceMu.Unlock()
	}
}

func indexOf(tasks []model.Task, id int64) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// replace swaps the task with id for t. A task that is no longer present is
// not re-inserted.
func replace(tasks []model.Task, id int64, t model.Task) []model.Task {
	i := indexOf(tasks, id)
	if i < 0 {
		return tasks
	}
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	out[i] = t
	return out
}

func upsert(tasks []model.Task, t model.Task) []model.Task {
	if i := indexOf(tasks, t.ID); i >= 0 {
		return replace(tasks, t.ID, t)
	}
	out := make([]model.Task, len(tasks), len(tasks)+1)
	copy(out, tasks)
	return append(out, t)
}

func dedupe(tasks []model.Task) []model.Task {
	seen := make(map[int64]bool, len(tasks))
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out
}

func without(tasks []model.Task, id int64) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
