package gateway

import (
	"context"
	"strings"
	"sync"
	"time"

	"taskdeck/internal/model"
)

// Memory is an in-process stand-in for the task service. It keeps tasks in
// server shape and answers with the same error kinds as Client.
type Memory struct {
	mu      sync.Mutex
	tasks   []model.ServerTask
	nextID  int64
	latency time.Duration
	now     func() time.Time
}

type MemoryOption func(*Memory)

// WithLatency delays every call, honouring context cancellation.
func WithLatency(d time.Duration) MemoryOption {
	return func(m *Memory) { m.latency = d }
}

func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// WithTasks replaces the seed data.
func WithTasks(tasks ...model.ServerTask) MemoryOption {
	return func(m *Memory) {
		m.tasks = append([]model.ServerTask(nil), tasks...)
		m.nextID = 1
		for _, t := range tasks {
			if t.ID >= m.nextID {
				m.nextID = t.ID + 1
			}
		}
	}
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{now: time.Now}
	WithTasks(sampleTasks()...)(m)
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Memory) wait(ctx context.Context) error {
	if m.latency <= 0 {
		if err := ctx.Err(); err != nil {
			return &NetworkError{Op: "memory", Err: err}
		}
		return nil
	}
	t := time.NewTimer(m.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return &NetworkError{Op: "memory", Err: ctx.Err()}
	case <-t.C:
		return nil
	}
}

func (m *Memory) List(ctx context.Context) ([]model.Task, error) {
	return m.list(ctx, func(model.ServerTask) bool { return true })
}

func (m *Memory) ListIncomplete(ctx context.Context) ([]model.Task, error) {
	return m.list(ctx, func(s model.ServerTask) bool { return !s.Status.IsEndState() })
}

func (m *Memory) list(ctx context.Context, keep func(model.ServerTask) bool) ([]model.Task, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Task, 0, len(m.tasks))
	for _, s := range m.tasks {
		if keep(s) {
			out = append(out, model.ToUI(s))
		}
	}
	return out, nil
}

func (m *Memory) Get(ctx context.Context, id int64) (model.Task, error) {
	if err := m.wait(ctx); err != nil {
		return model.Task{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return model.Task{}, &NotFoundError{ID: id}
	}
	return model.ToUI(m.tasks[i]), nil
}

func (m *Memory) Create(ctx context.Context, draft model.Task) (model.Task, error) {
	if err := m.wait(ctx); err != nil {
		return model.Task{}, err
	}
	s := model.ToServer(draft)
	if strings.TrimSpace(s.Label) == "" {
		return model.Task{}, &InvalidRequestError{Message: "title is required"}
	}
	if s.Priority == "" {
		s.Priority = model.PriorityMedium
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	s.ID = m.nextID
	m.nextID++
	s.CreatedAt = &now
	s.UpdatedAt = &now
	m.tasks = append(m.tasks, s)
	return model.ToUI(s), nil
}

func (m *Memory) UpdateStatus(ctx context.Context, id int64, status model.Status) (model.Task, error) {
	if err := m.wait(ctx); err != nil {
		return model.Task{}, err
	}
	if !status.Valid() {
		return model.Task{}, &InvalidRequestError{Message: "unknown status " + string(status)}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return model.Task{}, &NotFoundError{ID: id}
	}
	now := m.now()
	m.tasks[i].Status = status
	m.tasks[i].UpdatedAt = &now
	return model.ToUI(m.tasks[i]), nil
}

func (m *Memory) Update(ctx context.Context, id int64, patch model.Patch) (model.Task, error) {
	if err := m.wait(ctx); err != nil {
		return model.Task{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return model.Task{}, &NotFoundError{ID: id}
	}
	merged := patch.Apply(m.tasks[i])
	if strings.TrimSpace(merged.Label) == "" {
		return model.Task{}, &InvalidRequestError{Message: "title is required"}
	}
	now := m.now()
	merged.ID = id
	merged.CreatedAt = m.tasks[i].CreatedAt
	merged.UpdatedAt = &now
	m.tasks[i] = merged
	return model.ToUI(merged), nil
}

func (m *Memory) Remove(ctx context.Context, id int64) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}
	m.tasks = append(m.tasks[:i:i], m.tasks[i+1:]...)
	return nil
}

func (m *Memory) indexOf(id int64) int {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func sampleTasks() []model.ServerTask {
	day := func(y int, mo time.Month, d int) *time.Time {
		t := time.Date(y, mo, d, 9, 0, 0, 0, time.UTC)
		return &t
	}
	return []model.ServerTask{
		{ID: 1, Label: "Learn the new release", Description: "Read the changelog and try the new **signals** API.", Status: model.StatusInProgress, Priority: model.PriorityHigh, CreatedAt: day(2026, 5, 10), UpdatedAt: day(2026, 5, 12), DueDate: day(2026, 6, 1)},
		{ID: 2, Label: "Add authentication", Description: "JWT based sign-in for the API.", Status: model.StatusPending, Priority: model.PriorityMedium, CreatedAt: day(2026, 5, 8), UpdatedAt: day(2026, 5, 8), DueDate: day(2026, 6, 15)},
		{ID: 3, Label: "Write unit tests", Description: "Cover the store and the gateway.", Status: model.StatusPending, Priority: model.PriorityMedium, CreatedAt: day(2026, 5, 5), UpdatedAt: day(2026, 5, 5), DueDate: day(2026, 6, 20)},
		{ID: 4, Label: "Profile startup time", Description: "", Status: model.StatusPending, Priority: model.PriorityLow, CreatedAt: day(2026, 5, 1), UpdatedAt: day(2026, 5, 1)},
		{ID: 5, Label: "User documentation", Description: "- install\n- configure\n- first task", Status: model.StatusCompleted, Priority: model.PriorityMedium, CreatedAt: day(2026, 4, 15), UpdatedAt: day(2026, 5, 5)},
		{ID: 6, Label: "Sprint planning", Description: "Moved to next week.", Status: model.StatusCancelled, Priority: model.PriorityLow, CreatedAt: day(2026, 4, 10), UpdatedAt: day(2026, 4, 12)},
	}
}
