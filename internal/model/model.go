package model

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Task is the canonical client-side task.
//
// ID is zero for a draft that the remote service has not persisted yet.
type Task struct {
	ID          int64      `json:"id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`

	PomodoroCount int `json:"pomodoroCount"`
}

// Completed reports the legacy completion flag derived from Status.
//
// Deprecated: use Status.
func (t Task) Completed() bool { return t.Status == StatusCompleted }

func (t Task) IsDraft() bool { return t.ID == 0 }

// ServerTask is the task as the remote service reads and writes it.
type ServerTask struct {
	ID          int64    `json:"id,omitempty"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Status      Status   `json:"status,omitempty"`
	Priority    Priority `json:"priority,omitempty"`

	// Some deployments echo the UI field name back.
	Title string `json:"title,omitempty"`
	// Legacy completion flag; only consulted when Status is empty.
	LegacyCompleted *bool `json:"completed,omitempty"`

	DueDate       *time.Time `json:"dueDate,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
	PomodoroCount *int       `json:"pomodoroCount,omitempty"`
}

// StatusUpdate is the body of a status-only partial update.
type StatusUpdate struct {
	Status Status `json:"status"`
}

// Patch is a partial task update. Nil fields are left untouched.
type Patch struct {
	Title         *string
	Description   *string
	Status        *Status
	Priority      *Priority
	DueDate       *time.Time
	PomodoroCount *int

	// ClearDueDate removes the due date. DueDate wins when both are set.
	ClearDueDate bool

	// Completed is the legacy completion toggle. Ignored when Status is set.
	Completed *bool
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil &&
		p.DueDate == nil && !p.ClearDueDate && p.PomodoroCount == nil && p.Completed == nil
}
