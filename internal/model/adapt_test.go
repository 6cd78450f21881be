package model

import (
	"testing"
	"time"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestToUI_LegacyCompletedFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   ServerTask
		want Status
	}{
		{name: "completed true", in: ServerTask{ID: 1, Label: "a", LegacyCompleted: boolPtr(true)}, want: StatusCompleted},
		{name: "completed false", in: ServerTask{ID: 1, Label: "a", LegacyCompleted: boolPtr(false)}, want: StatusPending},
		{name: "completed absent", in: ServerTask{ID: 1, Label: "a"}, want: StatusPending},
		{name: "status wins over completed", in: ServerTask{ID: 1, Label: "a", Status: StatusCancelled, LegacyCompleted: boolPtr(true)}, want: StatusCancelled},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ToUI(tt.in)
			if got.Status != tt.want {
				t.Fatalf("status: got %q want %q", got.Status, tt.want)
			}
			if got.Completed() != (tt.want == StatusCompleted) {
				t.Fatalf("completed flag out of sync with status %q", got.Status)
			}
		})
	}
}

func TestAdapterRoundTripPreservesStatusAndLabel(t *testing.T) {
	t.Parallel()

	for _, st := range Statuses {
		in := ServerTask{ID: 9, Label: "Write report", Description: "q3", Status: st, Priority: PriorityHigh}
		out := ToServer(ToUI(in))
		if out.Status != st {
			t.Fatalf("status %q: round trip gave %q", st, out.Status)
		}
		if out.Label != in.Label {
			t.Fatalf("label: got %q want %q", out.Label, in.Label)
		}
		if out.Priority != PriorityHigh {
			t.Fatalf("priority not carried: %q", out.Priority)
		}
		if out.ID != 9 {
			t.Fatalf("id not carried: %d", out.ID)
		}
	}
}

func TestToUI_TitleFallsBackToEchoedTitle(t *testing.T) {
	t.Parallel()

	got := ToUI(ServerTask{ID: 3, Title: "echo", Status: StatusPending})
	if got.Title != "echo" {
		t.Fatalf("expected echoed title; got %q", got.Title)
	}
}

func TestToServer_DefaultsStatus(t *testing.T) {
	t.Parallel()

	got := ToServer(Task{Title: "draft"})
	if got.Status != StatusPending {
		t.Fatalf("expected pending; got %q", got.Status)
	}
	if got.Label != "draft" {
		t.Fatalf("expected label from title; got %q", got.Label)
	}
	if got.PomodoroCount != nil {
		t.Fatalf("expected no pomodoro count on a fresh draft")
	}
}

func TestPatchApply_LeavesUnsetFields(t *testing.T) {
	t.Parallel()

	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cur := ServerTask{ID: 4, Label: "old", Description: "keep me", Status: StatusInProgress, Priority: PriorityLow, DueDate: &due}

	got := Patch{Title: strPtr("new")}.Apply(cur)
	if got.Label != "new" {
		t.Fatalf("label: %q", got.Label)
	}
	if got.Description != "keep me" || got.Status != StatusInProgress || got.Priority != PriorityLow {
		t.Fatalf("unset fields clobbered: %+v", got)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Fatalf("due date lost: %v", got.DueDate)
	}
	if got.ID != 4 {
		t.Fatalf("id lost: %d", got.ID)
	}
}

func TestPatchApply_LegacyCompletedOnlyWithoutStatus(t *testing.T) {
	t.Parallel()

	cur := ServerTask{ID: 1, Label: "x", Status: StatusPending}
	if got := (Patch{Completed: boolPtr(true)}).Apply(cur); got.Status != StatusCompleted {
		t.Fatalf("expected completed; got %q", got.Status)
	}
	st := StatusCancelled
	if got := (Patch{Completed: boolPtr(true), Status: &st}).Apply(cur); got.Status != StatusCancelled {
		t.Fatalf("explicit status must win; got %q", got.Status)
	}
}

func TestPatchApply_ClearDueDate(t *testing.T) {
	t.Parallel()

	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cur := ServerTask{ID: 2, Label: "x", Status: StatusPending, DueDate: &due}

	p := Patch{ClearDueDate: true}
	if p.IsEmpty() {
		t.Fatalf("clearing the due date is a change")
	}
	if got := p.Apply(cur); got.DueDate != nil {
		t.Fatalf("expected due date cleared; got %v", got.DueDate)
	}

	later := due.AddDate(0, 1, 0)
	if got := (Patch{ClearDueDate: true, DueDate: &later}).Apply(cur); got.DueDate == nil || !got.DueDate.Equal(later) {
		t.Fatalf("explicit due date must win; got %v", got.DueDate)
	}
}
