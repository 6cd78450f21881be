package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPriority = errors.New("invalid priority")
)

// ParseStatus normalizes user input into a Status.
// Accepts the wire values plus a few aliases (in_progress, todo, doing, done).
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "todo":
		return StatusPending, nil
	case "in-progress", "in_progress", "inprogress", "doing":
		return StatusInProgress, nil
	case "completed", "complete", "done":
		return StatusCompleted, nil
	case "cancelled", "canceled":
		return StatusCancelled, nil
	case "":
		return "", fmt.Errorf("%w: empty", ErrInvalidStatus)
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsEndState reports whether no further work is expected on a task.
func (s Status) IsEndState() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Next returns the following status in display order, wrapping around.
func (s Status) Next() Status {
	for i, v := range Statuses {
		if v == s {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return StatusPending
}

func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, nil
	case "medium", "med", "":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
}

// Filter narrows a task list to one status. FilterAll keeps every task.
type Filter string

const FilterAll Filter = "all"

// Filters lists the filter cycle used by interactive views.
var Filters = []Filter{FilterAll, Filter(StatusPending), Filter(StatusInProgress), Filter(StatusCompleted), Filter(StatusCancelled)}

func ParseFilter(s string) (Filter, error) {
	if t := strings.ToLower(strings.TrimSpace(s)); t == "" || t == string(FilterAll) {
		return FilterAll, nil
	}
	st, err := ParseStatus(s)
	if err != nil {
		return "", err
	}
	return Filter(st), nil
}

// Match reports whether t passes the filter.
func (f Filter) Match(t Task) bool {
	return f == FilterAll || f == "" || Status(f) == t.Status
}

func (f Filter) Next() Filter {
	for i, v := range Filters {
		if v == f {
			return Filters[(i+1)%len(Filters)]
		}
	}
	return FilterAll
}
