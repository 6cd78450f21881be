package store

import (
	"slices"

	"taskdeck/internal/model"
)

// Snapshot is a frozen view of the store state.
type Snapshot struct {
	st state
}

// Tasks returns a copy of every loaded task in service order.
func (s Snapshot) Tasks() []model.Task { return slices.Clone(s.st.tasks) }

// FilteredTasks returns the tasks that match the current filter, keeping
// their relative order.
func (s Snapshot) FilteredTasks() []model.Task {
	if s.st.filter == model.FilterAll || s.st.filter == "" {
		return s.Tasks()
	}
	out := make([]model.Task, 0, len(s.st.tasks))
	for _, t := range s.st.tasks {
		if s.st.filter.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// SelectedTask returns the selected task, or false when nothing is selected
// or the selected id is not loaded.
func (s Snapshot) SelectedTask() (model.Task, bool) {
	if s.st.selectedTaskID == 0 {
		return model.Task{}, false
	}
	i := indexOf(s.st.tasks, s.st.selectedTaskID)
	if i < 0 {
		return model.Task{}, false
	}
	return s.st.tasks[i], true
}

func (s Snapshot) SelectedTaskID() int64 { return s.st.selectedTaskID }
func (s Snapshot) Loading() bool         { return s.st.loading }
func (s Snapshot) Error() string         { return s.st.err }
func (s Snapshot) Filter() model.Filter  { return s.st.filter }
