package model

// ToUI converts a task received from the service into the canonical shape.
// Status is always set on the result.
func ToUI(s ServerTask) Task {
	title := s.Label
	if title == "" {
		title = s.Title
	}
	t := Task{
		ID:          s.ID,
		Title:       title,
		Description: s.Description,
		Status:      resolveStatus(s.Status, s.LegacyCompleted),
		Priority:    s.Priority,
		DueDate:     s.DueDate,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if s.PomodoroCount != nil {
		t.PomodoroCount = *s.PomodoroCount
	}
	return t
}

// ToServer converts a canonical task into the shape the service accepts.
// Timestamps owned by the service are not sent.
func ToServer(t Task) ServerTask {
	s := ServerTask{
		ID:          t.ID,
		Label:       t.Title,
		Description: t.Description,
		Status:      resolveStatus(t.Status, nil),
		Priority:    t.Priority,
		DueDate:     t.DueDate,
	}
	if t.PomodoroCount > 0 {
		n := t.PomodoroCount
		s.PomodoroCount = &n
	}
	return s
}

// Apply merges the set fields of p over s and returns the result.
func (p Patch) Apply(s ServerTask) ServerTask {
	out := s
	if p.Title != nil {
		out.Label = *p.Title
		out.Title = ""
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	switch {
	case p.Status != nil:
		out.Status = *p.Status
	case p.Completed != nil:
		out.Status = resolveStatus("", p.Completed)
	}
	out.LegacyCompleted = nil
	if out.Status == "" {
		out.Status = StatusPending
	}
	if p.Priority != nil {
		out.Priority = *p.Priority
	}
	switch {
	case p.DueDate != nil:
		d := *p.DueDate
		out.DueDate = &d
	case p.ClearDueDate:
		out.DueDate = nil
	}
	if p.PomodoroCount != nil {
		n := *p.PomodoroCount
		out.PomodoroCount = &n
	}
	return out
}

func resolveStatus(status Status, completed *bool) Status {
	if status != "" {
		return status
	}
	if completed != nil && *completed {
		return StatusCompleted
	}
	return StatusPending
}
