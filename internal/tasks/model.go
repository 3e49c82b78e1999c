package tasks

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrSprintNotFound = errors.New("sprint not found")
)

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

const (
	StatusToDo  = "To Do"
	StatusDoing = "Doing"
	StatusDone  = "Done"
)

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

var (
	validStatuses   = []string{StatusToDo, StatusDoing, StatusDone}
	validPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
)

type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      string     `json:"status"`
	Project     *string    `json:"project,omitempty"`
	SprintID    *int64     `json:"sprint_id,omitempty"`
	Points      *int64     `json:"points,omitempty"`
	Priority    string     `json:"priority"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Delayed is derived on read: the task sits in a sprint whose window has
	// closed and the task is not Done.
	Delayed bool `json:"delayed"`
}

type NewTask struct {
	Title       string
	Description *string
	Status      string
	Project     *string
	SprintID    *int64
	Points      *int64
	Priority    string
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// TaskPatch is a partial update: nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	Project     *string
	SprintID    *int64
	Points      *int64
	Priority    *string
	StartedAt   *time.Time
	CompletedAt *time.Time
}

func validateStatus(s string) error {
	for _, v := range validStatuses {
		if s == v {
			return nil
		}
	}
	return &ValidationError{Reason: fmt.Sprintf("invalid status %q, use one of %v", s, validStatuses)}
}

func validatePriority(p string) error {
	for _, v := range validPriorities {
		if p == v {
			return nil
		}
	}
	return &ValidationError{Reason: fmt.Sprintf("invalid priority %q, use one of %v", p, validPriorities)}
}

func validatePoints(p *int64) error {
	if p != nil && *p < 0 {
		return &ValidationError{Reason: "points must be non-negative"}
	}
	return nil
}

func (n NewTask) Validate() error {
	if n.Title == "" {
		return &ValidationError{Reason: "title is required"}
	}
	if err := validatePoints(n.Points); err != nil {
		return err
	}
	if n.Status != "" {
		if err := validateStatus(n.Status); err != nil {
			return err
		}
	}
	if n.Priority != "" {
		if err := validatePriority(n.Priority); err != nil {
			return err
		}
	}
	return nil
}

func (p TaskPatch) Validate() error {
	if err := validatePoints(p.Points); err != nil {
		return err
	}
	if p.Status != nil {
		if err := validateStatus(*p.Status); err != nil {
			return err
		}
	}
	if p.Priority != nil {
		if err := validatePriority(*p.Priority); err != nil {
			return err
		}
	}
	return nil
}

// ApplyPatch merges a partial update into the task. A transition into Doing
// from any other status stamps started_at with the update time, unless it is
// already set or the patch supplies one explicitly.
func (t Task) ApplyPatch(p TaskPatch, now time.Time) Task {
	if p.Status != nil && *p.Status == StatusDoing && t.Status != StatusDoing && t.StartedAt == nil {
		stamp := now
		t.StartedAt = &stamp
	}

	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Project != nil {
		t.Project = p.Project
	}
	if p.SprintID != nil {
		t.SprintID = p.SprintID
	}
	if p.Points != nil {
		t.Points = p.Points
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.StartedAt != nil {
		t.StartedAt = p.StartedAt
	}
	if p.CompletedAt != nil {
		t.CompletedAt = p.CompletedAt
	}
	return t
}

// IsDelayed reports whether an unfinished task has outlived its sprint.
func IsDelayed(now time.Time, status string, sprintEnd *time.Time) bool {
	return sprintEnd != nil && status != StatusDone && now.After(*sprintEnd)
}
