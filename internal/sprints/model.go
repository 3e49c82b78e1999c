package sprints

import (
	"errors"
	"time"
)

var (
	ErrSprintNotFound  = errors.New("sprint not found")
	ErrProjectNotFound = errors.New("project not found")
)

// ValidationError carries a human-readable reason and maps to a 400 at the
// transport boundary.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Lifecycle states derived from the sprint's date window. Distinct from the
// free-text stored status label.
const (
	StatusPlanned   = "Planned"
	StatusActive    = "Active"
	StatusCompleted = "Completed"
)

const DefaultStatus = "Active"

type Sprint struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Status    string    `json:"status"`
	ProjectID *int64    `json:"project_id,omitempty"`

	// ComputedStatus is derived from the date window at read time and is the
	// value reporting date ranges key off, not the stored label.
	ComputedStatus string `json:"computed_status,omitempty"`
}

type NewSprint struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Status    string
	ProjectID *int64
}

// DeriveStatus partitions time into exactly three ranges. Both boundaries
// belong to Active: now == start and now == end are Active.
func DeriveStatus(now, start, end time.Time) string {
	switch {
	case now.Before(start):
		return StatusPlanned
	case now.After(end):
		return StatusCompleted
	default:
		return StatusActive
	}
}
