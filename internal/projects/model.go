package projects

import (
	"errors"
	"time"
)

var ErrProjectNotFound = errors.New("project not found")

// DefaultStatus is a free-text label, not an enum; clients may store
// anything ("Active", "Paused", "Done", ...).
const DefaultStatus = "Active"

type Project struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type NewProject struct {
	Name        string
	Description *string
	Status      string
	StartDate   *time.Time
	EndDate     *time.Time
}

// ProjectPatch is a partial update: nil fields are left unchanged.
type ProjectPatch struct {
	Name        *string
	Description *string
	Status      *string
	StartDate   *time.Time
	EndDate     *time.Time
}

func (p Project) ApplyPatch(patch ProjectPatch) Project {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = patch.Description
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.StartDate != nil {
		p.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		p.EndDate = patch.EndDate
	}
	return p
}
