package sprints

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

const sprintColumns = `id, name, start_date, end_date, status, project_id`

// Create validates the sprint against its project's date window before
// inserting. The containment check only runs here: updates are out of scope
// and never re-check it.
func (r *Repo) Create(ctx context.Context, n NewSprint) (*Sprint, error) {
	if n.Name == "" {
		return nil, &ValidationError{Reason: "name is required"}
	}
	if n.StartDate.IsZero() || n.EndDate.IsZero() {
		return nil, &ValidationError{Reason: "start_date and end_date are required"}
	}
	if n.Status == "" {
		n.Status = DefaultStatus
	}

	if n.ProjectID != nil {
		if err := r.checkProjectBounds(ctx, *n.ProjectID, n.StartDate, n.EndDate); err != nil {
			return nil, err
		}
	}

	const q = `
insert into sprints (name, start_date, end_date, status, project_id)
values ($1, $2, $3, $4, $5)
returning ` + sprintColumns + `;
`
	var s Sprint
	err := r.db.QueryRowContext(ctx, q, n.Name, n.StartDate, n.EndDate, n.Status, n.ProjectID).
		Scan(&s.ID, &s.Name, &s.StartDate, &s.EndDate, &s.Status, &s.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("insert sprint: %w", err)
	}
	s.ComputedStatus = DeriveStatus(time.Now().UTC(), s.StartDate, s.EndDate)
	return &s, nil
}

func (r *Repo) checkProjectBounds(ctx context.Context, projectID int64, start, end time.Time) error {
	var pStart, pEnd *time.Time
	err := r.db.QueryRowContext(ctx,
		`select start_date, end_date from projects where id = $1;`, projectID).
		Scan(&pStart, &pEnd)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProjectNotFound
	}
	if err != nil {
		return fmt.Errorf("get project bounds: %w", err)
	}

	if pStart != nil && start.Before(*pStart) {
		return &ValidationError{Reason: "sprint start_date is before the project start_date"}
	}
	if pEnd != nil && end.After(*pEnd) {
		return &ValidationError{Reason: "sprint end_date is after the project end_date"}
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id int64) (*Sprint, error) {
	const q = `select ` + sprintColumns + ` from sprints where id = $1;`

	var s Sprint
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&s.ID, &s.Name, &s.StartDate, &s.EndDate, &s.Status, &s.ProjectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSprintNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get sprint: %w", err)
	}
	s.ComputedStatus = DeriveStatus(time.Now().UTC(), s.StartDate, s.EndDate)
	return &s, nil
}

func (r *Repo) List(ctx context.Context) ([]Sprint, error) {
	return r.listWhere(ctx, `select `+sprintColumns+` from sprints order by id;`)
}

func (r *Repo) ListByProject(ctx context.Context, projectID int64) ([]Sprint, error) {
	return r.listWhere(ctx,
		`select `+sprintColumns+` from sprints where project_id = $1 order by id;`, projectID)
}

func (r *Repo) listWhere(ctx context.Context, q string, args ...any) ([]Sprint, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list sprints: %w", err)
	}
	defer rows.Close()

	now := time.Now().UTC()
	out := make([]Sprint, 0, 16)
	for rows.Next() {
		var s Sprint
		if err := rows.Scan(&s.ID, &s.Name, &s.StartDate, &s.EndDate, &s.Status, &s.ProjectID); err != nil {
			return nil, fmt.Errorf("scan sprint: %w", err)
		}
		s.ComputedStatus = DeriveStatus(now, s.StartDate, s.EndDate)
		out = append(out, s)
	}
	return out, rows.Err()
}
