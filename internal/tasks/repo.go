package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"
)

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Every read joins the sprint so the delayed flag can be derived in one pass.
const taskSelect = `
select t.id, t.title, t.description, t.status, t.project, t.sprint_id,
       t.points, t.priority, t.created_at, t.started_at, t.completed_at,
       s.end_date
from tasks t
left join sprints s on s.id = t.sprint_id
`

// Filter narrows GET /tasks; all set fields are ANDed with exact matches.
type Filter struct {
	Status   *string
	Project  *string
	SprintID *int64
	Priority *string
}

func (r *Repo) Create(ctx context.Context, n NewTask) (*Task, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	if n.Status == "" {
		n.Status = StatusToDo
	}
	if n.Priority == "" {
		n.Priority = PriorityMedium
	}

	if n.SprintID != nil {
		if err := r.checkSprintBounds(ctx, *n.SprintID, n.StartedAt, n.CompletedAt); err != nil {
			return nil, err
		}
	}

	const q = `
insert into tasks (title, description, status, project, sprint_id, points, priority, created_at, started_at, completed_at)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
returning id;
`
	var id int64
	err := r.db.QueryRowContext(ctx, q,
		n.Title, n.Description, n.Status, n.Project, n.SprintID,
		n.Points, n.Priority, time.Now().UTC(), n.StartedAt, n.CompletedAt).
		Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *Repo) checkSprintBounds(ctx context.Context, sprintID int64, startedAt, completedAt *time.Time) error {
	var sStart, sEnd time.Time
	err := r.db.QueryRowContext(ctx,
		`select start_date, end_date from sprints where id = $1;`, sprintID).
		Scan(&sStart, &sEnd)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSprintNotFound
	}
	if err != nil {
		return fmt.Errorf("get sprint bounds: %w", err)
	}

	if startedAt != nil && startedAt.Before(sStart) {
		return &ValidationError{Reason: "task started_at is before the sprint start_date"}
	}
	if completedAt != nil && completedAt.After(sEnd) {
		return &ValidationError{Reason: "task completed_at is after the sprint end_date"}
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id int64) (*Task, error) {
	var (
		t         Task
		sprintEnd *time.Time
	)
	err := r.db.QueryRowContext(ctx, taskSelect+`where t.id = $1;`, id).
		Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Project, &t.SprintID,
			&t.Points, &t.Priority, &t.CreatedAt, &t.StartedAt, &t.CompletedAt, &sprintEnd)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	t.Delayed = IsDelayed(time.Now().UTC(), t.Status, sprintEnd)
	return &t, nil
}

// List applies the filter and scans rows one by one. A row that fails to scan
// is logged and skipped so one malformed record cannot take down the whole
// listing.
func (r *Repo) List(ctx context.Context, f Filter) ([]Task, error) {
	q := taskSelect + `where 1=1`
	args := make([]any, 0, 4)
	if f.Status != nil {
		args = append(args, *f.Status)
		q += fmt.Sprintf(" and t.status = $%d", len(args))
	}
	if f.Project != nil {
		args = append(args, *f.Project)
		q += fmt.Sprintf(" and t.project = $%d", len(args))
	}
	if f.SprintID != nil {
		args = append(args, *f.SprintID)
		q += fmt.Sprintf(" and t.sprint_id = $%d", len(args))
	}
	if f.Priority != nil {
		args = append(args, *f.Priority)
		q += fmt.Sprintf(" and t.priority = $%d", len(args))
	}
	q += " order by t.id;"

	return r.scanTasks(ctx, true, q, args...)
}

// ListBySprint returns every task of one sprint, for the reporting engine.
func (r *Repo) ListBySprint(ctx context.Context, sprintID int64) ([]Task, error) {
	return r.scanTasks(ctx, false, taskSelect+`where t.sprint_id = $1 order by t.id;`, sprintID)
}

// ListAssigned returns all sprint-linked tasks, for velocity.
func (r *Repo) ListAssigned(ctx context.Context) ([]Task, error) {
	return r.scanTasks(ctx, false, taskSelect+`where t.sprint_id is not null order by t.id;`)
}

// ListByProject returns tasks reached through the project's sprints.
func (r *Repo) ListByProject(ctx context.Context, projectID int64) ([]Task, error) {
	return r.scanTasks(ctx, false, taskSelect+`where s.project_id = $1 order by t.id;`, projectID)
}

func (r *Repo) scanTasks(ctx context.Context, skipBadRows bool, q string, args ...any) ([]Task, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	now := time.Now().UTC()
	out := make([]Task, 0, 16)
	for rows.Next() {
		var (
			t         Task
			sprintEnd *time.Time
		)
		err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Project, &t.SprintID,
			&t.Points, &t.Priority, &t.CreatedAt, &t.StartedAt, &t.CompletedAt, &sprintEnd)
		if err != nil {
			if skipBadRows {
				log.Printf("[tasks] skipping row %d: %v", len(out), err)
				continue
			}
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Delayed = IsDelayed(now, t.Status, sprintEnd)
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update applies a partial patch. Containment against sprint bounds is not
// re-checked here: only the create path enforces it.
func (r *Repo) Update(ctx context.Context, id int64, patch TaskPatch) (*Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	existing, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := existing.ApplyPatch(patch, time.Now().UTC())

	const q = `
update tasks
set title = $2, description = $3, status = $4, project = $5, sprint_id = $6,
    points = $7, priority = $8, started_at = $9, completed_at = $10
where id = $1;
`
	_, err = r.db.ExecContext(ctx, q,
		id, updated.Title, updated.Description, updated.Status, updated.Project,
		updated.SprintID, updated.Points, updated.Priority, updated.StartedAt, updated.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.ExecContext(ctx, `delete from tasks where id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := ct.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
