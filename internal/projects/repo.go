package projects

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

const projectColumns = `id, name, description, status, start_date, end_date, created_at`

func (r *Repo) Create(ctx context.Context, n NewProject) (*Project, error) {
	if n.Name == "" {
		return nil, fmt.Errorf("name required")
	}
	if n.Status == "" {
		n.Status = DefaultStatus
	}

	const q = `
insert into projects (name, description, status, start_date, end_date, created_at)
values ($1, $2, $3, $4, $5, $6)
returning ` + projectColumns + `;
`
	var p Project
	err := r.db.QueryRowContext(ctx, q,
		n.Name, n.Description, n.Status, n.StartDate, n.EndDate, time.Now().UTC()).
		Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.StartDate, &p.EndDate, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return &p, nil
}

func (r *Repo) List(ctx context.Context) ([]Project, error) {
	const q = `select ` + projectColumns + ` from projects order by id;`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]Project, 0, 16)
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.StartDate, &p.EndDate, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id int64) (*Project, error) {
	const q = `select ` + projectColumns + ` from projects where id = $1;`

	var p Project
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.StartDate, &p.EndDate, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

func (r *Repo) Update(ctx context.Context, id int64, patch ProjectPatch) (*Project, error) {
	existing, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := existing.ApplyPatch(patch)

	const q = `
update projects
set name = $2, description = $3, status = $4, start_date = $5, end_date = $6
where id = $1
returning ` + projectColumns + `;
`
	var p Project
	err = r.db.QueryRowContext(ctx, q,
		id, updated.Name, updated.Description, updated.Status, updated.StartDate, updated.EndDate).
		Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.StartDate, &p.EndDate, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return &p, nil
}

// Delete removes the project only. Owned sprints are orphaned, not
// cascade-deleted: the schema sets sprints.project_id to NULL.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.ExecContext(ctx, `delete from projects where id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	affected, err := ct.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProjectNotFound
	}
	return nil
}
