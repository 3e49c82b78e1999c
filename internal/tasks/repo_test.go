package tasks

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taskCols = []string{
	"id", "title", "description", "status", "project", "sprint_id",
	"points", "priority", "created_at", "started_at", "completed_at",
	"end_date",
}

func taskRow(id int64, title, status string) []driver.Value {
	return []driver.Value{id, title, nil, status, nil, nil, nil, "Medium", time.Now().UTC(), nil, nil, nil}
}

func TestRepoCreateRejectsInvalidPayloadBeforeAnyStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepo(db)

	_, err = repo.Create(context.Background(), NewTask{Title: "t", Points: int64Ptr(-1)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = repo.Create(context.Background(), NewTask{Title: "t", Priority: "Urgent"})
	require.ErrorAs(t, err, &verr)

	// the store was never touched
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoCreateUnknownSprint(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`select start_date, end_date from sprints`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"start_date", "end_date"}))

	repo := NewRepo(db)
	_, err = repo.Create(context.Background(), NewTask{Title: "t", SprintID: int64Ptr(5)})
	assert.ErrorIs(t, err, ErrSprintNotFound)
}

func TestRepoCreateChecksSprintContainment(t *testing.T) {
	sprintStart := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	sprintEnd := time.Date(2024, 1, 24, 0, 0, 0, 0, time.UTC)

	t.Run("started_at before sprint start", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`select start_date, end_date from sprints`).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"start_date", "end_date"}).
				AddRow(sprintStart, sprintEnd))

		repo := NewRepo(db)
		early := sprintStart.Add(-time.Hour)
		_, err = repo.Create(context.Background(), NewTask{
			Title: "t", SprintID: int64Ptr(5), StartedAt: &early,
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Reason, "started_at")
	})

	t.Run("completed_at after sprint end", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`select start_date, end_date from sprints`).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"start_date", "end_date"}).
				AddRow(sprintStart, sprintEnd))

		repo := NewRepo(db)
		late := sprintEnd.Add(time.Hour)
		_, err = repo.Create(context.Background(), NewTask{
			Title: "t", SprintID: int64Ptr(5), CompletedAt: &late,
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Reason, "completed_at")
	})
}

func TestRepoListSkipsMalformedRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(taskCols).
		AddRow(taskRow(1, "good one", StatusToDo)...).
		AddRow(int64(2), "broken", nil, StatusToDo, nil, nil, nil, "Medium", "not-a-timestamp", nil, nil, nil).
		AddRow(taskRow(3, "good two", StatusDone)...)

	mock.ExpectQuery(`select t\.id`).WillReturnRows(rows)

	repo := NewRepo(db)
	got, err := repo.List(context.Background(), Filter{})
	require.NoError(t, err)

	// the malformed row is dropped, the rest of the listing survives
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
}

func TestRepoListAppliesFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`and t\.status = \$1 and t\.priority = \$2`).
		WithArgs(StatusDoing, PriorityHigh).
		WillReturnRows(sqlmock.NewRows(taskCols).AddRow(taskRow(9, "filtered", StatusDoing)...))

	repo := NewRepo(db)
	got, err := repo.List(context.Background(), Filter{
		Status:   strPtr(StatusDoing),
		Priority: strPtr(PriorityHigh),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(9), got[0].ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoUpdateStampsStartedAtOnFirstDoing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	// current row: To Do, no started_at
	mock.ExpectQuery(`select t\.id`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(taskCols).
			AddRow(int64(4), "task", nil, StatusToDo, nil, nil, nil, "Medium", created, nil, nil, nil))

	mock.ExpectExec(`update tasks`).
		WithArgs(int64(4), "task", nil, StatusDoing, nil, nil, nil, "Medium", sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`select t\.id`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(taskCols).
			AddRow(int64(4), "task", nil, StatusDoing, nil, nil, nil, "Medium", created, time.Now().UTC(), nil, nil))

	repo := NewRepo(db)
	got, err := repo.Update(context.Background(), 4, TaskPatch{Status: strPtr(StatusDoing)})
	require.NoError(t, err)
	assert.Equal(t, StatusDoing, got.Status)
	assert.NotNil(t, got.StartedAt)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoDeleteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`delete from tasks`).
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewRepo(db)
	err = repo.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
