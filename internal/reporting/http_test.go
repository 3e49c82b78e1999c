package reporting

import (
	"database/sql/driver"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agile-mini/agile-mini-backend/internal/sprints"
	"github.com/agile-mini/agile-mini-backend/internal/tasks"
)

var sprintCols = []string{"id", "name", "start_date", "end_date", "status", "project_id"}

var taskCols = []string{
	"id", "title", "description", "status", "project", "sprint_id",
	"points", "priority", "created_at", "started_at", "completed_at",
	"end_date",
}

func newRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	r := gin.New()
	Register(r, sprints.NewRepo(db), tasks.NewRepo(db))
	return r, mock
}

func TestBurndownUnknownSprintIs404(t *testing.T) {
	r, mock := newRouter(t)

	mock.ExpectQuery(`select .+ from sprints where id`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(sprintCols))

	req := httptest.NewRequest(http.MethodGet, "/burndown/99", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "sprint not found")
}

func TestBurndownEndToEnd(t *testing.T) {
	r, mock := newRouter(t)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	completed := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`select .+ from sprints where id`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(sprintCols).
			AddRow(int64(1), "Sprint 1", start, end, "Active", nil))

	mock.ExpectQuery(`select t\.id`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(taskCols).
			AddRow([]driver.Value{int64(1), "only task", nil, "Done", nil, int64(1),
				nil, "Medium", start, nil, completed, end}...))

	req := httptest.NewRequest(http.MethodGet, "/burndown/1", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var got []BurndownPoint
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].RemainingTasks)
	assert.Equal(t, 1, got[1].RemainingTasks, "still remaining on its completion day")
	assert.Equal(t, 0, got[2].RemainingTasks)
}

func TestLeadtimeEmptySprintReturnsNulls(t *testing.T) {
	r, mock := newRouter(t)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`select .+ from sprints where id`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(sprintCols).
			AddRow(int64(2), "Empty", start, end, "Active", nil))

	mock.ExpectQuery(`select t\.id`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(taskCols))

	req := httptest.NewRequest(http.MethodGet, "/leadtime/sprint/2", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var got map[string]*float64
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Nil(t, got["lead_time_avg"])
	assert.Nil(t, got["cycle_time_avg"])
	assert.Nil(t, got["lead_time_median"])
	assert.Nil(t, got["cycle_time_median"])
}

func TestVelocityEndToEnd(t *testing.T) {
	r, mock := newRouter(t)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)
	done := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`select .+ from sprints order by id`).
		WillReturnRows(sqlmock.NewRows(sprintCols).
			AddRow(int64(1), "Sprint 1", start, end, "Active", nil).
			AddRow(int64(2), "Sprint 2", start, end, "Active", nil))

	mock.ExpectQuery(`select t\.id`).
		WillReturnRows(sqlmock.NewRows(taskCols).
			AddRow([]driver.Value{int64(1), "a", nil, "Done", nil, int64(1), int64(3), "Medium", start, nil, done, end}...).
			AddRow([]driver.Value{int64(2), "b", nil, "Done", nil, int64(1), int64(5), "Medium", start, nil, done, end}...).
			AddRow([]driver.Value{int64(3), "c", nil, "To Do", nil, int64(2), int64(8), "Medium", start, nil, nil, end}...))

	req := httptest.NewRequest(http.MethodGet, "/velocity", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var got []VelocityPoint
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1, "sprint 2 has no completed task and is omitted")
	assert.Equal(t, VelocityPoint{SprintID: 1, SprintName: "Sprint 1", CompletedTasks: 2, CompletedPoints: 8}, got[0])
}
