package projects

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	r := gin.New()
	Register(r.Group("/projects"), NewRepo(db))
	return r, mock
}

func TestCreateProjectEchoesPersistedEntity(t *testing.T) {
	r, mock := newRouter(t)

	created := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`insert into projects`).
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow(int64(11), "Agile Mini", "pm tool", "Active", nil, nil, created))

	body := `{"name": "Agile Mini", "description": "pm tool"}`
	req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var got Project
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, int64(11), got.ID)
	assert.Equal(t, "Agile Mini", got.Name)
	assert.Equal(t, "Active", got.Status)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCreateProjectRequiresName(t *testing.T) {
	r, mock := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	require.NoError(t, mock.ExpectationsWereMet(), "store must stay untouched")
}

func TestGetProjectNotFound(t *testing.T) {
	r, mock := newRouter(t)

	mock.ExpectQuery(`select .+ from projects where id`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(projectCols))

	req := httptest.NewRequest(http.MethodGet, "/projects/404", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "project not found")
}

func TestGetProjectInvalidID(t *testing.T) {
	r, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/projects/abc", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
