package tasks

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	httpapi "github.com/agile-mini/agile-mini-backend/internal/api/http"
)

type Handler struct {
	repo *Repo
}

func Register(rg gin.IRouter, repo *Repo) {
	h := &Handler{repo: repo}

	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
}

// RegisterProjectSubroutes mounts GET /projects/:id/tasks.
func RegisterProjectSubroutes(rg gin.IRouter, repo *Repo) {
	h := &Handler{repo: repo}
	rg.GET("/:id/tasks", h.listByProject)
}

type createReq struct {
	Title       string             `json:"title"`
	Description *string            `json:"description"`
	Status      string             `json:"status"`
	Project     *string            `json:"project"`
	SprintID    *int64             `json:"sprint_id"`
	Points      *int64             `json:"points"`
	Priority    string             `json:"priority"`
	StartedAt   *httpapi.Timestamp `json:"started_at"`
	CompletedAt *httpapi.Timestamp `json:"completed_at"`
}

type updateReq struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Status      *string            `json:"status"`
	Project     *string            `json:"project"`
	SprintID    *int64             `json:"sprint_id"`
	Points      *int64             `json:"points"`
	Priority    *string            `json:"priority"`
	StartedAt   *httpapi.Timestamp `json:"started_at"`
	CompletedAt *httpapi.Timestamp `json:"completed_at"`
}

func (h *Handler) list(c *gin.Context) {
	var f Filter
	if v := c.Query("status"); v != "" {
		f.Status = &v
	}
	if v := c.Query("project"); v != "" {
		f.Project = &v
	}
	if v := c.Query("priority"); v != "" {
		f.Priority = &v
	}
	if v := c.Query("sprint"); v != "" {
		sprintID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sprint filter"})
			return
		}
		f.SprintID = &sprintID
	}

	items, err := h.repo.List(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	t, err := h.repo.Create(c.Request.Context(), NewTask{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Project:     req.Project,
		SprintID:    req.SprintID,
		Points:      req.Points,
		Priority:    req.Priority,
		StartedAt:   req.StartedAt.TimePtr(),
		CompletedAt: req.CompletedAt.TimePtr(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	t, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	t, err := h.repo.Update(c.Request.Context(), id, TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Project:     req.Project,
		SprintID:    req.SprintID,
		Points:      req.Points,
		Priority:    req.Priority,
		StartedAt:   req.StartedAt.TimePtr(),
		CompletedAt: req.CompletedAt.TimePtr(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Task deleted"})
}

func (h *Handler) listByProject(c *gin.Context) {
	projectID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	items, err := h.repo.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return 0, false
	}
	return id, true
}

func respondError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Reason})
	case errors.Is(err, ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.Is(err, ErrSprintNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "sprint not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
