package reporting

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agile-mini/agile-mini-backend/internal/sprints"
	"github.com/agile-mini/agile-mini-backend/internal/tasks"
)

type Handler struct {
	sprintRepo *sprints.Repo
	taskRepo   *tasks.Repo
}

func Register(r gin.IRouter, sprintRepo *sprints.Repo, taskRepo *tasks.Repo) {
	h := &Handler{sprintRepo: sprintRepo, taskRepo: taskRepo}

	r.GET("/burndown/:sprint_id", h.burndown)
	r.GET("/cfd/:sprint_id", h.cfd)
	r.GET("/velocity", h.velocity)
	r.GET("/summary/sprint/:sprint_id", h.summary)
	r.GET("/leadtime/sprint/:sprint_id", h.leadtime)
}

func (h *Handler) burndown(c *gin.Context) {
	sprint, ts, ok := h.sprintWithTasks(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, Burndown(*sprint, ts))
}

func (h *Handler) cfd(c *gin.Context) {
	sprint, ts, ok := h.sprintWithTasks(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, CFD(*sprint, ts))
}

func (h *Handler) velocity(c *gin.Context) {
	sl, err := h.sprintRepo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ts, err := h.taskRepo.ListAssigned(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, Velocity(sl, ts))
}

func (h *Handler) summary(c *gin.Context) {
	_, ts, ok := h.sprintWithTasks(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, Summary(ts))
}

func (h *Handler) leadtime(c *gin.Context) {
	_, ts, ok := h.sprintWithTasks(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, LeadCycle(ts))
}

// sprintWithTasks resolves the sprint_id parameter; a missing sprint is a
// 404, never an empty report.
func (h *Handler) sprintWithTasks(c *gin.Context) (*sprints.Sprint, []tasks.Task, bool) {
	sprintID, err := strconv.ParseInt(c.Param("sprint_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sprint id"})
		return nil, nil, false
	}

	sprint, err := h.sprintRepo.Get(c.Request.Context(), sprintID)
	if errors.Is(err, sprints.ErrSprintNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "sprint not found"})
		return nil, nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, nil, false
	}

	ts, err := h.taskRepo.ListBySprint(c.Request.Context(), sprintID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	return sprint, ts, true
}
