package bootstrap

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/agile-mini/agile-mini-backend/internal/api/http"
	"github.com/agile-mini/agile-mini-backend/internal/api/http/middleware"
	"github.com/agile-mini/agile-mini-backend/internal/projects"
	"github.com/agile-mini/agile-mini-backend/internal/reporting"
	"github.com/agile-mini/agile-mini-backend/internal/sprints"
	"github.com/agile-mini/agile-mini-backend/internal/tasks"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	DB          *sql.DB
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	// The API is consumed by a browser SPA on another origin.
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Authorization"},
		MaxAge:          24 * time.Hour,
	}))
	r.Use(middleware.RequestIDMiddleware())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB)
	healthHandler.RegisterRoutes(r)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to the Agile Mini API!"})
	})

	projectRepo := projects.NewRepo(dep.DB)
	sprintRepo := sprints.NewRepo(dep.DB)
	taskRepo := tasks.NewRepo(dep.DB)

	projectsGroup := r.Group("/projects")
	projects.Register(projectsGroup, projectRepo)
	sprints.RegisterProjectSubroutes(projectsGroup, sprintRepo)
	tasks.RegisterProjectSubroutes(projectsGroup, taskRepo)

	sprints.Register(r.Group("/sprints"), sprintRepo)
	tasks.Register(r.Group("/tasks"), taskRepo)

	reporting.Register(r, sprintRepo, taskRepo)

	return r
}
