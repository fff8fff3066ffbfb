package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/candidates"
	"interview-backend/internal/interview"
	"interview-backend/internal/resume"
	"interview-backend/internal/shared/config"
	"interview-backend/internal/shared/metrics"
	"interview-backend/internal/shared/server/middleware"
	"interview-backend/internal/shared/server/respond"
	"interview-backend/internal/shared/storage/object"
	localstore "interview-backend/internal/shared/storage/object/local"
)

// Deps carries the handlers the router mounts.
type Deps struct {
	Config     config.Config
	Interview  *interview.Handler
	Resume     *resume.Handler
	Candidates *candidates.Handler
	Objects    object.ObjectStore
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	deps.Resume.RegisterRoutes(api)
	deps.Interview.RegisterRoutes(api)
	deps.Candidates.RegisterRoutes(api)

	// Locally stored resumes are served back directly; S3 objects are
	// reachable through their own URLs.
	if local, ok := deps.Objects.(*localstore.Store); ok {
		r.Static("/files", local.BaseDir())
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
