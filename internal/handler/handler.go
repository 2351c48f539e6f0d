package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/maxviazov/rotation-advisor-service/internal/service"
)

// Register mounts all public routes on the given engine.
// Accepts service layer dependencies for API endpoints.
func Register(r *gin.Engine, ready Pinger, gameSvc service.GameService, rotationSvc service.RotationService) {
	h := NewHealthHandler(ready)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	// Docs endpoints (root-level)
	RegisterDocs(r)

	api := r.Group(APIV1Prefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		NewGameHandler(gameSvc).Register(api)
		NewRotationHandler(rotationSvc).Register(api)
	}
}
