package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-ingestion/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/healthz", handler.HealthCheck)

	// Entity lookups require authentication
	v1 := router.Group("/v1", middleware.Auth(authCfg))
	{
		v1.GET("/teams/:team_id/persons/:distinct_id", handler.GetPerson)
		v1.GET("/teams/:team_id/groups/:group_type_index/:group_key", handler.GetGroup)
	}
}
