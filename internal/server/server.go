// Package server is the gin HTTP transport for the CRM functions.
package server

import (
	"github.com/gin-gonic/gin"

	"sonaxhub/internal/functions"
	"sonaxhub/internal/metrics"
)

const (
	ServiceName = "Sonax HubSpot Connector"
	Version     = "1.2.0"
)

// NewRouter builds the gin engine. Every route is also mounted under /api
// for serverless platforms that prefix function paths.
func NewRouter(registry *functions.Registry, m *metrics.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), accessLog(), cors())

	for _, g := range []*gin.RouterGroup{&router.RouterGroup, router.Group("/api")} {
		g.GET("/", IndexHandler(registry))
		g.GET("/health", HealthCheckHandler)
		g.POST("/functions/:name", FunctionHandler(registry))
		g.GET("/objects/:typeCode/:id", ObjectHandler(registry))
		if m != nil {
			g.GET("/metrics", gin.WrapH(m.Handler()))
		}
	}

	return router
}
