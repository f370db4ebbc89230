package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"sonaxhub/internal/app"
	"sonaxhub/internal/logging"
	"sonaxhub/internal/observability"
)

var router *gin.Engine

func init() {
	a, err := app.Load()
	if err != nil {
		logging.Op().Error("failed to load configuration", "error", err)
		router = unavailableRouter(err)
		return
	}
	if err := a.InitTelemetry(context.Background()); err != nil {
		logging.Op().Warn("tracing disabled", "error", err)
	}

	// Build the router ONCE per cold start
	router = a.Router()
	logging.Op().Info("routes configured")
}

// unavailableRouter answers every request with the configuration error so
// a bad deploy fails loudly instead of panicking at cold start.
func unavailableRouter(err error) *gin.Engine {
	r := gin.New()
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": "service misconfigured: " + err.Error(),
		})
	})
	return r
}

// Handler is the Vercel serverless function entry point
func Handler(w http.ResponseWriter, r *http.Request) {
	router.ServeHTTP(w, r)
	if err := observability.ForceFlush(r.Context()); err != nil {
		logging.Op().Warn("flush spans", "error", err)
	}
}
