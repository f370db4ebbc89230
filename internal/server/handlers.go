package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sonaxhub/internal/functions"
)

// FunctionHandler runs the function named in the path with the JSON body
// as its parameters.
func FunctionHandler(registry *functions.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params functions.Parameters

		// Bind JSON payload
		if err := c.ShouldBindJSON(&params); err != nil {
			c.JSON(http.StatusBadRequest, functions.Response{
				Success: false,
				Message: "Invalid JSON payload",
			})
			return
		}

		resp, err := registry.Invoke(c.Request.Context(), c.Param("name"), params)
		c.JSON(functions.Status(err), resp)
	}
}

// ObjectHandler is a read-only shortcut for getContactData:
// GET /objects/{typeCode}/{id}?properties=a,b
func ObjectHandler(registry *functions.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := functions.Parameters{
			"objectTypeId": c.Param("typeCode"),
			"objectId":     c.Param("id"),
		}
		if props := c.Query("properties"); props != "" {
			params["properties"] = props
		}

		resp, err := registry.Invoke(c.Request.Context(), functions.GetContactData, params)
		c.JSON(functions.Status(err), resp)
	}
}

// HealthCheckHandler provides a simple health check endpoint
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": ServiceName,
		"version": Version,
	})
}

// IndexHandler lists the available endpoints.
func IndexHandler(registry *functions.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "running",
			"message": ServiceName,
			"version": Version,
			"endpoints": gin.H{
				"health":    "/health",
				"metrics":   "/metrics",
				"functions": "/functions/:name",
				"objects":   "/objects/:typeCode/:id",
			},
			"functions": registry.Names(),
		})
	}
}
