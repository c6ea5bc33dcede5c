package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

var serviceIndex = IndexResponse{
	Status:  "success",
	Message: "Recipe API is running",
	Endpoints: []EndpointDoc{
		{Method: http.MethodGet, Path: "/api/recipes", Description: "All recipes by rating, paginated", Example: "/api/recipes?page=1&limit=10"},
		{Method: http.MethodGet, Path: "/api/recipes/search", Description: "Recipes matching every filter, paginated", Example: "/api/recipes/search?cuisine=Italian&rating=>4.5"},
		{Method: http.MethodGet, Path: "/health", Description: "Readiness probe"},
		{Method: http.MethodGet, Path: "/metrics", Description: "Prometheus metrics"},
	},
	FilterExamples: map[string]string{
		"calories":   "/api/recipes/search?calories=<400",
		"title":      "/api/recipes/search?title=pasta",
		"cuisine":    "/api/recipes/search?cuisine=Italian",
		"serves":     "/api/recipes/search?serves=4",
		"total_time": "/api/recipes/search?total_time=<30",
		"rating":     "/api/recipes/search?rating=>4.5",
	},
}

// Index describes the available endpoints.
func Index(c *gin.Context) {
	c.JSON(http.StatusOK, serviceIndex)
}
