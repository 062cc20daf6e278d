package routes

import (
	"github.com/gin-gonic/gin"

	"bus_tracker/internal/controllers"
)

func TrackingRoutes(r *gin.Engine, tc *controllers.TrackingController) {
	tracking := r.Group("/tracking")
	{
		tracking.POST("/ingest", tc.Ingest)
		tracking.POST("/ingest-batch", tc.IngestBatch)
	}
}
