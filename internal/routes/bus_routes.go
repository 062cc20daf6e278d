package routes

import (
	"github.com/gin-gonic/gin"

	"bus_tracker/internal/controllers"
)

func BusRoutes(r *gin.Engine, pc *controllers.PositionController) {
	buses := r.Group("/buses")
	{
		buses.GET("/:id/current-position", pc.CurrentPosition)
		buses.GET("/:id/today-path", pc.TodayPath)
		buses.GET("/:id/history", pc.History)
	}
}
