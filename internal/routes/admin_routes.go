package routes

import (
	"github.com/gin-gonic/gin"

	"bus_tracker/internal/controllers"
	"bus_tracker/internal/middleware"
)

func AdminRoutes(r *gin.Engine, sc *controllers.StatsController) {
	admin := r.Group("admin")
	admin.Use(middleware.RequireAuthWithRole("admin"))
	{
		admin.GET("/buses/:id/daily-stats", sc.DailyStats)
		admin.GET("/buses/:id/summary", sc.Summary)
	}
}
