package routes

import (
	ginlogger "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"bus_tracker/internal/controllers"
)

func SetupRouter(
	tracking *controllers.TrackingController,
	positions *controllers.PositionController,
	stats *controllers.StatsController,
	live *controllers.LiveFeedHub,
) *gin.Engine {
	r := gin.New()

	// Request logging middleware
	r.Use(ginlogger.SetLogger())

	TrackingRoutes(r, tracking)
	BusRoutes(r, positions)
	AdminRoutes(r, stats)
	WebSocketRoutes(r, live)

	return r
}
