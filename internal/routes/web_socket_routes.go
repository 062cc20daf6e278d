package routes

import (
	"github.com/gin-gonic/gin"

	"bus_tracker/internal/controllers"
)

func WebSocketRoutes(r *gin.Engine, hub *controllers.LiveFeedHub) {
	r.GET("/ws/positions", hub.Handle)
}
