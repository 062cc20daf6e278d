package main

import (
	"log"
	"net/http"

	"bus_tracker/internal/broker"
	"bus_tracker/internal/config"
	"bus_tracker/internal/controllers"
	"bus_tracker/internal/feed"
	"bus_tracker/internal/logger"
	"bus_tracker/internal/middleware"
	"bus_tracker/internal/registry"
	"bus_tracker/internal/routes"
	"bus_tracker/internal/store"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	// Connect to the database
	config.InitDB()

	positions := store.NewPositionStore(config.DB)
	dailyStats := store.NewStatsStore(config.DB)
	busRegistry := registry.NewClient(config.BusServiceURL())
	gpsFeed := feed.NewClient(config.GPSFeedURL())

	publisher, err := broker.NewPublisher(config.NATSURL())
	if err != nil {
		log.Fatalf("failed to create position publisher: %v", err)
	}
	defer publisher.Close()

	liveFeed := controllers.NewLiveFeedHub()
	tracking := controllers.NewTrackingController(positions, busRegistry, publisher, liveFeed)
	busPositions := controllers.NewPositionController(positions, busRegistry, gpsFeed)
	adminStats := controllers.NewStatsController(dailyStats)

	// Setup Gin router
	r := routes.SetupRouter(tracking, busPositions, adminStats, liveFeed)

	// Recovery middleware
	r.Use(gin.Recovery())

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	addr := "0.0.0.0:" + config.ServerPort()
	log.Printf("🚀 Server running at %s", addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}
