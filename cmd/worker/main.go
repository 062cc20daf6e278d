package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bus_tracker/internal/aggregator"
	"bus_tracker/internal/broker"
	"bus_tracker/internal/config"
	"bus_tracker/internal/logger"
	"bus_tracker/internal/store"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	// Connect to the database
	config.InitDB()

	subscriber, err := broker.Connect(config.NATSURL())
	if err != nil {
		log.Fatalf("failed to connect to broker: %v", err)
	}
	defer subscriber.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	messages, err := subscriber.Subscribe(ctx, broker.Topic)
	if err != nil {
		log.Fatalf("failed to subscribe to %s: %v", broker.Topic, err)
	}

	worker := aggregator.New(store.NewStatsStore(config.DB))

	log.Println("Analytics worker started")
	worker.Run(ctx, messages)
}
