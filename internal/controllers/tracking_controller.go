package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bus_tracker/internal/apperrors"
	"bus_tracker/internal/broker"
	"bus_tracker/internal/models"
	"bus_tracker/internal/registry"
	"bus_tracker/internal/store"
)

// DeviceResolver is the slice of the external bus registry this service
// consumes: mapping device identifiers to buses and back.
type DeviceResolver interface {
	ResolveDevice(deviceID string) (*registry.Tracker, error)
	DeviceForBus(busID uint) (string, error)
}

// EventPublisher pushes persisted position events onto the durable channel.
type EventPublisher interface {
	Publish(event broker.PositionMessage) error
}

// TrackingController handles GPS ingestion from the trackers.
type TrackingController struct {
	positions *store.PositionStore
	resolver  DeviceResolver
	publisher EventPublisher
	live      *LiveFeedHub
}

func NewTrackingController(positions *store.PositionStore, resolver DeviceResolver, publisher EventPublisher, live *LiveFeedHub) *TrackingController {
	return &TrackingController{
		positions: positions,
		resolver:  resolver,
		publisher: publisher,
		live:      live,
	}
}

type ingestInput struct {
	TrackerIP        string   `json:"trackerIp"`
	DeviceIdentifier string   `json:"deviceIdentifier"`
	Lat              *float64 `json:"lat"`
	Lng              *float64 `json:"lng"`
	SpeedKmh         *float64 `json:"speedKmh"`
	FuelLevelPercent *float64 `json:"fuelLevelPercent"`
}

// device returns whichever identifier the tracker supplied.
func (in *ingestInput) device() string {
	if in.TrackerIP != "" {
		return in.TrackerIP
	}
	return in.DeviceIdentifier
}

// Ingest accepts a single GPS fix from a tracker.
func (tc *TrackingController) Ingest(c *gin.Context) {
	var input ingestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ingest payload: " + err.Error()})
		return
	}

	event, err := tc.ingestOne(&input)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Position ingested",
		"position": gin.H{
			"id":        event.ID,
			"busId":     event.BusID,
			"lat":       event.Latitude,
			"lng":       event.Longitude,
			"timestamp": event.Timestamp,
		},
	})
}

// IngestBatch accepts an array of fixes and returns a per-item result list;
// one bad fix does not block the others and there is no batch transaction.
func (tc *TrackingController) IngestBatch(c *gin.Context) {
	var input struct {
		Positions []ingestInput `json:"positions"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || len(input.Positions) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "positions array is required"})
		return
	}

	results := make([]gin.H, 0, len(input.Positions))
	for i := range input.Positions {
		pos := &input.Positions[i]
		event, err := tc.ingestOne(pos)
		if err != nil {
			results = append(results, gin.H{"error": err.Error(), "trackerIp": pos.device()})
			continue
		}
		results = append(results, gin.H{"success": true, "busId": event.BusID})
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ingestOne validates, resolves, persists and publishes a single fix. An
// unresolved fix is never persisted; a persisted fix whose publication fails
// stays persisted (the store is the durable record, aggregation may lag).
func (tc *TrackingController) ingestOne(input *ingestInput) (*models.PositionEvent, error) {
	if input.device() == "" || input.Lat == nil || input.Lng == nil {
		return nil, apperrors.Validation("trackerIp, lat, and lng are required")
	}

	tracker, err := tc.resolver.ResolveDevice(input.device())
	if err != nil {
		return nil, err
	}
	if tracker.BusID == 0 {
		return nil, apperrors.Validation("tracker not associated with any bus")
	}

	event := &models.PositionEvent{
		BusID:            tracker.BusID,
		TrackerID:        tracker.ID,
		Latitude:         *input.Lat,
		Longitude:        *input.Lng,
		FuelLevelPercent: input.FuelLevelPercent,
		// Server-assigned: ingestion time, not device time.
		Timestamp: time.Now().UTC(),
	}
	if input.SpeedKmh != nil {
		event.SpeedKmh = *input.SpeedKmh
	}

	if err := tc.positions.Append(event); err != nil {
		return nil, err
	}

	msg := broker.NewPositionMessage(event)
	if err := tc.publisher.Publish(msg); err != nil {
		// The stored event remains the durable record; aggregation for
		// this fix is lost or delayed, the raw fix is not.
		logrus.WithError(err).WithField("busId", event.BusID).Error("Position stored but not published")
	}

	if tc.live != nil {
		tc.live.Broadcast(msg)
	}
	return event, nil
}
