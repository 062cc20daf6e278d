package broker

import (
	"encoding/json"
	"time"

	"bus_tracker/internal/models"
)

// Topic is the durable subject position events are published on. The
// analytics worker binds a durable consumer to it, so ingestion and
// aggregation can start in either order.
const Topic = "bus_position_events"

// PositionMessage is the wire form of a position event on the channel.
// Field names match the stored event's JSON so either side can evolve
// independently of GORM column naming.
type PositionMessage struct {
	BusID            uint      `json:"busId"`
	TrackerID        uint      `json:"trackerId"`
	Lat              float64   `json:"lat"`
	Lng              float64   `json:"lng"`
	SpeedKmh         float64   `json:"speedKmh"`
	FuelLevelPercent *float64  `json:"fuelLevelPercent"`
	Timestamp        time.Time `json:"timestamp"`
}

// NewPositionMessage builds the channel message for a persisted event.
func NewPositionMessage(event *models.PositionEvent) PositionMessage {
	return PositionMessage{
		BusID:            event.BusID,
		TrackerID:        event.TrackerID,
		Lat:              event.Latitude,
		Lng:              event.Longitude,
		SpeedKmh:         event.SpeedKmh,
		FuelLevelPercent: event.FuelLevelPercent,
		Timestamp:        event.Timestamp,
	}
}

// DecodePositionMessage parses a channel payload.
func DecodePositionMessage(payload []byte) (PositionMessage, error) {
	var msg PositionMessage
	err := json.Unmarshal(payload, &msg)
	return msg, err
}
