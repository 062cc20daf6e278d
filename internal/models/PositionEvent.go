package models

import (
	"time"

	"gorm.io/gorm"
)

// PositionEvent is a single GPS fix reported by a bus tracker. Rows are
// append-only: the ingestion path creates them and nothing in this service
// updates or deletes them afterwards.
type PositionEvent struct {
	gorm.Model
	BusID            uint      `json:"busId" gorm:"index:idx_bus_timestamp,priority:1"`
	TrackerID        uint      `json:"trackerId"`
	Latitude         float64   `json:"lat"`
	Longitude        float64   `json:"lng"`
	SpeedKmh         float64   `json:"speedKmh"`
	FuelLevelPercent *float64  `json:"fuelLevelPercent"`
	Timestamp        time.Time `json:"timestamp" gorm:"index:idx_bus_timestamp,priority:2,sort:desc"`
}
