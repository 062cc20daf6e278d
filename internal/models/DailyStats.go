package models

import (
	"time"

	"gorm.io/gorm"
)

// DailyStats is the per-bus, per-calendar-day aggregate maintained by the
// analytics worker. Date is the UTC day in "YYYY-MM-DD" form; one row exists
// per (bus, date) and is updated additively as position events arrive.
type DailyStats struct {
	gorm.Model
	BusID                   uint       `json:"busId" gorm:"uniqueIndex:idx_bus_date,priority:1"`
	Date                    string     `json:"date" gorm:"uniqueIndex:idx_bus_date,priority:2"`
	TotalDistanceKm         float64    `json:"totalDistanceKm"`
	TotalRunningTimeMinutes float64    `json:"totalRunningTimeMinutes"`
	AverageSpeedKmh         float64    `json:"averageSpeedKmh"`
	PredictedFuelUsedLiters float64    `json:"predictedFuelUsedLiters"`
	PositionCount           int64      `json:"positionCount"`
	MaxSpeedKmh             float64    `json:"maxSpeed"`
	MinFuelLevelPercent     *float64   `json:"minFuelLevel"`
	MaxFuelLevelPercent     *float64   `json:"maxFuelLevel"`
	LastLatitude            float64    `json:"lastLat"`
	LastLongitude           float64    `json:"lastLng"`
	LastTimestamp           *time.Time `json:"lastTimestamp"`
}
