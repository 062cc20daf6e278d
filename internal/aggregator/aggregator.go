package aggregator

import (
	"context"
	"math"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/sirupsen/logrus"

	"bus_tracker/internal/apperrors"
	"bus_tracker/internal/broker"
	"bus_tracker/internal/geo"
	"bus_tracker/internal/models"
	"bus_tracker/internal/store"
)

const (
	// fuelConsumptionRate is the predicted consumption of a bus in liters
	// per km (35 L / 100 km).
	fuelConsumptionRate = 0.35

	// maxGapMinutes caps the running time credited for a single interval,
	// bounding the effect of missed fixes.
	maxGapMinutes = 30.0

	// movementThresholdKm below which a zero-speed fix counts as stationary.
	movementThresholdKm = 0.01

	dateLayout = "2006-01-02"
)

// lastFix is the previously processed position of a bus, kept only to
// compute the delta for the next event. Ephemeral: rebuilt from nothing on
// restart, so the first fix after a restart contributes no distance.
type lastFix struct {
	Lat       float64
	Lng       float64
	Timestamp time.Time
	Date      string
}

// Aggregator incrementally folds position events into per-(bus, day) stats.
// It is owned by a single consumer loop; the last-fix map has exactly one
// writer and needs no lock.
type Aggregator struct {
	stats     *store.StatsStore
	lastFixes map[uint]lastFix
}

func New(stats *store.StatsStore) *Aggregator {
	return &Aggregator{
		stats:     stats,
		lastFixes: make(map[uint]lastFix),
	}
}

// Run consumes messages one at a time until the context is cancelled or the
// channel closes. Every message is acknowledged exactly once: after a
// successful stats write, or after logging a failure. A failed message is
// dropped rather than redelivered so one poisoned event cannot wedge the
// queue.
func (a *Aggregator) Run(ctx context.Context, messages <-chan *message.Message) {
	logrus.WithField("topic", broker.Topic).Info("Analytics aggregator consuming")
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			a.handle(msg)
		}
	}
}

func (a *Aggregator) handle(msg *message.Message) {
	event, err := broker.DecodePositionMessage(msg.Payload)
	if err != nil {
		logrus.WithError(err).WithField("uuid", msg.UUID).Error("Dropping undecodable position message")
		msg.Ack()
		return
	}

	if err := a.Process(event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"uuid":  msg.UUID,
			"busId": event.BusID,
		}).Error("Dropping position message after processing failure")
	}
	msg.Ack()
}

// Process applies one position event to the bus's daily stats.
func (a *Aggregator) Process(event broker.PositionMessage) error {
	date := event.Timestamp.UTC().Format(dateLayout)

	var distanceKm, runningTimeMinutes, fuelUsedLiters float64

	// A missing cache entry or a date mismatch (day rollover) resets the
	// distance basis: this event is the first fix of the day.
	last, ok := a.lastFixes[event.BusID]
	if ok && last.Date == date {
		distanceKm = geo.HaversineKm(last.Lat, last.Lng, event.Lat, event.Lng)
		elapsedMinutes := event.Timestamp.Sub(last.Timestamp).Minutes()

		// A stationary zero-speed report contributes no running time.
		if event.SpeedKmh > 0 || distanceKm > movementThresholdKm {
			runningTimeMinutes = math.Min(elapsedMinutes, maxGapMinutes)
		}

		fuelUsedLiters = distanceKm * fuelConsumptionRate
	}

	a.lastFixes[event.BusID] = lastFix{
		Lat:       event.Lat,
		Lng:       event.Lng,
		Timestamp: event.Timestamp,
		Date:      date,
	}

	stats, err := a.stats.Get(event.BusID, date)
	if err != nil {
		return apperrors.Aggregation(err, "load daily stats")
	}
	if stats == nil {
		stats = &models.DailyStats{BusID: event.BusID, Date: date}
	}

	stats.TotalDistanceKm += distanceKm
	stats.TotalRunningTimeMinutes += runningTimeMinutes
	stats.PredictedFuelUsedLiters += fuelUsedLiters
	stats.PositionCount++
	stats.MaxSpeedKmh = math.Max(stats.MaxSpeedKmh, event.SpeedKmh)

	if event.FuelLevelPercent != nil {
		level := *event.FuelLevelPercent
		if stats.MinFuelLevelPercent == nil || level < *stats.MinFuelLevelPercent {
			stats.MinFuelLevelPercent = &level
		}
		if stats.MaxFuelLevelPercent == nil || level > *stats.MaxFuelLevelPercent {
			stats.MaxFuelLevelPercent = &level
		}
	}

	timestamp := event.Timestamp
	stats.LastLatitude = event.Lat
	stats.LastLongitude = event.Lng
	stats.LastTimestamp = &timestamp

	if stats.TotalRunningTimeMinutes > 0 {
		stats.AverageSpeedKmh = stats.TotalDistanceKm / (stats.TotalRunningTimeMinutes / 60)
	} else {
		stats.AverageSpeedKmh = 0
	}

	if err := a.stats.Save(stats); err != nil {
		return apperrors.Aggregation(err, "persist daily stats")
	}

	logrus.WithFields(logrus.Fields{
		"busId":      event.BusID,
		"date":       date,
		"distanceKm": distanceKm,
		"minutes":    runningTimeMinutes,
	}).Debug("Processed position event")
	return nil
}
