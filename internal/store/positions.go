package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"bus_tracker/internal/models"
)

// historyLimit bounds history responses; callers needing more page by
// narrowing the time range.
const historyLimit = 10000

// PositionStore is the append-only record of GPS fixes.
type PositionStore struct {
	db *gorm.DB
}

func NewPositionStore(db *gorm.DB) *PositionStore {
	return &PositionStore{db: db}
}

// Append persists a new position event.
func (s *PositionStore) Append(event *models.PositionEvent) error {
	return s.db.Create(event).Error
}

// Latest returns the most recent event for a bus, or nil when the bus has
// never reported.
func (s *PositionStore) Latest(busID uint) (*models.PositionEvent, error) {
	var event models.PositionEvent
	err := s.db.Where("bus_id = ?", busID).
		Order("timestamp DESC").
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Since returns all events for a bus at or after the given instant,
// ascending by timestamp.
func (s *PositionStore) Since(busID uint, from time.Time) ([]models.PositionEvent, error) {
	var events []models.PositionEvent
	err := s.db.Where("bus_id = ? AND timestamp >= ?", busID, from).
		Order("timestamp ASC").
		Find(&events).Error
	return events, err
}

// History returns events within an inclusive time range, open-ended when a
// bound is nil, ascending by timestamp and capped to bound response size.
func (s *PositionStore) History(busID uint, from, to *time.Time) ([]models.PositionEvent, error) {
	query := s.db.Where("bus_id = ?", busID)
	if from != nil {
		query = query.Where("timestamp >= ?", *from)
	}
	if to != nil {
		query = query.Where("timestamp <= ?", *to)
	}

	var events []models.PositionEvent
	err := query.Order("timestamp ASC").
		Limit(historyLimit).
		Find(&events).Error
	return events, err
}
