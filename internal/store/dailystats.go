package store

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bus_tracker/internal/models"
)

// rangeLimit caps daily-stats range queries to one year of rows.
const rangeLimit = 365

// StatsStore holds the per-(bus, day) aggregate documents.
type StatsStore struct {
	db *gorm.DB
}

func NewStatsStore(db *gorm.DB) *StatsStore {
	return &StatsStore{db: db}
}

// Get returns the stats row for a bus and UTC day, or nil when no event has
// been processed for that day yet.
func (s *StatsStore) Get(busID uint, date string) (*models.DailyStats, error) {
	var stats models.DailyStats
	err := s.db.Where("bus_id = ? AND date = ?", busID, date).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Save writes the full document in a single statement. A loaded row is
// updated by primary key; a first-of-day row is inserted with an upsert
// guard on (bus_id, date) so a concurrent first writer cannot violate the
// unique index.
func (s *StatsStore) Save(stats *models.DailyStats) error {
	if stats.ID != 0 {
		return s.db.Save(stats).Error
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "bus_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"updated_at",
			"total_distance_km",
			"total_running_time_minutes",
			"average_speed_kmh",
			"predicted_fuel_used_liters",
			"position_count",
			"max_speed_kmh",
			"min_fuel_level_percent",
			"max_fuel_level_percent",
			"last_latitude",
			"last_longitude",
			"last_timestamp",
		}),
	}).Create(stats).Error
}

// Range returns stats rows within an inclusive date range (open-ended when a
// bound is empty), most recent day first, capped to a year.
func (s *StatsStore) Range(busID uint, from, to string) ([]models.DailyStats, error) {
	query := s.db.Where("bus_id = ?", busID)
	if from != "" {
		query = query.Where("date >= ?", from)
	}
	if to != "" {
		query = query.Where("date <= ?", to)
	}

	var stats []models.DailyStats
	err := query.Order("date DESC").
		Limit(rangeLimit).
		Find(&stats).Error
	return stats, err
}

// Since returns all stats rows for a bus from the given date onward, in no
// particular order. Used by the summary fold.
func (s *StatsStore) Since(busID uint, fromDate string) ([]models.DailyStats, error) {
	var stats []models.DailyStats
	err := s.db.Where("bus_id = ? AND date >= ?", busID, fromDate).
		Find(&stats).Error
	return stats, err
}
