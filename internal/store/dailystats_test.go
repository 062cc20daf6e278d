package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus_tracker/internal/models"
)

func TestStatsStoreSaveCreatesThenUpdates(t *testing.T) {
	s := NewStatsStore(newTestDB(t))

	require.NoError(t, s.Save(&models.DailyStats{
		BusID:           1,
		Date:            "2026-03-14",
		TotalDistanceKm: 1.5,
		PositionCount:   1,
	}))

	stats, err := s.Get(1, "2026-03-14")
	require.NoError(t, err)
	require.NotNil(t, stats)

	stats.TotalDistanceKm += 2.5
	stats.PositionCount++
	require.NoError(t, s.Save(stats))

	reloaded, err := s.Get(1, "2026-03-14")
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.InDelta(t, 4.0, reloaded.TotalDistanceKm, 1e-9)
	assert.Equal(t, int64(2), reloaded.PositionCount)

	var count int64
	require.NoError(t, s.db.Model(&models.DailyStats{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "one row per (bus, date)")
}

func TestStatsStoreUpsertOnConflict(t *testing.T) {
	s := NewStatsStore(newTestDB(t))

	require.NoError(t, s.Save(&models.DailyStats{BusID: 1, Date: "2026-03-14", PositionCount: 1}))

	// Second writer inserting the same (bus, date) without a loaded ID must
	// not violate the unique index.
	ts := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(&models.DailyStats{
		BusID:         1,
		Date:          "2026-03-14",
		PositionCount: 5,
		LastTimestamp: &ts,
	}))

	var count int64
	require.NoError(t, s.db.Model(&models.DailyStats{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stats, err := s.Get(1, "2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.PositionCount)
}

func TestStatsStoreGetMissing(t *testing.T) {
	s := NewStatsStore(newTestDB(t))

	stats, err := s.Get(42, "2026-03-14")
	require.NoError(t, err)
	assert.Nil(t, stats)
}

func TestStatsStoreRangeDescending(t *testing.T) {
	s := NewStatsStore(newTestDB(t))
	for _, date := range []string{"2026-03-12", "2026-03-14", "2026-03-13"} {
		require.NoError(t, s.Save(&models.DailyStats{BusID: 1, Date: date}))
	}
	require.NoError(t, s.Save(&models.DailyStats{BusID: 2, Date: "2026-03-14"}))

	rows, err := s.Range(1, "", "")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2026-03-14", rows[0].Date)
	assert.Equal(t, "2026-03-12", rows[2].Date)

	bounded, err := s.Range(1, "2026-03-13", "2026-03-14")
	require.NoError(t, err)
	require.Len(t, bounded, 2)
	assert.Equal(t, "2026-03-14", bounded[0].Date)
}

func TestStatsStoreSince(t *testing.T) {
	s := NewStatsStore(newTestDB(t))
	for _, date := range []string{"2026-03-10", "2026-03-13", "2026-03-14"} {
		require.NoError(t, s.Save(&models.DailyStats{BusID: 1, Date: date}))
	}

	rows, err := s.Since(1, "2026-03-13")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
