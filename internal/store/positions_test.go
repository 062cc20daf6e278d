package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus_tracker/internal/models"
)

func fix(busID uint, at time.Time, lat, lng float64) *models.PositionEvent {
	return &models.PositionEvent{
		BusID:     busID,
		TrackerID: 1,
		Latitude:  lat,
		Longitude: lng,
		SpeedKmh:  20,
		Timestamp: at,
	}
}

func TestPositionStoreLatest(t *testing.T) {
	s := NewPositionStore(newTestDB(t))
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

	require.NoError(t, s.Append(fix(1, base, 22.30, 91.80)))
	require.NoError(t, s.Append(fix(1, base.Add(5*time.Minute), 22.31, 91.81)))
	require.NoError(t, s.Append(fix(2, base.Add(10*time.Minute), 0, 0)))

	latest, err := s.Latest(1)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 22.31, latest.Latitude)
	assert.True(t, latest.Timestamp.Equal(base.Add(5*time.Minute)))
}

func TestPositionStoreLatestUnknownBus(t *testing.T) {
	s := NewPositionStore(newTestDB(t))

	latest, err := s.Latest(99)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestPositionStoreSinceAscending(t *testing.T) {
	s := NewPositionStore(newTestDB(t))
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

	// Inserted out of order; reads must order by timestamp, not storage.
	require.NoError(t, s.Append(fix(1, base.Add(10*time.Minute), 22.32, 91.82)))
	require.NoError(t, s.Append(fix(1, base, 22.30, 91.80)))
	require.NoError(t, s.Append(fix(1, base.Add(-time.Hour), 22.29, 91.79)))

	events, err := s.Since(1, base)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].Timestamp.Before(events[1].Timestamp))
	assert.Equal(t, 22.30, events[0].Latitude)
}

func TestPositionStoreHistoryBounds(t *testing.T) {
	s := NewPositionStore(newTestDB(t))
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(fix(1, base.Add(time.Duration(i)*time.Minute), 22.30, 91.80)))
	}

	from := base.Add(1 * time.Minute)
	to := base.Add(3 * time.Minute)

	events, err := s.History(1, &from, &to)
	require.NoError(t, err)
	require.Len(t, events, 3) // bounds are inclusive

	open, err := s.History(1, nil, nil)
	require.NoError(t, err)
	assert.Len(t, open, 5)

	fromOnly, err := s.History(1, &from, nil)
	require.NoError(t, err)
	assert.Len(t, fromOnly, 4)
}

func TestPositionStoreHistoryIsPureRead(t *testing.T) {
	s := NewPositionStore(newTestDB(t))
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	require.NoError(t, s.Append(fix(1, base, 22.30, 91.80)))
	require.NoError(t, s.Append(fix(1, base.Add(time.Minute), 22.31, 91.81)))

	first, err := s.History(1, nil, nil)
	require.NoError(t, err)
	second, err := s.History(1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
