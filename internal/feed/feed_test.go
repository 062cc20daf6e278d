package feed

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedServer serves a mutable device list and counts upstream hits.
type feedServer struct {
	mu      sync.Mutex
	devices []DevicePosition
	hits    int
	fail    bool
}

func (f *feedServer) handler(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits++
	if f.fail {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(f.devices)
}

func (f *feedServer) set(devices []DevicePosition, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.devices = devices
	f.fail = fail
}

func (f *feedServer) hitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits
}

func newTestClient(t *testing.T, upstream *feedServer) (*Client, *time.Time) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(upstream.handler))
	t.Cleanup(srv.Close)

	clock := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	client := NewClient(srv.URL)
	client.now = func() time.Time { return clock }
	return client, &clock
}

func TestSnapshotReusedWithinTTL(t *testing.T) {
	upstream := &feedServer{devices: []DevicePosition{{DeviceID: "bus01", Lat: 22.30, Lon: 91.80}}}
	client, clock := newTestClient(t, upstream)

	first := client.Snapshot()
	require.Len(t, first, 1)
	assert.Equal(t, 22.30, first[0].Lat)

	// Upstream changes, but the cache is younger than the TTL: the stale
	// snapshot is returned and no second fetch happens.
	upstream.set([]DevicePosition{{DeviceID: "bus01", Lat: 23.00, Lon: 92.00}}, false)
	*clock = clock.Add(2 * time.Second)

	second := client.Snapshot()
	assert.Equal(t, 22.30, second[0].Lat)
	assert.Equal(t, 1, upstream.hitCount())
}

func TestSnapshotRefreshesAfterTTL(t *testing.T) {
	upstream := &feedServer{devices: []DevicePosition{{DeviceID: "bus01", Lat: 22.30, Lon: 91.80}}}
	client, clock := newTestClient(t, upstream)

	client.Snapshot()
	upstream.set([]DevicePosition{{DeviceID: "bus01", Lat: 23.00, Lon: 92.00}}, false)
	*clock = clock.Add(6 * time.Second)

	refreshed := client.Snapshot()
	require.Len(t, refreshed, 1)
	assert.Equal(t, 23.00, refreshed[0].Lat)
	assert.Equal(t, 2, upstream.hitCount())
}

func TestSnapshotStaleFallbackOnUpstreamFailure(t *testing.T) {
	upstream := &feedServer{devices: []DevicePosition{{DeviceID: "bus01", Lat: 22.30, Lon: 91.80}}}
	client, clock := newTestClient(t, upstream)

	client.Snapshot()
	upstream.set(nil, true)
	*clock = clock.Add(10 * time.Second)

	stale := client.Snapshot()
	require.Len(t, stale, 1)
	assert.Equal(t, "bus01", stale[0].DeviceID)
}

func TestSnapshotEmptyWhenNeverFetched(t *testing.T) {
	upstream := &feedServer{fail: true}
	client, _ := newTestClient(t, upstream)

	assert.Empty(t, client.Snapshot())
}

func TestFind(t *testing.T) {
	upstream := &feedServer{devices: []DevicePosition{
		{DeviceID: "bus01", Lat: 22.30, Lon: 91.80, LastTimestamp: "2026-03-14T08:00:00Z"},
		{DeviceID: "bus02", Lat: 22.40, Lon: 91.90},
	}}
	client, _ := newTestClient(t, upstream)

	found := client.Find("bus02")
	require.NotNil(t, found)
	assert.Equal(t, 22.40, found.Lat)

	assert.Nil(t, client.Find("bus99"))
}
