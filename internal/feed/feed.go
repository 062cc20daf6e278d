package feed

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// cacheTTL bounds how long a feed snapshot is reused before an outbound
// refresh is attempted.
const cacheTTL = 5 * time.Second

// DevicePosition is one entry of the external fleet-tracking feed. The feed
// reports position only; speed and fuel level are not part of it.
type DevicePosition struct {
	DeviceID      string  `json:"device_id"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	LastTimestamp string  `json:"last_ts"`
}

// Client polls the external GPS feed and caches the last snapshot.
// Staleness is acceptable: a refresh failure silently reuses the previous
// snapshot so transient upstream errors never surface as hard failures.
type Client struct {
	url        string
	httpClient *http.Client
	now        func() time.Time

	mu        sync.Mutex
	snapshot  []DevicePosition
	lastFetch time.Time
}

func NewClient(url string) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		now:        time.Now,
	}
}

// Snapshot returns the current feed contents, refreshing the cache when it
// is older than the TTL. Read-and-possibly-refresh is a single critical
// section so concurrent viewers do not race duplicate refreshes.
func (c *Client) Snapshot() []DevicePosition {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.snapshot) > 0 && c.now().Sub(c.lastFetch) < cacheTTL {
		return c.snapshot
	}

	resp, err := c.httpClient.Get(c.url)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch GPS feed")
		return c.snapshot // stale fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logrus.WithField("status", resp.StatusCode).Error("GPS feed error")
		return c.snapshot
	}

	var data []DevicePosition
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		logrus.WithError(err).Error("Failed to decode GPS feed")
		return c.snapshot
	}

	c.snapshot = data
	c.lastFetch = c.now()
	return c.snapshot
}

// Find returns the feed entry for the given device, or nil if the feed does
// not currently list it.
func (c *Client) Find(deviceID string) *DevicePosition {
	for _, d := range c.Snapshot() {
		if d.DeviceID == deviceID {
			pos := d
			return &pos
		}
	}
	return nil
}
