package registry

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"bus_tracker/internal/apperrors"
)

// Tracker is the registry's view of a physical GPS device and the bus it is
// installed on.
type Tracker struct {
	ID       uint   `json:"id"`
	BusID    uint   `json:"busId"`
	DeviceID string `json:"deviceId"`
}

// Client talks to the external bus/tracker registry service. The registry
// owns vehicle and tracker CRUD; this service only resolves identities
// through it.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// ResolveDevice maps a tracker's device identifier to the tracker record
// (and thereby the bus) it belongs to.
func (c *Client) ResolveDevice(deviceID string) (*Tracker, error) {
	endpoint := fmt.Sprintf("%s/trackers/by-ip/%s", c.baseURL, url.PathEscape(deviceID))
	return c.fetchTracker(endpoint, fmt.Sprintf("device %q", deviceID))
}

// DeviceForBus returns the device identifier of the tracker installed on the
// given bus.
func (c *Client) DeviceForBus(busID uint) (string, error) {
	endpoint := fmt.Sprintf("%s/trackers/by-bus/%d", c.baseURL, busID)
	tracker, err := c.fetchTracker(endpoint, fmt.Sprintf("bus %d", busID))
	if err != nil {
		return "", err
	}
	if tracker.DeviceID == "" {
		return "", apperrors.Resolution("no device ID configured for bus %d", busID)
	}
	return tracker.DeviceID, nil
}

func (c *Client) fetchTracker(endpoint, subject string) (*Tracker, error) {
	resp, err := c.httpClient.Get(endpoint)
	if err != nil {
		return nil, apperrors.Dependency(err, "bus registry")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.Resolution("no tracker registered for %s", subject)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Dependency(fmt.Errorf("status %d", resp.StatusCode), "bus registry")
	}

	var body struct {
		Tracker *Tracker `json:"tracker"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperrors.Dependency(err, "bus registry response")
	}
	if body.Tracker == nil {
		return nil, apperrors.Resolution("no tracker registered for %s", subject)
	}
	return body.Tracker, nil
}
