package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bus_tracker/internal/apperrors"
	"bus_tracker/internal/broker"
	"bus_tracker/internal/models"
	"bus_tracker/internal/registry"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.PositionEvent{}, &models.DailyStats{}))
	return db
}

// fakeResolver is an in-memory stand-in for the external bus registry.
type fakeResolver struct {
	trackers map[string]*registry.Tracker
	devices  map[uint]string
	err      error
}

func (f *fakeResolver) ResolveDevice(deviceID string) (*registry.Tracker, error) {
	if f.err != nil {
		return nil, f.err
	}
	tracker, ok := f.trackers[deviceID]
	if !ok {
		return nil, apperrors.Resolution("no tracker registered for device %q", deviceID)
	}
	return tracker, nil
}

func (f *fakeResolver) DeviceForBus(busID uint) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	deviceID, ok := f.devices[busID]
	if !ok {
		return "", apperrors.Resolution("no tracker registered for bus %d", busID)
	}
	return deviceID, nil
}

// fakePublisher records published messages and can simulate broker failure.
type fakePublisher struct {
	mu     sync.Mutex
	events []broker.PositionMessage
	err    error
}

func (f *fakePublisher) Publish(event broker.PositionMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	decoded := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}
