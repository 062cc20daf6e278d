package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"bus_tracker/internal/apperrors"
	"bus_tracker/internal/feed"
	"bus_tracker/internal/models"
	"bus_tracker/internal/store"
)

// PositionController serves the live and historical read path for bus
// positions.
type PositionController struct {
	positions *store.PositionStore
	resolver  DeviceResolver
	feed      *feed.Client
}

func NewPositionController(positions *store.PositionStore, resolver DeviceResolver, feed *feed.Client) *PositionController {
	return &PositionController{
		positions: positions,
		resolver:  resolver,
		feed:      feed,
	}
}

// CurrentPosition returns the live position from the external feed, falling
// back to the most recent stored event when the feed does not list the
// bus's device.
func (pc *PositionController) CurrentPosition(c *gin.Context) {
	busID, ok := parseBusID(c)
	if !ok {
		return
	}

	deviceID, err := pc.resolver.DeviceForBus(busID)
	if err != nil {
		writeError(c, err)
		return
	}

	if live := pc.feed.Find(deviceID); live != nil {
		// The feed carries position only; speed and fuel are not part of
		// it and are reported as zero/absent on this branch.
		c.JSON(http.StatusOK, gin.H{
			"position": gin.H{
				"busId":            busID,
				"deviceId":         live.DeviceID,
				"lat":              live.Lat,
				"lng":              live.Lon,
				"speedKmh":         0,
				"fuelLevelPercent": nil,
				"timestamp":        live.LastTimestamp,
			},
		})
		return
	}

	latest, err := pc.positions.Latest(busID)
	if err != nil {
		writeError(c, err)
		return
	}
	if latest == nil {
		writeError(c, apperrors.NotFound("no position data found for bus %d", busID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"position": gin.H{
			"busId":            busID,
			"lat":              latest.Latitude,
			"lng":              latest.Longitude,
			"speedKmh":         latest.SpeedKmh,
			"fuelLevelPercent": latest.FuelLevelPercent,
			"timestamp":        latest.Timestamp,
		},
	})
}

// TodayPath returns all fixes since the start of the current UTC day,
// oldest first, plus the path as a GeoJSON LineString.
func (pc *PositionController) TodayPath(c *gin.Context) {
	busID, ok := parseBusID(c)
	if !ok {
		return
	}

	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	events, err := pc.positions.Since(busID, startOfDay)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"busId":     busID,
		"date":      startOfDay.Format(dateLayout),
		"positions": toPathPoints(events),
		"path":      pathGeoJSON(events),
	})
}

// History returns fixes within an inclusive time range, oldest first,
// capped at 10000 rows.
func (pc *PositionController) History(c *gin.Context) {
	busID, ok := parseBusID(c)
	if !ok {
		return
	}

	from, err := parseTimeParam(c.Query("from"))
	if err != nil {
		writeError(c, err)
		return
	}
	to, err := parseTimeParam(c.Query("to"))
	if err != nil {
		writeError(c, err)
		return
	}

	events, err := pc.positions.History(busID, from, to)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"busId":     busID,
		"count":     len(events),
		"positions": toPathPoints(events),
	})
}

type pathPoint struct {
	Lat              float64   `json:"lat"`
	Lng              float64   `json:"lng"`
	SpeedKmh         float64   `json:"speedKmh"`
	FuelLevelPercent *float64  `json:"fuelLevelPercent"`
	Timestamp        time.Time `json:"timestamp"`
}

func toPathPoints(events []models.PositionEvent) []pathPoint {
	points := make([]pathPoint, 0, len(events))
	for _, e := range events {
		points = append(points, pathPoint{
			Lat:              e.Latitude,
			Lng:              e.Longitude,
			SpeedKmh:         e.SpeedKmh,
			FuelLevelPercent: e.FuelLevelPercent,
			Timestamp:        e.Timestamp,
		})
	}
	return points
}

// pathGeoJSON encodes the day's path as a GeoJSON LineString, or nil when
// there are not enough points for a line.
func pathGeoJSON(events []models.PositionEvent) json.RawMessage {
	if len(events) < 2 {
		return nil
	}
	coords := make([]geom.Coord, 0, len(events))
	for _, e := range events {
		coords = append(coords, geom.Coord{e.Longitude, e.Latitude})
	}
	line, err := geom.NewLineString(geom.XY).SetCoords(coords)
	if err != nil {
		logrus.WithError(err).Error("Failed to build path line string")
		return nil
	}
	encoded, err := geojson.Marshal(line)
	if err != nil {
		logrus.WithError(err).Error("Failed to encode path as GeoJSON")
		return nil
	}
	return encoded
}
