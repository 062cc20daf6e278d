package controllers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bus_tracker/internal/store"
)

// StatsController serves the persisted daily aggregates.
type StatsController struct {
	stats *store.StatsStore
}

func NewStatsController(stats *store.StatsStore) *StatsController {
	return &StatsController{stats: stats}
}

// DailyStats returns per-day aggregates within an inclusive date range,
// most recent first, capped at one year of rows.
func (sc *StatsController) DailyStats(c *gin.Context) {
	busID, ok := parseBusID(c)
	if !ok {
		return
	}

	rows, err := sc.stats.Range(busID, c.Query("from"), c.Query("to"))
	if err != nil {
		writeError(c, err)
		return
	}

	stats := make([]gin.H, 0, len(rows))
	for _, s := range rows {
		stats = append(stats, gin.H{
			"date":                    s.Date,
			"totalDistanceKm":         round2(s.TotalDistanceKm),
			"totalRunningTimeMinutes": math.Round(s.TotalRunningTimeMinutes),
			"averageSpeedKmh":         round1(s.AverageSpeedKmh),
			"predictedFuelUsedLiters": round2(s.PredictedFuelUsedLiters),
			"positionCount":           s.PositionCount,
			"maxSpeed":                s.MaxSpeedKmh,
			"minFuelLevel":            s.MinFuelLevelPercent,
			"maxFuelLevel":            s.MaxFuelLevelPercent,
		})
	}

	c.JSON(http.StatusOK, gin.H{"busId": busID, "stats": stats})
}

// Summary folds the last N days into a single aggregate. The average speed
// is recomputed from the summed totals, not averaged across days.
func (sc *StatsController) Summary(c *gin.Context) {
	busID, ok := parseBusID(c)
	if !ok {
		return
	}

	days := 7
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = parsed
	}

	startDate := time.Now().UTC().AddDate(0, 0, -days).Format(dateLayout)
	rows, err := sc.stats.Since(busID, startDate)
	if err != nil {
		writeError(c, err)
		return
	}

	period := fmt.Sprintf("Last %d days", days)
	if len(rows) == 0 {
		c.JSON(http.StatusOK, gin.H{"busId": busID, "period": period, "summary": nil})
		return
	}

	var distanceKm, runningMinutes, fuelLiters, maxSpeed float64
	for _, s := range rows {
		distanceKm += s.TotalDistanceKm
		runningMinutes += s.TotalRunningTimeMinutes
		fuelLiters += s.PredictedFuelUsedLiters
		maxSpeed = math.Max(maxSpeed, s.MaxSpeedKmh)
	}

	var averageSpeed float64
	if runningMinutes > 0 {
		averageSpeed = distanceKm / (runningMinutes / 60)
	}

	c.JSON(http.StatusOK, gin.H{
		"busId":  busID,
		"period": period,
		"summary": gin.H{
			"totalDistanceKm":       round2(distanceKm),
			"totalRunningTimeHours": round1(runningMinutes / 60),
			"totalFuelUsedLiters":   round2(fuelLiters),
			"averageSpeedKmh":       round1(averageSpeed),
			"maxSpeed":              maxSpeed,
			"daysActive":            len(rows),
		},
	})
}
