// api/handlers/metrics_handlers.go
package handlers

import (
	"context"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mabletask/analytics/engine"
	"mabletask/analytics/models"
	"mabletask/analytics/pipeline"
)

// MetricsHandlers triggers pipeline runs and serves the derived tables
// of the latest completed snapshot.
type MetricsHandlers struct {
	Pipeline *pipeline.Pipeline
	log      *zap.Logger

	mu     sync.RWMutex
	latest *models.Snapshot
}

func NewMetricsHandlers(p *pipeline.Pipeline, logger *zap.Logger) *MetricsHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetricsHandlers{Pipeline: p, log: logger}
}

// Refresh runs the pipeline over [start, end] with the given as-of date
// and keeps the resulting snapshot for serving. Defaults: asOf =
// AS_OF_DATE or today, start = 90 days before end, end = asOf.
func (h *MetricsHandlers) Refresh(c *gin.Context) {
	asOf, ok := parseDateParam(c, "asOf", defaultAsOf())
	if !ok {
		return
	}
	end, ok := parseDateParam(c, "end", asOf)
	if !ok {
		return
	}
	start, ok := parseDateParam(c, "start", end.AddDate(0, 0, -90))
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Minute)
	defer cancel()

	// End of day so same-day events are included.
	snap, metrics, err := h.Pipeline.Run(ctx, asOf, start, end.Add(24*time.Hour-time.Nanosecond))
	if err != nil {
		h.log.Error("pipeline run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Pipeline run failed"})
		return
	}

	h.mu.Lock()
	h.latest = snap
	h.mu.Unlock()

	c.JSON(http.StatusOK, metrics)
}

func (h *MetricsHandlers) snapshot(c *gin.Context) *models.Snapshot {
	h.mu.RLock()
	snap := h.latest
	h.mu.RUnlock()
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No snapshot computed yet; POST /api/refresh first"})
		return nil
	}
	return snap
}

func (h *MetricsHandlers) GetSessions(c *gin.Context) {
	if snap := h.snapshot(c); snap != nil {
		c.JSON(http.StatusOK, snap.Sessions)
	}
}

func (h *MetricsHandlers) GetJourneys(c *gin.Context) {
	if snap := h.snapshot(c); snap != nil {
		c.JSON(http.StatusOK, snap.Journeys)
	}
}

func (h *MetricsHandlers) GetProducts(c *gin.Context) {
	if snap := h.snapshot(c); snap != nil {
		c.JSON(http.StatusOK, snap.Products)
	}
}

func (h *MetricsHandlers) GetDailyEngagement(c *gin.Context) {
	if snap := h.snapshot(c); snap != nil {
		c.JSON(http.StatusOK, snap.Daily)
	}
}

func (h *MetricsHandlers) GetRevenue(c *gin.Context) {
	if snap := h.snapshot(c); snap != nil {
		c.JSON(http.StatusOK, snap.Revenue)
	}
}

func (h *MetricsHandlers) GetFunnel(c *gin.Context) {
	if snap := h.snapshot(c); snap != nil {
		c.JSON(http.StatusOK, snap.Funnel)
	}
}

func (h *MetricsHandlers) GetUserDimension(c *gin.Context) {
	if snap := h.snapshot(c); snap != nil {
		c.JSON(http.StatusOK, snap.Users)
	}
}

func (h *MetricsHandlers) GetDateDimension(c *gin.Context) {
	if snap := h.snapshot(c); snap != nil {
		c.JSON(http.StatusOK, snap.Dates)
	}
}

// GetChecks re-runs the consistency checks against the latest snapshot.
func (h *MetricsHandlers) GetChecks(c *gin.Context) {
	snap := h.snapshot(c)
	if snap == nil {
		return
	}
	issues := engine.CheckSnapshot(snap)
	c.JSON(http.StatusOK, gin.H{
		"generatedAt": snap.GeneratedAt,
		"issueCount":  len(issues),
		"issues":      issues,
	})
}

// defaultAsOf pins the as-of date via AS_OF_DATE (YYYY-MM-DD) when set,
// so scheduled runs stay reproducible; otherwise the current UTC day.
func defaultAsOf() time.Time {
	if raw := os.Getenv("AS_OF_DATE"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}

// parseDateParam reads a YYYY-MM-DD query parameter, falling back to
// the given default. Writes the error response itself on bad input.
func parseDateParam(c *gin.Context, name string, fallback time.Time) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid '" + name + "' date format. Use YYYY-MM-DD"})
		return time.Time{}, false
	}
	return t, true
}
