// api/handlers/ingest_handlers.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mabletask/analytics/models"
	"mabletask/analytics/store"
)

type IngestHandlers struct {
	EventStore *store.EventStore
	log        *zap.Logger
}

func NewIngestHandlers(s *store.EventStore, logger *zap.Logger) *IngestHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestHandlers{EventStore: s, log: logger}
}

// TrackEvents accepts an array of events from the tracker and writes
// them to the raw event log. Events arriving without an ID get one
// assigned here.
func (h *IngestHandlers) TrackEvents(c *gin.Context) {
	var incoming []models.Event
	if err := c.ShouldBindJSON(&incoming); err != nil {
		h.log.Warn("failed to bind incoming events", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if len(incoming) == 0 {
		c.Status(http.StatusOK)
		return
	}

	now := time.Now().UTC()
	events := make([]models.Event, 0, len(incoming))
	for _, event := range incoming {
		if event.EventID == "" {
			event.EventID = uuid.New().String()
		}
		if event.Timestamp.IsZero() {
			event.Timestamp = now
		}
		events = append(events, event)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if err := h.EventStore.InsertEvents(ctx, events); err != nil {
		h.log.Error("failed to insert events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record events"})
		return
	}

	c.Status(http.StatusOK)
}
