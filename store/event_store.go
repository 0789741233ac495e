// api/store/event_store.go
package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mabletask/analytics/database"
	"mabletask/analytics/models"
)

// EventStore reads and writes the raw behavioral event log in
// ClickHouse. It is the engine's input collaborator: rows it returns
// are already schema-validated upstream.
type EventStore struct {
	DB  *database.ClickHouseClient
	log *zap.Logger
}

func NewEventStore(chClient *database.ClickHouseClient, logger *zap.Logger) *EventStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventStore{DB: chClient, log: logger}
}

func (s *EventStore) InsertEvents(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}

	// Column names and order must exactly match the ClickHouse table.
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO events (
			event_id, event_type, user_id, session_id, timestamp,
			device_type, country_code, traffic_source, product_id, category, revenue_amount
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, event := range events {
		err := batch.Append(
			event.EventID,
			event.EventType,
			event.UserID,
			event.SessionID,
			event.Timestamp,
			event.DeviceType,
			event.CountryCode,
			event.TrafficSource,
			event.ProductID,
			event.Category,
			event.RevenueAmount,
		)
		if err != nil {
			s.log.Warn("failed to append event to batch", zap.String("eventId", event.EventID), zap.Error(err))
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	s.log.Info("inserted events", zap.Int("count", len(events)))
	return nil
}

// FetchEvents returns the event rows in [start, end] ordered by
// timestamp, the materialized input snapshot a computation pass runs
// over.
func (s *EventStore) FetchEvents(ctx context.Context, start, end time.Time) ([]models.Event, error) {
	rows, err := s.DB.Conn.Query(ctx, `
		SELECT event_id, event_type, user_id, session_id, timestamp,
		       device_type, country_code, traffic_source, product_id, category, revenue_amount
		FROM events
		WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC, event_id ASC
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var ev models.Event
		if err := rows.Scan(
			&ev.EventID,
			&ev.EventType,
			&ev.UserID,
			&ev.SessionID,
			&ev.Timestamp,
			&ev.DeviceType,
			&ev.CountryCode,
			&ev.TrafficSource,
			&ev.ProductID,
			&ev.Category,
			&ev.RevenueAmount,
		); err != nil {
			s.log.Warn("failed to scan event row", zap.Error(err))
			continue
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during event fetch: %w", err)
	}

	return events, nil
}
