// api/engine/engine.go
package engine

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mabletask/analytics/models"
)

// DefaultMaxSessionHours caps session duration before a session is
// treated as malformed and excluded.
const DefaultMaxSessionHours = 6.0

// Config holds the engine's tunables. The as-of date is not part of it:
// it is passed explicitly per run so outputs stay reproducible.
type Config struct {
	// MaxSessionHours drops sessions longer than this many hours.
	MaxSessionHours float64
	// DateRangeStart optionally pins the date-dimension start; zero
	// means the earliest event date.
	DateRangeStart time.Time
}

// Inputs is one materialized snapshot of everything a run consumes.
type Inputs struct {
	Events   []models.Event
	Products []models.ProductRef
	Users    []models.UserRef
}

// Engine computes the derived tables. It is stateless between runs;
// re-running with identical inputs and as-of date yields identical
// output except generatedAt.
type Engine struct {
	cfg Config
	log *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Engine {
	if cfg.MaxSessionHours <= 0 {
		cfg.MaxSessionHours = DefaultMaxSessionHours
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, log: logger}
}

// Run executes one full computation pass over the input snapshot.
// Sessions and journeys feed the downstream rollups, which build in
// parallel since they share no cross-row dependency.
func (e *Engine) Run(ctx context.Context, asOf time.Time, in Inputs) (*models.Snapshot, error) {
	started := time.Now()
	asOfDate := dateOf(asOf)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sessions := BuildSessions(in.Events, e.cfg.MaxSessionHours)
	journeys := ClassifyJourneys(in.Events)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := &models.Snapshot{
		AsOf:     asOfDate,
		Sessions: sessions,
		Journeys: journeys,
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap.Products = BuildProductPerformance(in.Events, in.Products)
		return nil
	})
	g.Go(func() error {
		snap.Daily = BuildDailyEngagement(in.Events, sessions)
		return nil
	})
	g.Go(func() error {
		snap.Revenue = BuildRevenueFacts(in.Events)
		return nil
	})
	g.Go(func() error {
		snap.Funnel = BuildFunnelRollup(journeys)
		return nil
	})
	g.Go(func() error {
		snap.Users = ScoreUsers(asOfDate, sessions, in.Users)
		return nil
	})
	g.Go(func() error {
		snap.Dates = BuildDateDimension(e.dateRangeStart(in.Events, asOfDate), asOfDate)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.GeneratedAt = time.Now().UTC()

	e.log.Info("computation pass complete",
		zap.Time("asOf", asOfDate),
		zap.Int("events", len(in.Events)),
		zap.Int("sessions", len(snap.Sessions)),
		zap.Int("journeys", len(snap.Journeys)),
		zap.Int("products", len(snap.Products)),
		zap.Int("dailyRows", len(snap.Daily)),
		zap.Int("revenueRows", len(snap.Revenue)),
		zap.Int("funnelRows", len(snap.Funnel)),
		zap.Int("users", len(snap.Users)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return snap, nil
}

func (e *Engine) dateRangeStart(events []models.Event, asOfDate time.Time) time.Time {
	if !e.cfg.DateRangeStart.IsZero() {
		return dateOf(e.cfg.DateRangeStart)
	}
	start := asOfDate
	for _, ev := range events {
		if d := dateOf(ev.Timestamp); d.Before(start) {
			start = d
		}
	}
	return start
}
