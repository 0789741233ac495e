package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mabletask/analytics/models"
)

func fixtureInputs() Inputs {
	day2 := testDay.AddDate(0, 0, 1)
	return Inputs{
		Events: []models.Event{
			ev("e1", "u1", "s1", models.EventPageView, testDay),
			ev("e2", "u1", "s1", models.EventProductView, testDay.Add(time.Minute), withProduct("p1", "Shoes")),
			ev("e3", "u1", "s1", models.EventAddToCart, testDay.Add(2*time.Minute), withProduct("p1", "Shoes")),
			ev("e4", "u1", "s1", models.EventBeginCheckout, testDay.Add(3*time.Minute)),
			ev("e5", "u1", "s1", models.EventPurchase, testDay.Add(4*time.Minute), withProduct("p1", "Shoes"), withRevenue(120)),
			ev("e6", "u2", "s2", models.EventPageView, testDay.Add(time.Hour), withDevice(models.DeviceMobile), withSource(models.SourceSocial)),
			ev("e7", "u2", "s2", models.EventProductView, testDay.Add(time.Hour+time.Minute), withProduct("p2", "Bags")),
			ev("e8", "u3", "s3", models.EventPageView, day2),
			ev("e9", "u3", "s3", models.EventProductView, day2.Add(time.Minute), withProduct("p2", "Bags")),
			ev("e10", "u3", "s3", models.EventAddToCart, day2.Add(2*time.Minute), withProduct("p2", "Bags")),
			ev("e11", "u3", "s3", models.EventBeginCheckout, day2.Add(3*time.Minute)),
			ev("e12", "u3", "s3", models.EventPurchase, day2.Add(4*time.Minute), withProduct("p2", "Bags"), withRevenue(45)),
		},
		Products: []models.ProductRef{
			{ProductID: "p1", ProductName: "Trail Runner", Category: "Shoes", BasePrice: 120},
			{ProductID: "p2", ProductName: "Canvas Tote", Category: "Bags", BasePrice: 45},
		},
		Users: []models.UserRef{
			{UserID: "u1", CountryCode: "US", AccountCreatedAt: testDay.AddDate(-1, 0, 0)},
			{UserID: "u2", CountryCode: "DE", AccountCreatedAt: testDay.AddDate(0, -6, 0)},
			{UserID: "u4", CountryCode: "FR", AccountCreatedAt: testDay.AddDate(0, -1, 0)},
		},
	}
}

func TestEngineRunProducesAllTables(t *testing.T) {
	eng := New(Config{}, nil)
	asOf := testDay.AddDate(0, 0, 2)

	snap, err := eng.Run(context.Background(), asOf, fixtureInputs())
	require.NoError(t, err)

	assert.Equal(t, dateOf(asOf), snap.AsOf)
	assert.False(t, snap.GeneratedAt.IsZero())

	assert.Len(t, snap.Sessions, 3)
	assert.Len(t, snap.Journeys, 3)
	assert.Len(t, snap.Products, 2)
	assert.Len(t, snap.Daily, 2)
	assert.Len(t, snap.Revenue, 2)
	assert.Len(t, snap.Funnel, 2)
	assert.Len(t, snap.Users, 4) // u1..u3 from activity, u4 reference-only
	// date dimension spans earliest event date through as-of
	assert.Len(t, snap.Dates, 3)

	// A full run should come out internally consistent.
	assert.Empty(t, CheckSnapshot(snap))
}

func TestEngineRunIsIdempotentModuloGeneratedAt(t *testing.T) {
	eng := New(Config{}, nil)
	asOf := testDay.AddDate(0, 0, 2)

	first, err := eng.Run(context.Background(), asOf, fixtureInputs())
	require.NoError(t, err)
	second, err := eng.Run(context.Background(), asOf, fixtureInputs())
	require.NoError(t, err)

	first.GeneratedAt = time.Time{}
	second.GeneratedAt = time.Time{}
	assert.Equal(t, first, second)
}

func TestEngineRunHonorsDateRangeStart(t *testing.T) {
	start := testDay.AddDate(0, 0, -9)
	eng := New(Config{DateRangeStart: start}, nil)
	asOf := testDay

	snap, err := eng.Run(context.Background(), asOf, fixtureInputs())
	require.NoError(t, err)
	require.Len(t, snap.Dates, 10)
	assert.Equal(t, dateOf(start), snap.Dates[0].Date)
	assert.Equal(t, dateOf(asOf), snap.Dates[9].Date)
}

func TestEngineRunCancelledContext(t *testing.T) {
	eng := New(Config{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.Run(ctx, testDay, fixtureInputs())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngineRunEmptyInputs(t *testing.T) {
	eng := New(Config{}, nil)

	snap, err := eng.Run(context.Background(), testDay, Inputs{})
	require.NoError(t, err)
	assert.Empty(t, snap.Sessions)
	assert.Empty(t, snap.Journeys)
	assert.Empty(t, snap.Users)
	// With no events the date dimension collapses to the as-of date.
	require.Len(t, snap.Dates, 1)
	assert.Equal(t, testDay, snap.Dates[0].Date)
}

func TestNewAppliesDefaults(t *testing.T) {
	eng := New(Config{MaxSessionHours: -1}, nil)
	assert.Equal(t, DefaultMaxSessionHours, eng.cfg.MaxSessionHours)
	require.NotNil(t, eng.log)
}
