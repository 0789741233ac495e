package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mabletask/analytics/models"
)

func TestBuildRevenueFacts(t *testing.T) {
	day2 := testDay.AddDate(0, 0, 1)
	events := []models.Event{
		ev("e1", "u1", "s1", models.EventPurchase, testDay, withProduct("p1", "Shoes"), withRevenue(100)),
		ev("e2", "u2", "s2", models.EventPurchase, testDay.Add(time.Hour), withProduct("p2", "Shoes"), withRevenue(50), withDevice(models.DeviceMobile), withSource(models.SourceSocial)),
		ev("e3", "u1", "s1", models.EventPurchase, testDay.Add(2*time.Hour), withRevenue(25)),
		ev("e4", "u3", "s3", models.EventPurchase, day2, withProduct("p1", "Shoes"), withRevenue(200)),

		// Excluded: not a purchase, or no positive revenue.
		ev("e5", "u1", "s1", models.EventPageView, testDay),
		ev("e6", "u4", "s4", models.EventPurchase, testDay),
	}

	rows := BuildRevenueFacts(events)
	require.Len(t, rows, 3)

	shoes1 := rows[0]
	assert.Equal(t, testDay, shoes1.Date)
	assert.Equal(t, "Shoes", shoes1.Category)
	assert.Equal(t, 2, shoes1.Transactions)
	assert.Equal(t, 2, shoes1.UniqueBuyers)
	assert.Equal(t, 2, shoes1.UniqueSessions)
	assert.Equal(t, 150.0, shoes1.GrossRevenue)
	assert.InDelta(t, 75, shoes1.AvgOrderValue, 1e-9)
	assert.Equal(t, 50.0, shoes1.MinOrderValue)
	assert.Equal(t, 100.0, shoes1.MaxOrderValue)
	assert.Equal(t, 100.0, shoes1.DesktopRevenue)
	assert.Equal(t, 50.0, shoes1.MobileRevenue)
	assert.Equal(t, 100.0, shoes1.OrganicRevenue)
	assert.Equal(t, 50.0, shoes1.SocialRevenue)
	assert.InDelta(t, 150.0/175.0, shoes1.CategoryRevenueShare, 1e-9)

	// Purchase without a category lands in Unknown.
	unknown := rows[1]
	assert.Equal(t, testDay, unknown.Date)
	assert.Equal(t, UnknownCategory, unknown.Category)
	assert.Equal(t, 25.0, unknown.GrossRevenue)
	assert.InDelta(t, 25.0/175.0, unknown.CategoryRevenueShare, 1e-9)

	shoes2 := rows[2]
	assert.Equal(t, day2, shoes2.Date)
	assert.InDelta(t, 1.0, shoes2.CategoryRevenueShare, 1e-9)
}

func TestBuildRevenueFactsSharesSumToOnePerDay(t *testing.T) {
	events := []models.Event{
		ev("e1", "u1", "s1", models.EventPurchase, testDay, withProduct("p1", "A"), withRevenue(30)),
		ev("e2", "u2", "s2", models.EventPurchase, testDay, withProduct("p2", "B"), withRevenue(50)),
		ev("e3", "u3", "s3", models.EventPurchase, testDay, withProduct("p3", "C"), withRevenue(20)),
	}

	rows := BuildRevenueFacts(events)
	require.Len(t, rows, 3)
	var total float64
	for _, row := range rows {
		total += row.CategoryRevenueShare
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestBuildRevenueFactsCategoryWindows(t *testing.T) {
	day2 := testDay.AddDate(0, 0, 1)
	day3 := testDay.AddDate(0, 0, 2)
	events := []models.Event{
		ev("e1", "u1", "s1", models.EventPurchase, testDay, withProduct("p1", "Shoes"), withRevenue(150)),
		ev("e2", "u2", "s2", models.EventPurchase, day2, withProduct("p1", "Shoes"), withRevenue(200)),
		ev("e3", "u3", "s3", models.EventPurchase, day3, withProduct("p1", "Shoes"), withRevenue(100)),
		// A second category must not leak into the Shoes windows.
		ev("e4", "u4", "s4", models.EventPurchase, day2, withProduct("p9", "Bags"), withRevenue(999)),
	}

	rows := BuildRevenueFacts(events)
	require.Len(t, rows, 4)

	var shoes []models.RevenueFact
	for _, row := range rows {
		if row.Category == "Shoes" {
			shoes = append(shoes, row)
		}
	}
	require.Len(t, shoes, 3)

	assert.InDelta(t, 150, shoes[0].Revenue7DSum, 1e-9)
	assert.InDelta(t, 350, shoes[1].Revenue7DSum, 1e-9)
	assert.InDelta(t, 450, shoes[2].Revenue7DSum, 1e-9)
	assert.InDelta(t, 450, shoes[2].Revenue30DSum, 1e-9)

	assert.InDelta(t, 150, shoes[0].CumulativeRevenue, 1e-9)
	assert.InDelta(t, 350, shoes[1].CumulativeRevenue, 1e-9)
	assert.InDelta(t, 450, shoes[2].CumulativeRevenue, 1e-9)

	assert.InDelta(t, 0, shoes[0].RevenueDoDPct, 1e-9)
	assert.InDelta(t, 200.0/150.0-1, shoes[1].RevenueDoDPct, 1e-9)
	assert.InDelta(t, 100.0/200.0-1, shoes[2].RevenueDoDPct, 1e-9)
}
