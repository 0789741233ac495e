package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mabletask/analytics/models"
)

func TestBuildFunnelRollupDeduplicatesUsersAcrossSessions(t *testing.T) {
	// One user, two sessions on the same date: one converts, the other
	// abandons the cart. The user counts once per stage reached and once
	// in each drop-off bucket.
	events := []models.Event{
		ev("e1", "u1", "s1", models.EventPageView, testDay),
		ev("e2", "u1", "s1", models.EventProductView, testDay.Add(time.Minute)),
		ev("e3", "u1", "s1", models.EventAddToCart, testDay.Add(2*time.Minute)),
		ev("e4", "u1", "s1", models.EventBeginCheckout, testDay.Add(3*time.Minute)),
		ev("e5", "u1", "s1", models.EventPurchase, testDay.Add(4*time.Minute), withRevenue(60)),

		ev("e6", "u1", "s2", models.EventPageView, testDay.Add(5*time.Hour)),
		ev("e7", "u1", "s2", models.EventProductView, testDay.Add(5*time.Hour+time.Minute)),
		ev("e8", "u1", "s2", models.EventAddToCart, testDay.Add(5*time.Hour+2*time.Minute)),
	}
	journeys := ClassifyJourneys(events)
	require.Len(t, journeys, 2)

	rows := BuildFunnelRollup(journeys)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, 1, row.UsersAtSite)
	assert.Equal(t, 1, row.UsersAtProduct)
	assert.Equal(t, 1, row.UsersAtCart)
	assert.Equal(t, 1, row.UsersAtCheckout)
	assert.Equal(t, 1, row.UsersAtPurchase)

	assert.Equal(t, 2, row.SessionsAtSite)
	assert.Equal(t, 2, row.SessionsAtCart)
	assert.Equal(t, 1, row.SessionsAtPurchase)

	assert.Equal(t, 1, row.ConvertedUsers)
	assert.Equal(t, 1, row.CartAbandonedUsers)
	assert.Equal(t, 0, row.CheckoutAbandonedUsers)

	assert.InDelta(t, 1.0, row.OverallConversionRate, 1e-9)
	// cart users == purchase users, so nothing was abandoned net of
	// conversion.
	assert.InDelta(t, 0.0, row.CartAbandonmentRate, 1e-9)
}

func TestBuildFunnelRollupStageRates(t *testing.T) {
	mkJourney := func(user, session string, product, cart, checkout, purchase bool) models.UserJourney {
		j := models.UserJourney{
			UserID:          user,
			SessionID:       session,
			EventDate:       testDay,
			ReachedSite:     true,
			ReachedProduct:  product,
			ReachedCart:     cart,
			ReachedCheckout: checkout,
			ReachedPurchase: purchase,
		}
		j.DeepestStage = deepestStage(&j)
		j.DropOffStage = dropOffStage(&j)
		return j
	}

	journeys := []models.UserJourney{
		mkJourney("u1", "s1", true, true, true, true),
		mkJourney("u2", "s2", true, true, false, false),
		mkJourney("u3", "s3", true, false, false, false),
		mkJourney("u4", "s4", false, false, false, false),
	}

	rows := BuildFunnelRollup(journeys)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, 4, row.UsersAtSite)
	assert.Equal(t, 3, row.UsersAtProduct)
	assert.Equal(t, 2, row.UsersAtCart)
	assert.Equal(t, 1, row.UsersAtCheckout)
	assert.Equal(t, 1, row.UsersAtPurchase)

	assert.InDelta(t, 0.75, row.SiteToProductRate, 1e-9)
	assert.InDelta(t, 2.0/3.0, row.ProductToCartRate, 1e-9)
	assert.InDelta(t, 0.5, row.CartToCheckoutRate, 1e-9)
	assert.InDelta(t, 1.0, row.CheckoutToPurchaseRate, 1e-9)
	assert.InDelta(t, 0.25, row.OverallConversionRate, 1e-9)
	assert.InDelta(t, 0.5, row.CartAbandonmentRate, 1e-9)

	assert.Equal(t, 1, row.ConvertedUsers)
	assert.Equal(t, 1, row.CartAbandonedUsers)
	assert.Equal(t, 1, row.ProductExitUsers)
	assert.Equal(t, 1, row.LandingBounceUsers)
}

func TestBuildFunnelRollupEmptyDayRates(t *testing.T) {
	journeys := []models.UserJourney{{
		UserID:       "u1",
		SessionID:    "s1",
		EventDate:    testDay,
		DropOffStage: DropNoEngagement,
	}}

	rows := BuildFunnelRollup(journeys)
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].UsersAtSite)
	assert.Equal(t, 1, rows[0].NoEngagementUsers)
	assert.InDelta(t, 0, rows[0].OverallConversionRate, 1e-9)
	assert.InDelta(t, 0, rows[0].CartAbandonmentRate, 1e-9)
}

func TestBuildFunnelRollupTimeSeriesColumns(t *testing.T) {
	journeys := make([]models.UserJourney, 0, 8)
	for i := 0; i < 8; i++ {
		j := models.UserJourney{
			UserID:          "u1",
			SessionID:       "s1",
			EventDate:       testDay.AddDate(0, 0, i),
			ReachedSite:     true,
			ReachedPurchase: i == 0, // converts only on the first day
		}
		j.DropOffStage = dropOffStage(&j)
		journeys = append(journeys, j)
	}

	rows := BuildFunnelRollup(journeys)
	require.Len(t, rows, 8)

	// conversion rate series: 1, 0, 0, ...
	assert.InDelta(t, 1, rows[0].OverallConversionRate7DAvg, 1e-9)
	assert.InDelta(t, 0.5, rows[1].OverallConversionRate7DAvg, 1e-9)
	assert.InDelta(t, 1.0/7.0, rows[6].OverallConversionRate7DAvg, 1e-9)
	assert.InDelta(t, 0, rows[7].OverallConversionRate7DAvg, 1e-9)

	// lag(7) surfaces the day-one rate a week later.
	assert.InDelta(t, 0, rows[6].OverallConversionRatePrevWeek, 1e-9)
	assert.InDelta(t, 1, rows[7].OverallConversionRatePrevWeek, 1e-9)
}
