// api/engine/funnel_rollup.go
package engine

import (
	"time"

	"mabletask/analytics/models"
)

type funnelDayAccum struct {
	stageUsers    map[string]map[string]struct{}
	stageSessions map[string]map[string]struct{}
	dropUsers     map[string]map[string]struct{}
}

// BuildFunnelRollup counts, per date, distinct users and sessions
// reaching each funnel stage and distinct users per drop-off category.
// Users are deduplicated across sessions within a date; a user with one
// converted and one abandoned journey counts in both drop-off buckets.
func BuildFunnelRollup(journeys []models.UserJourney) []models.FunnelDaily {
	byDate := make(map[time.Time]*funnelDayAccum)

	for _, j := range journeys {
		acc, ok := byDate[j.EventDate]
		if !ok {
			acc = &funnelDayAccum{
				stageUsers:    make(map[string]map[string]struct{}),
				stageSessions: make(map[string]map[string]struct{}),
				dropUsers:     make(map[string]map[string]struct{}),
			}
			byDate[j.EventDate] = acc
		}

		mark := func(m map[string]map[string]struct{}, bucket, member string) {
			set, ok := m[bucket]
			if !ok {
				set = make(map[string]struct{})
				m[bucket] = set
			}
			set[member] = struct{}{}
		}

		stages := []struct {
			stage   string
			reached bool
		}{
			{StageSite, j.ReachedSite},
			{StageProduct, j.ReachedProduct},
			{StageCart, j.ReachedCart},
			{StageCheckout, j.ReachedCheckout},
			{StagePurchase, j.ReachedPurchase},
		}
		for _, s := range stages {
			if s.reached {
				mark(acc.stageUsers, s.stage, j.UserID)
				mark(acc.stageSessions, s.stage, j.SessionID)
			}
		}
		mark(acc.dropUsers, j.DropOffStage, j.UserID)
	}

	dates := sortedDates(byDate)
	rows := make([]models.FunnelDaily, 0, len(dates))
	for _, d := range dates {
		acc := byDate[d]
		row := models.FunnelDaily{
			Date: d,

			UsersAtSite:     len(acc.stageUsers[StageSite]),
			UsersAtProduct:  len(acc.stageUsers[StageProduct]),
			UsersAtCart:     len(acc.stageUsers[StageCart]),
			UsersAtCheckout: len(acc.stageUsers[StageCheckout]),
			UsersAtPurchase: len(acc.stageUsers[StagePurchase]),

			SessionsAtSite:     len(acc.stageSessions[StageSite]),
			SessionsAtProduct:  len(acc.stageSessions[StageProduct]),
			SessionsAtCart:     len(acc.stageSessions[StageCart]),
			SessionsAtCheckout: len(acc.stageSessions[StageCheckout]),
			SessionsAtPurchase: len(acc.stageSessions[StagePurchase]),

			ConvertedUsers:         len(acc.dropUsers[DropConverted]),
			CheckoutAbandonedUsers: len(acc.dropUsers[DropCheckoutAbandoned]),
			CartAbandonedUsers:     len(acc.dropUsers[DropCartAbandoned]),
			ProductExitUsers:       len(acc.dropUsers[DropProductExit]),
			LandingBounceUsers:     len(acc.dropUsers[DropLandingBounce]),
			NoEngagementUsers:      len(acc.dropUsers[DropNoEngagement]),
		}

		site := float64(row.UsersAtSite)
		product := float64(row.UsersAtProduct)
		cart := float64(row.UsersAtCart)
		checkout := float64(row.UsersAtCheckout)
		purchase := float64(row.UsersAtPurchase)

		row.SiteToProductRate = SafeDiv(product, site)
		row.ProductToCartRate = SafeDiv(cart, product)
		row.CartToCheckoutRate = SafeDiv(checkout, cart)
		row.CheckoutToPurchaseRate = SafeDiv(purchase, checkout)
		row.OverallConversionRate = SafeDiv(purchase, site)
		row.CartAbandonmentRate = SafeDiv(cart-purchase, cart)

		rows = append(rows, row)
	}

	conv := make([]float64, len(rows))
	aband := make([]float64, len(rows))
	for i, row := range rows {
		conv[i] = row.OverallConversionRate
		aband[i] = row.CartAbandonmentRate
	}
	conv7d := rollingMean(conv, 7)
	aband7d := rollingMean(aband, 7)
	convPrevWeek := lag(conv, 7)
	for i := range rows {
		rows[i].OverallConversionRate7DAvg = conv7d[i]
		rows[i].CartAbandonmentRate7DAvg = aband7d[i]
		rows[i].OverallConversionRatePrevWeek = convPrevWeek[i]
	}
	return rows
}
