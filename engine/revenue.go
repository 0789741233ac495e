// api/engine/revenue.go
package engine

import (
	"sort"
	"time"

	"mabletask/analytics/models"
)

type revenueKey struct {
	date     time.Time
	category string
}

type revenueAccum struct {
	transactions int
	buyers       map[string]struct{}
	sessions     map[string]struct{}
	gross        float64
	minOrder     float64
	maxOrder     float64

	deviceRevenue map[string]float64
	sourceRevenue map[string]float64
}

// BuildRevenueFacts groups purchase events with positive revenue by
// (date, category) and derives share-of-day plus per-category rolling
// and cumulative sums. Events without a category land in "Unknown".
func BuildRevenueFacts(events []models.Event) []models.RevenueFact {
	accums := make(map[revenueKey]*revenueAccum)

	for _, ev := range events {
		if ev.EventType != models.EventPurchase || ev.RevenueAmount <= 0 {
			continue
		}
		category := ev.Category
		if category == "" {
			category = UnknownCategory
		}
		key := revenueKey{date: dateOf(ev.Timestamp), category: category}
		acc, ok := accums[key]
		if !ok {
			acc = &revenueAccum{
				buyers:        make(map[string]struct{}),
				sessions:      make(map[string]struct{}),
				deviceRevenue: make(map[string]float64),
				sourceRevenue: make(map[string]float64),
				minOrder:      ev.RevenueAmount,
				maxOrder:      ev.RevenueAmount,
			}
			accums[key] = acc
		}
		acc.transactions++
		acc.buyers[ev.UserID] = struct{}{}
		acc.sessions[ev.SessionID] = struct{}{}
		acc.gross += ev.RevenueAmount
		if ev.RevenueAmount < acc.minOrder {
			acc.minOrder = ev.RevenueAmount
		}
		if ev.RevenueAmount > acc.maxOrder {
			acc.maxOrder = ev.RevenueAmount
		}
		acc.deviceRevenue[ev.DeviceType] += ev.RevenueAmount
		acc.sourceRevenue[ev.TrafficSource] += ev.RevenueAmount
	}

	keys := make([]revenueKey, 0, len(accums))
	dayTotals := make(map[time.Time]float64)
	for key, acc := range accums {
		keys = append(keys, key)
		dayTotals[key.date] += acc.gross
	}
	sort.Slice(keys, func(i, j int) bool {
		if !keys[i].date.Equal(keys[j].date) {
			return keys[i].date.Before(keys[j].date)
		}
		return keys[i].category < keys[j].category
	})

	rows := make([]models.RevenueFact, 0, len(keys))
	for _, key := range keys {
		acc := accums[key]
		row := models.RevenueFact{
			Date:           key.date,
			Category:       key.category,
			Transactions:   acc.transactions,
			UniqueBuyers:   len(acc.buyers),
			UniqueSessions: len(acc.sessions),
			GrossRevenue:   acc.gross,
			AvgOrderValue:  SafeDiv(acc.gross, float64(acc.transactions)),
			MinOrderValue:  acc.minOrder,
			MaxOrderValue:  acc.maxOrder,

			MobileRevenue:  acc.deviceRevenue[models.DeviceMobile],
			DesktopRevenue: acc.deviceRevenue[models.DeviceDesktop],
			TabletRevenue:  acc.deviceRevenue[models.DeviceTablet],

			OrganicRevenue:    acc.sourceRevenue[models.SourceOrganic],
			PaidSearchRevenue: acc.sourceRevenue[models.SourcePaidSearch],
			SocialRevenue:     acc.sourceRevenue[models.SourceSocial],
			EmailRevenue:      acc.sourceRevenue[models.SourceEmail],
			DirectRevenue:     acc.sourceRevenue[models.SourceDirect],
			ReferralRevenue:   acc.sourceRevenue[models.SourceReferral],

			CategoryRevenueShare: SafeDiv(acc.gross, dayTotals[key.date]),
		}
		rows = append(rows, row)
	}

	applyCategoryWindows(rows)
	return rows
}

// applyCategoryWindows computes the rolling, cumulative and growth
// columns in one ordered pass per category partition. Windows must not
// be split across a partition boundary.
func applyCategoryWindows(rows []models.RevenueFact) {
	byCategory := make(map[string][]int)
	for i, row := range rows {
		byCategory[row.Category] = append(byCategory[row.Category], i)
	}

	for _, category := range sortedKeys(byCategory) {
		idx := byCategory[category]
		gross := make([]float64, len(idx))
		for i, rowIdx := range idx {
			gross[i] = rows[rowIdx].GrossRevenue
		}

		sum7 := rollingSum(gross, 7)
		sum30 := rollingSum(gross, 30)
		cum := cumulativeSum(gross)
		dod := pctChange(gross, 1)
		wow := pctChange(gross, 7)

		for i, rowIdx := range idx {
			rows[rowIdx].Revenue7DSum = sum7[i]
			rows[rowIdx].Revenue30DSum = sum30[i]
			rows[rowIdx].CumulativeRevenue = cum[i]
			rows[rowIdx].RevenueDoDPct = dod[i]
			rows[rowIdx].RevenueWoWPct = wow[i]
		}
	}
}
