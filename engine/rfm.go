// api/engine/rfm.go
package engine

import (
	"sort"
	"time"

	"mabletask/analytics/models"
)

// NeverActiveRecencyDays is the sentinel recency for users with no
// recorded activity, distinct from any legitimately large recency.
const NeverActiveRecencyDays = 999

type userAccum struct {
	sessions      int
	events        int
	purchases     int
	revenue       float64
	firstActivity *time.Time
	lastActivity  *time.Time
}

// ScoreUsers builds the scored user dimension from surviving sessions
// and the static user reference. The join runs both ways: every session
// user and every reference user gets a row, with zero-filled counters
// where one side is missing.
func ScoreUsers(asOf time.Time, sessions []models.Session, users []models.UserRef) []models.UserDimension {
	asOfDate := dateOf(asOf)

	accums := make(map[string]*userAccum)
	for _, s := range sessions {
		acc, ok := accums[s.UserID]
		if !ok {
			acc = &userAccum{}
			accums[s.UserID] = acc
		}
		acc.sessions++
		acc.events += s.EventCount
		acc.purchases += s.Purchases
		acc.revenue += s.SessionRevenue
		if acc.firstActivity == nil || s.SessionStart.Before(*acc.firstActivity) {
			start := s.SessionStart
			acc.firstActivity = &start
		}
		if acc.lastActivity == nil || s.SessionEnd.After(*acc.lastActivity) {
			end := s.SessionEnd
			acc.lastActivity = &end
		}
	}

	refs := make(map[string]models.UserRef, len(users))
	for _, u := range users {
		refs[u.UserID] = u
		if _, ok := accums[u.UserID]; !ok {
			accums[u.UserID] = &userAccum{}
		}
	}

	rows := make([]models.UserDimension, 0, len(accums))
	for _, userID := range sortedKeys(accums) {
		acc := accums[userID]
		row := models.UserDimension{
			UserID:          userID,
			FirstActivityAt: acc.firstActivity,
			LastActivityAt:  acc.lastActivity,
			TotalSessions:   acc.sessions,
			TotalEvents:     acc.events,
			TotalPurchases:  acc.purchases,
			LifetimeRevenue: acc.revenue,
		}
		if ref, ok := refs[userID]; ok {
			row.CountryCode = ref.CountryCode
			if !ref.AccountCreatedAt.IsZero() {
				created := ref.AccountCreatedAt
				row.AccountCreatedAt = &created
			}
		}

		if acc.lastActivity == nil {
			row.RecencyDays = NeverActiveRecencyDays
		} else {
			row.RecencyDays = daysBetween(*acc.lastActivity, asOfDate)
		}
		row.RecencyScore = recencyScore(row.RecencyDays)
		row.CustomerValueTier = customerValueTier(acc.revenue)
		row.ActivityStatus = activityStatus(acc.lastActivity, row.RecencyDays)
		row.BuyerStatus = buyerStatus(acc.purchases)

		rows = append(rows, row)
	}

	applyQuintiles(rows)
	for i := range rows {
		rows[i].RFMTotalScore = rows[i].RecencyScore + rows[i].FrequencyScore + rows[i].MonetaryScore
	}
	return rows
}

// applyQuintiles assigns frequency and monetary scores as ascending
// NTILE(5) ranks over the current population. Ties break on user_id so
// identical inputs always score identically.
func applyQuintiles(rows []models.UserDimension) {
	n := len(rows)
	if n == 0 {
		return
	}

	rank := func(metric func(models.UserDimension) float64, assign func(*models.UserDimension, int)) {
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool {
			va, vb := metric(rows[order[a]]), metric(rows[order[b]])
			if va != vb {
				return va < vb
			}
			return rows[order[a]].UserID < rows[order[b]].UserID
		})
		for pos, idx := range order {
			assign(&rows[idx], pos*5/n+1)
		}
	}

	rank(
		func(u models.UserDimension) float64 { return float64(u.TotalSessions) },
		func(u *models.UserDimension, score int) { u.FrequencyScore = score },
	)
	rank(
		func(u models.UserDimension) float64 { return u.LifetimeRevenue },
		func(u *models.UserDimension, score int) { u.MonetaryScore = score },
	)
}

func recencyScore(recencyDays int) int {
	switch {
	case recencyDays <= 7:
		return 5
	case recencyDays <= 14:
		return 4
	case recencyDays <= 30:
		return 3
	case recencyDays <= 60:
		return 2
	default:
		return 1
	}
}

func customerValueTier(revenue float64) string {
	switch {
	case revenue >= 1000:
		return "VIP"
	case revenue >= 500:
		return "High Value"
	case revenue >= 100:
		return "Medium Value"
	case revenue > 0:
		return "Low Value"
	default:
		return "No Purchase"
	}
}

func activityStatus(lastActivity *time.Time, recencyDays int) string {
	if lastActivity == nil {
		return "Never Active"
	}
	switch {
	case recencyDays <= 7:
		return "Active"
	case recencyDays <= 30:
		return "Recent"
	case recencyDays <= 90:
		return "Lapsing"
	default:
		return "Churned"
	}
}

func buyerStatus(purchases int) string {
	switch {
	case purchases > 1:
		return "Repeat Buyer"
	case purchases == 1:
		return "One-Time Buyer"
	default:
		return "Non-Buyer"
	}
}
