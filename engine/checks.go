// api/engine/checks.go
package engine

import (
	"fmt"
	"math"

	"mabletask/analytics/models"
)

// Issue severities.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
)

// Issue is one finding from a post-hoc consistency check.
type Issue struct {
	Check    string `json:"check"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// CheckSnapshot runs the post-hoc consistency checks over a computed
// snapshot. The engine never corrects data-invariant violations; it
// computes from raw facts and surfaces anomalies here for external
// review.
func CheckSnapshot(s *models.Snapshot) []Issue {
	var issues []Issue
	issues = append(issues, checkFunnelMonotonicity(s.Funnel)...)
	issues = append(issues, checkReferentialIntegrity(s.Sessions, s.Users)...)
	issues = append(issues, checkRevenueConsistency(s.Daily, s.Revenue)...)
	issues = append(issues, checkScoreRanges(s.Users)...)
	return issues
}

// checkFunnelMonotonicity asserts users_at_purchase ≤ users_at_checkout
// ≤ users_at_cart ≤ users_at_product ≤ users_at_site per date.
func checkFunnelMonotonicity(funnel []models.FunnelDaily) []Issue {
	var issues []Issue
	for _, row := range funnel {
		counts := []int{row.UsersAtSite, row.UsersAtProduct, row.UsersAtCart, row.UsersAtCheckout, row.UsersAtPurchase}
		for i := 1; i < len(counts); i++ {
			if counts[i] > counts[i-1] {
				issues = append(issues, Issue{
					Check:    "funnel_monotonicity",
					Severity: SeverityHigh,
					Message: fmt.Sprintf("%s: stage counts not monotonic (%d > %d at depth %d)",
						row.Date.Format("2006-01-02"), counts[i], counts[i-1], i),
				})
				break
			}
		}
	}
	return issues
}

// checkReferentialIntegrity asserts every session user appears in the
// user dimension.
func checkReferentialIntegrity(sessions []models.Session, users []models.UserDimension) []Issue {
	known := make(map[string]struct{}, len(users))
	for _, u := range users {
		known[u.UserID] = struct{}{}
	}
	missing := make(map[string]struct{})
	for _, s := range sessions {
		if _, ok := known[s.UserID]; !ok {
			missing[s.UserID] = struct{}{}
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return []Issue{{
		Check:    "referential_integrity",
		Severity: SeverityHigh,
		Message:  fmt.Sprintf("%d session users missing from user dimension", len(missing)),
	}}
}

// checkRevenueConsistency reconciles the category revenue facts against
// the daily engagement totals within a cent.
func checkRevenueConsistency(daily []models.DailyEngagement, facts []models.RevenueFact) []Issue {
	factTotals := make(map[string]float64)
	for _, f := range facts {
		factTotals[f.Date.Format("2006-01-02")] += f.GrossRevenue
	}

	var issues []Issue
	for _, d := range daily {
		key := d.Date.Format("2006-01-02")
		diff := math.Abs(factTotals[key] - d.TotalRevenue)
		if diff > 0.01 {
			issues = append(issues, Issue{
				Check:    "revenue_consistency",
				Severity: SeverityHigh,
				Message:  fmt.Sprintf("%s: category revenue differs from daily total by %.2f", key, diff),
			})
		}
	}
	return issues
}

func checkScoreRanges(users []models.UserDimension) []Issue {
	var issues []Issue
	for _, u := range users {
		for _, score := range []int{u.RecencyScore, u.FrequencyScore, u.MonetaryScore} {
			if score < 1 || score > 5 {
				issues = append(issues, Issue{
					Check:    "rfm_score_range",
					Severity: SeverityMedium,
					Message:  fmt.Sprintf("user %s has out-of-range RFM score %d", u.UserID, score),
				})
				break
			}
		}
	}
	return issues
}
