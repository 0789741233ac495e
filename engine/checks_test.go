package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mabletask/analytics/models"
)

func TestCheckSnapshotCleanInputProducesNoIssues(t *testing.T) {
	snap := &models.Snapshot{
		Sessions: []models.Session{{SessionID: "s1", UserID: "u1"}},
		Users: []models.UserDimension{
			{UserID: "u1", RecencyScore: 5, FrequencyScore: 3, MonetaryScore: 1},
		},
		Funnel: []models.FunnelDaily{
			{Date: testDay, UsersAtSite: 10, UsersAtProduct: 5, UsersAtCart: 3, UsersAtCheckout: 2, UsersAtPurchase: 1},
		},
		Daily:   []models.DailyEngagement{{Date: testDay, TotalRevenue: 100}},
		Revenue: []models.RevenueFact{{Date: testDay, Category: "Shoes", GrossRevenue: 100}},
	}

	assert.Empty(t, CheckSnapshot(snap))
}

func TestCheckFunnelMonotonicity(t *testing.T) {
	funnel := []models.FunnelDaily{
		{Date: testDay, UsersAtSite: 5, UsersAtProduct: 3, UsersAtCart: 4}, // cart > product
		{Date: testDay.AddDate(0, 0, 1), UsersAtSite: 5, UsersAtProduct: 3},
	}

	issues := checkFunnelMonotonicity(funnel)
	require.Len(t, issues, 1)
	assert.Equal(t, "funnel_monotonicity", issues[0].Check)
	assert.Equal(t, SeverityHigh, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "2024-03-10")
}

func TestCheckReferentialIntegrity(t *testing.T) {
	sessions := []models.Session{
		{SessionID: "s1", UserID: "u1"},
		{SessionID: "s2", UserID: "u-ghost"},
		{SessionID: "s3", UserID: "u-ghost"},
	}
	users := []models.UserDimension{{UserID: "u1"}}

	issues := checkReferentialIntegrity(sessions, users)
	require.Len(t, issues, 1)
	assert.Equal(t, "referential_integrity", issues[0].Check)
	assert.Contains(t, issues[0].Message, "1 session users")
}

func TestCheckRevenueConsistency(t *testing.T) {
	daily := []models.DailyEngagement{
		{Date: testDay, TotalRevenue: 100},
		{Date: testDay.AddDate(0, 0, 1), TotalRevenue: 50},
	}
	facts := []models.RevenueFact{
		{Date: testDay, Category: "A", GrossRevenue: 60},
		{Date: testDay, Category: "B", GrossRevenue: 40},
		{Date: testDay.AddDate(0, 0, 1), Category: "A", GrossRevenue: 30}, // 20 missing
	}

	issues := checkRevenueConsistency(daily, facts)
	require.Len(t, issues, 1)
	assert.Equal(t, "revenue_consistency", issues[0].Check)
	assert.Contains(t, issues[0].Message, "20.00")
}

func TestCheckRevenueConsistencyToleratesRounding(t *testing.T) {
	daily := []models.DailyEngagement{{Date: testDay, TotalRevenue: 100.004}}
	facts := []models.RevenueFact{{Date: testDay, Category: "A", GrossRevenue: 100}}
	assert.Empty(t, checkRevenueConsistency(daily, facts))
}

func TestCheckScoreRanges(t *testing.T) {
	users := []models.UserDimension{
		{UserID: "u1", RecencyScore: 1, FrequencyScore: 5, MonetaryScore: 3},
		{UserID: "u2", RecencyScore: 0, FrequencyScore: 2, MonetaryScore: 2},
		{UserID: "u3", RecencyScore: 2, FrequencyScore: 6, MonetaryScore: 2},
	}

	issues := checkScoreRanges(users)
	require.Len(t, issues, 2)
	assert.Equal(t, "rfm_score_range", issues[0].Check)
	assert.Equal(t, SeverityMedium, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "u2")
	assert.Contains(t, issues[1].Message, "u3")
}
