// api/engine/daily.go
package engine

import (
	"time"

	"mabletask/analytics/models"
)

type dailyAccum struct {
	users    map[string]struct{}
	sessions map[string]struct{}

	totalEvents    int
	pageViews      int
	productViews   int
	searches       int
	cartAdds       int
	checkoutStarts int
	purchases      int
	revenue        float64

	deviceSessions map[string]map[string]struct{}
	sourceSessions map[string]map[string]struct{}

	// Session-table joins, keyed on session start date.
	sessionCount      int
	durationSum       float64
	eventsSum         float64
	engagementSum     float64
	convertedSessions int
}

// BuildDailyEngagement rolls events and surviving sessions up into one
// KPI row per calendar date, ordered ascending, with trailing 7-period
// means and fixed-offset day-over-day / week-over-week deltas.
func BuildDailyEngagement(events []models.Event, sessions []models.Session) []models.DailyEngagement {
	byDate := make(map[time.Time]*dailyAccum)
	day := func(d time.Time) *dailyAccum {
		acc, ok := byDate[d]
		if !ok {
			acc = &dailyAccum{
				users:          make(map[string]struct{}),
				sessions:       make(map[string]struct{}),
				deviceSessions: make(map[string]map[string]struct{}),
				sourceSessions: make(map[string]map[string]struct{}),
			}
			byDate[d] = acc
		}
		return acc
	}

	for _, ev := range events {
		acc := day(dateOf(ev.Timestamp))
		acc.users[ev.UserID] = struct{}{}
		acc.sessions[ev.SessionID] = struct{}{}
		acc.totalEvents++
		switch ev.EventType {
		case models.EventPageView:
			acc.pageViews++
		case models.EventProductView:
			acc.productViews++
		case models.EventSearch:
			acc.searches++
		case models.EventAddToCart:
			acc.cartAdds++
		case models.EventBeginCheckout:
			acc.checkoutStarts++
		case models.EventPurchase:
			acc.purchases++
		}
		acc.revenue += ev.RevenueAmount

		if ev.DeviceType != "" {
			set, ok := acc.deviceSessions[ev.DeviceType]
			if !ok {
				set = make(map[string]struct{})
				acc.deviceSessions[ev.DeviceType] = set
			}
			set[ev.SessionID] = struct{}{}
		}
		if ev.TrafficSource != "" {
			set, ok := acc.sourceSessions[ev.TrafficSource]
			if !ok {
				set = make(map[string]struct{})
				acc.sourceSessions[ev.TrafficSource] = set
			}
			set[ev.SessionID] = struct{}{}
		}
	}

	// Session-level averages join on the session start date. Sessions
	// filtered out by the duration cap never reach this point.
	for _, s := range sessions {
		acc := day(dateOf(s.SessionStart))
		acc.sessionCount++
		acc.durationSum += s.DurationSeconds
		acc.eventsSum += float64(s.EventCount)
		acc.engagementSum += s.EngagementScore
		if s.Purchases > 0 {
			acc.convertedSessions++
		}
	}

	dates := sortedDates(byDate)
	rows := make([]models.DailyEngagement, 0, len(dates))
	for _, d := range dates {
		acc := byDate[d]
		n := float64(acc.sessionCount)
		row := models.DailyEngagement{
			Date:        d,
			ActiveUsers: len(acc.users),
			Sessions:    len(acc.sessions),
			TotalEvents: acc.totalEvents,

			PageViews:      acc.pageViews,
			ProductViews:   acc.productViews,
			Searches:       acc.searches,
			CartAdds:       acc.cartAdds,
			CheckoutStarts: acc.checkoutStarts,
			Purchases:      acc.purchases,

			MobileSessions:  len(acc.deviceSessions[models.DeviceMobile]),
			DesktopSessions: len(acc.deviceSessions[models.DeviceDesktop]),
			TabletSessions:  len(acc.deviceSessions[models.DeviceTablet]),

			OrganicSessions:    len(acc.sourceSessions[models.SourceOrganic]),
			PaidSearchSessions: len(acc.sourceSessions[models.SourcePaidSearch]),
			SocialSessions:     len(acc.sourceSessions[models.SourceSocial]),
			EmailSessions:      len(acc.sourceSessions[models.SourceEmail]),
			DirectSessions:     len(acc.sourceSessions[models.SourceDirect]),
			ReferralSessions:   len(acc.sourceSessions[models.SourceReferral]),

			AvgSessionDuration:  SafeDiv(acc.durationSum, n),
			AvgEventsPerSession: SafeDiv(acc.eventsSum, n),
			AvgEngagementScore:  SafeDiv(acc.engagementSum, n),
			ConvertedSessions:   acc.convertedSessions,

			TotalRevenue: acc.revenue,
		}
		row.SessionConversionRate = SafeDiv(float64(acc.convertedSessions), float64(row.Sessions))
		row.RevenuePerUser = SafeDiv(acc.revenue, float64(row.ActiveUsers))
		row.EventsPerUser = SafeDiv(float64(acc.totalEvents), float64(row.ActiveUsers))
		rows = append(rows, row)
	}

	// Rolling statistics over the date-ordered sequence.
	activeUsers := make([]float64, len(rows))
	revenue := make([]float64, len(rows))
	convRate := make([]float64, len(rows))
	for i, row := range rows {
		activeUsers[i] = float64(row.ActiveUsers)
		revenue[i] = row.TotalRevenue
		convRate[i] = row.SessionConversionRate
	}

	users7d := rollingMean(activeUsers, 7)
	revenue7d := rollingMean(revenue, 7)
	conv7d := rollingMean(convRate, 7)
	usersDoD := pctChange(activeUsers, 1)
	usersWoW := pctChange(activeUsers, 7)
	revDoD := pctChange(revenue, 1)
	revWoW := pctChange(revenue, 7)

	for i := range rows {
		rows[i].ActiveUsers7DAvg = users7d[i]
		rows[i].TotalRevenue7DAvg = revenue7d[i]
		rows[i].ConversionRate7DAvg = conv7d[i]
		rows[i].ActiveUsersDoDPct = usersDoD[i]
		rows[i].ActiveUsersWoWPct = usersWoW[i]
		rows[i].RevenueDoDPct = revDoD[i]
		rows[i].RevenueWoWPct = revWoW[i]
	}
	return rows
}
