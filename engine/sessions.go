// api/engine/sessions.go
package engine

import (
	"sort"

	"mabletask/analytics/models"
)

// Weights applied per event type when scoring session engagement.
var engagementWeights = map[string]float64{
	models.EventPageView:      1,
	models.EventProductView:   2,
	models.EventSearch:        1.5,
	models.EventAddToCart:     5,
	models.EventBeginCheckout: 10,
	models.EventPurchase:      20,
}

// BuildSessions collapses events sharing a session_id into one session
// row. Sessions are pre-assigned upstream, never inferred from idle
// gaps. Sessions whose duration exceeds maxSessionHours are dropped
// entirely; clock-skewed or bot sessions would otherwise corrupt every
// downstream average.
func BuildSessions(events []models.Event, maxSessionHours float64) []models.Session {
	grouped := make(map[string][]models.Event)
	for _, ev := range events {
		grouped[ev.SessionID] = append(grouped[ev.SessionID], ev)
	}

	sessions := make([]models.Session, 0, len(grouped))
	for _, sessionID := range sortedKeys(grouped) {
		evs := grouped[sessionID]
		// Chronological order with event_id as tie-break keeps
		// first-touch attribution deterministic.
		sort.Slice(evs, func(i, j int) bool {
			if !evs[i].Timestamp.Equal(evs[j].Timestamp) {
				return evs[i].Timestamp.Before(evs[j].Timestamp)
			}
			return evs[i].EventID < evs[j].EventID
		})

		first := evs[0]
		s := models.Session{
			SessionID:     sessionID,
			UserID:        first.UserID,
			SessionStart:  first.Timestamp,
			SessionEnd:    evs[len(evs)-1].Timestamp,
			DeviceType:    first.DeviceType,
			CountryCode:   first.CountryCode,
			TrafficSource: first.TrafficSource,
			EventCount:    len(evs),
		}

		for _, ev := range evs {
			switch ev.EventType {
			case models.EventPageView:
				s.PageViews++
			case models.EventProductView:
				s.ProductViews++
			case models.EventSearch:
				s.Searches++
			case models.EventAddToCart:
				s.CartAdds++
			case models.EventBeginCheckout:
				s.CheckoutStarts++
			case models.EventPurchase:
				s.Purchases++
			}
			s.SessionRevenue += ev.RevenueAmount
		}

		s.DurationSeconds = s.SessionEnd.Sub(s.SessionStart).Seconds()
		if maxSessionHours > 0 && s.DurationSeconds > maxSessionHours*3600 {
			continue
		}

		s.EngagementScore = engagementWeights[models.EventPageView]*float64(s.PageViews) +
			engagementWeights[models.EventProductView]*float64(s.ProductViews) +
			engagementWeights[models.EventSearch]*float64(s.Searches) +
			engagementWeights[models.EventAddToCart]*float64(s.CartAdds) +
			engagementWeights[models.EventBeginCheckout]*float64(s.CheckoutStarts) +
			engagementWeights[models.EventPurchase]*float64(s.Purchases)
		s.DurationBucket = durationBucket(s.DurationSeconds)
		s.QualityTier = sessionQualityTier(s)

		sessions = append(sessions, s)
	}
	return sessions
}

func durationBucket(seconds float64) string {
	switch {
	case seconds < 30:
		return "Bounce"
	case seconds < 120:
		return "Quick"
	case seconds < 600:
		return "Engaged"
	case seconds < 1800:
		return "Deep"
	default:
		return "Extended"
	}
}

// sessionQualityTier labels a session by the strongest intent signal it
// contains; the first matching rule wins.
func sessionQualityTier(s models.Session) string {
	switch {
	case s.Purchases > 0:
		return "High Value"
	case s.CheckoutStarts > 0:
		return "High Intent"
	case s.CartAdds > 0:
		return "Engaged"
	case s.ProductViews >= 3:
		return "Browsing"
	default:
		return "Low Engagement"
	}
}
