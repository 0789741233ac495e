// api/engine/funnel.go
package engine

import (
	"sort"
	"time"

	"mabletask/analytics/models"
)

// Funnel stages in ascending order.
const (
	StageNone     = "none"
	StageSite     = "site"
	StageProduct  = "product_view"
	StageCart     = "cart"
	StageCheckout = "checkout"
	StagePurchase = "purchase"
)

// Drop-off classifications.
const (
	DropConverted         = "converted"
	DropCheckoutAbandoned = "checkout_abandoned"
	DropCartAbandoned     = "cart_abandoned"
	DropProductExit       = "product_exit"
	DropLandingBounce     = "landing_bounce"
	DropNoEngagement      = "no_engagement"
)

type journeyKey struct {
	userID    string
	sessionID string
	date      time.Time
}

// ClassifyJourneys derives per-(user, session, date) funnel progression
// from event timestamps. Stage membership is taken from independent
// per-stage first occurrences: the classifier trusts the data and does
// not require earlier stages to be present, so a purchase with no logged
// checkout still classifies as converted.
func ClassifyJourneys(events []models.Event) []models.UserJourney {
	grouped := make(map[journeyKey]*models.UserJourney)

	for _, ev := range events {
		key := journeyKey{userID: ev.UserID, sessionID: ev.SessionID, date: dateOf(ev.Timestamp)}
		j, ok := grouped[key]
		if !ok {
			j = &models.UserJourney{
				UserID:    ev.UserID,
				SessionID: ev.SessionID,
				EventDate: key.date,
			}
			grouped[key] = j
		}

		ts := ev.Timestamp
		switch ev.EventType {
		case models.EventPageView:
			j.SiteAt = earliest(j.SiteAt, ts)
		case models.EventProductView:
			j.ProductAt = earliest(j.ProductAt, ts)
		case models.EventAddToCart:
			j.CartAt = earliest(j.CartAt, ts)
		case models.EventBeginCheckout:
			j.CheckoutAt = earliest(j.CheckoutAt, ts)
		case models.EventPurchase:
			j.PurchaseAt = earliest(j.PurchaseAt, ts)
		}
	}

	journeys := make([]models.UserJourney, 0, len(grouped))
	for _, j := range grouped {
		j.ReachedSite = j.SiteAt != nil
		j.ReachedProduct = j.ProductAt != nil
		j.ReachedCart = j.CartAt != nil
		j.ReachedCheckout = j.CheckoutAt != nil
		j.ReachedPurchase = j.PurchaseAt != nil

		j.DeepestStage = deepestStage(j)
		j.DropOffStage = dropOffStage(j)

		j.SiteToProductSeconds = stageGapSeconds(j.SiteAt, j.ProductAt)
		j.ProductToCartSeconds = stageGapSeconds(j.ProductAt, j.CartAt)
		j.CartToCheckoutSeconds = stageGapSeconds(j.CartAt, j.CheckoutAt)
		j.CheckoutToPurchaseSeconds = stageGapSeconds(j.CheckoutAt, j.PurchaseAt)

		journeys = append(journeys, *j)
	}

	sort.Slice(journeys, func(i, j int) bool {
		a, b := journeys[i], journeys[j]
		if a.UserID != b.UserID {
			return a.UserID < b.UserID
		}
		if a.SessionID != b.SessionID {
			return a.SessionID < b.SessionID
		}
		return a.EventDate.Before(b.EventDate)
	})
	return journeys
}

func earliest(current *time.Time, ts time.Time) *time.Time {
	if current == nil || ts.Before(*current) {
		t := ts
		return &t
	}
	return current
}

func deepestStage(j *models.UserJourney) string {
	switch {
	case j.ReachedPurchase:
		return StagePurchase
	case j.ReachedCheckout:
		return StageCheckout
	case j.ReachedCart:
		return StageCart
	case j.ReachedProduct:
		return StageProduct
	case j.ReachedSite:
		return StageSite
	default:
		return StageNone
	}
}

// dropOffStage classifies where the journey terminated; the first
// matching rule wins.
func dropOffStage(j *models.UserJourney) string {
	switch {
	case j.ReachedPurchase:
		return DropConverted
	case j.ReachedCheckout:
		return DropCheckoutAbandoned
	case j.ReachedCart:
		return DropCartAbandoned
	case j.ReachedProduct:
		return DropProductExit
	case j.ReachedSite:
		return DropLandingBounce
	default:
		return DropNoEngagement
	}
}

// stageGapSeconds is the signed gap between two first-occurrence
// timestamps, nil when either endpoint is missing. Negative gaps are
// reported as-is; out-of-order stage data is surfaced, not masked.
func stageGapSeconds(from, to *time.Time) *float64 {
	if from == nil || to == nil {
		return nil
	}
	gap := to.Sub(*from).Seconds()
	return &gap
}
