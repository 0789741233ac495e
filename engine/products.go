// api/engine/products.go
package engine

import (
	"mabletask/analytics/models"
)

// UnknownCategory labels rows whose event carried no category and rows
// left-joined against a missing product reference.
const UnknownCategory = "Unknown"

type productAccum struct {
	views     int
	cartAdds  int
	purchases int
	revenue   float64
	viewers   map[string]struct{}
	carters   map[string]struct{}
	buyers    map[string]struct{}
	category  string
}

// BuildProductPerformance aggregates events carrying a product_id into
// one row per product, left-joined against the product reference; facts
// for products absent from the reference are kept with default-filled
// attributes, never dropped.
func BuildProductPerformance(events []models.Event, products []models.ProductRef) []models.ProductPerformance {
	refs := make(map[string]models.ProductRef, len(products))
	for _, p := range products {
		refs[p.ProductID] = p
	}

	accums := make(map[string]*productAccum)
	for _, ev := range events {
		if ev.ProductID == "" {
			continue
		}
		acc, ok := accums[ev.ProductID]
		if !ok {
			acc = &productAccum{
				viewers: make(map[string]struct{}),
				carters: make(map[string]struct{}),
				buyers:  make(map[string]struct{}),
			}
			accums[ev.ProductID] = acc
		}
		if acc.category == "" {
			acc.category = ev.Category
		}
		switch ev.EventType {
		case models.EventProductView:
			acc.views++
			acc.viewers[ev.UserID] = struct{}{}
		case models.EventAddToCart:
			acc.cartAdds++
			acc.carters[ev.UserID] = struct{}{}
		case models.EventPurchase:
			acc.purchases++
			acc.buyers[ev.UserID] = struct{}{}
			acc.revenue += ev.RevenueAmount
		}
	}

	// Revenue tiers are population-relative: the 90th/50th percentile of
	// the current batch, recomputed every run.
	revenues := make([]float64, 0, len(accums))
	for _, acc := range accums {
		revenues = append(revenues, acc.revenue)
	}
	p90 := percentile(revenues, 0.90)
	p50 := percentile(revenues, 0.50)

	rows := make([]models.ProductPerformance, 0, len(accums))
	for _, productID := range sortedKeys(accums) {
		acc := accums[productID]

		row := models.ProductPerformance{
			ProductID:       productID,
			ProductName:     UnknownCategory,
			Category:        acc.category,
			TotalViews:      acc.views,
			CartAdds:        acc.cartAdds,
			Purchases:       acc.purchases,
			UniqueViewers:   len(acc.viewers),
			UniqueCartUsers: len(acc.carters),
			UniqueBuyers:    len(acc.buyers),
			TotalRevenue:    acc.revenue,
		}
		if ref, ok := refs[productID]; ok {
			row.ProductName = ref.ProductName
			row.Category = ref.Category
		}
		if row.Category == "" {
			row.Category = UnknownCategory
		}

		views := float64(acc.views)
		carts := float64(acc.cartAdds)
		purchases := float64(acc.purchases)
		row.ViewToCartRate = SafeDiv(carts, views)
		row.CartToPurchaseRate = SafeDiv(purchases, carts)
		row.OverallConversionRate = SafeDiv(purchases, views)
		row.CartAbandonmentRate = SafeDiv(carts-purchases, carts)
		row.AvgOrderValue = SafeDiv(acc.revenue, purchases)

		row.RevenueTier = revenueTier(acc.revenue, p90, p50)
		row.ConversionTier = conversionTier(row.OverallConversionRate)
		row.ProductHealth = productHealth(row)

		rows = append(rows, row)
	}
	return rows
}

func revenueTier(revenue, p90, p50 float64) string {
	switch {
	case revenue <= 0:
		return "No Sales"
	case revenue >= p90:
		return "Top Performer"
	case revenue >= p50:
		return "Above Average"
	default:
		return "Below Average"
	}
}

// conversionTier uses fixed absolute thresholds rather than the batch
// distribution.
func conversionTier(rate float64) string {
	switch {
	case rate >= 0.10:
		return "High"
	case rate >= 0.05:
		return "Average"
	case rate >= 0.01:
		return "Low"
	default:
		return "Very Low"
	}
}

func productHealth(row models.ProductPerformance) string {
	switch {
	case row.TotalRevenue > 0 && row.OverallConversionRate > 0.05:
		return "Star"
	case row.TotalViews > 100 && row.OverallConversionRate <= 0.02:
		return "Underperformer"
	case row.TotalViews < 10:
		return "Low Visibility"
	default:
		return "Standard"
	}
}
