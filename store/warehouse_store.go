// api/store/warehouse_store.go
package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mabletask/analytics/database"
	"mabletask/analytics/models"
)

// WarehouseStore persists the derived tables. Each run fully replaces
// each table (truncate + batch insert); there is no incremental merge.
type WarehouseStore struct {
	DB  *database.ClickHouseClient
	log *zap.Logger
}

func NewWarehouseStore(chClient *database.ClickHouseClient, logger *zap.Logger) *WarehouseStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WarehouseStore{DB: chClient, log: logger}
}

// WriteSnapshot replaces every derived table with the rows of the given
// snapshot. Returns the total number of rows loaded.
func (s *WarehouseStore) WriteSnapshot(ctx context.Context, snap *models.Snapshot) (int, error) {
	total := 0
	writers := []struct {
		table string
		write func(context.Context, *models.Snapshot) (int, error)
	}{
		{"fct_sessions", s.writeSessions},
		{"fct_user_journeys", s.writeJourneys},
		{"fct_product_performance", s.writeProducts},
		{"fct_daily_engagement", s.writeDaily},
		{"fct_revenue", s.writeRevenue},
		{"fct_funnel_daily", s.writeFunnel},
		{"dim_users", s.writeUsers},
		{"dim_dates", s.writeDates},
	}
	for _, w := range writers {
		n, err := w.write(ctx, snap)
		if err != nil {
			return total, fmt.Errorf("failed to load %s: %w", w.table, err)
		}
		s.log.Info("loaded table", zap.String("table", w.table), zap.Int("rows", n))
		total += n
	}
	return total, nil
}

func (s *WarehouseStore) replace(ctx context.Context, table string) error {
	return s.DB.Conn.Exec(ctx, "TRUNCATE TABLE IF EXISTS "+table)
}

func (s *WarehouseStore) writeSessions(ctx context.Context, snap *models.Snapshot) (int, error) {
	if err := s.replace(ctx, "fct_sessions"); err != nil {
		return 0, err
	}
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO fct_sessions (
			session_id, user_id, session_start, session_end, duration_seconds,
			device_type, country_code, traffic_source, event_count,
			page_views, product_views, searches, cart_adds, checkout_starts, purchases,
			session_revenue, engagement_score, duration_bucket, quality_tier, generated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	for _, r := range snap.Sessions {
		if err := batch.Append(
			r.SessionID, r.UserID, r.SessionStart, r.SessionEnd, r.DurationSeconds,
			r.DeviceType, r.CountryCode, r.TrafficSource, r.EventCount,
			r.PageViews, r.ProductViews, r.Searches, r.CartAdds, r.CheckoutStarts, r.Purchases,
			r.SessionRevenue, r.EngagementScore, r.DurationBucket, r.QualityTier, snap.GeneratedAt,
		); err != nil {
			return 0, err
		}
	}
	return len(snap.Sessions), batch.Send()
}

func (s *WarehouseStore) writeJourneys(ctx context.Context, snap *models.Snapshot) (int, error) {
	if err := s.replace(ctx, "fct_user_journeys"); err != nil {
		return 0, err
	}
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO fct_user_journeys (
			user_id, session_id, event_date,
			site_at, product_at, cart_at, checkout_at, purchase_at,
			deepest_stage, drop_off_stage,
			site_to_product_seconds, product_to_cart_seconds,
			cart_to_checkout_seconds, checkout_to_purchase_seconds, generated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	for _, r := range snap.Journeys {
		if err := batch.Append(
			r.UserID, r.SessionID, r.EventDate,
			r.SiteAt, r.ProductAt, r.CartAt, r.CheckoutAt, r.PurchaseAt,
			r.DeepestStage, r.DropOffStage,
			r.SiteToProductSeconds, r.ProductToCartSeconds,
			r.CartToCheckoutSeconds, r.CheckoutToPurchaseSeconds, snap.GeneratedAt,
		); err != nil {
			return 0, err
		}
	}
	return len(snap.Journeys), batch.Send()
}

func (s *WarehouseStore) writeProducts(ctx context.Context, snap *models.Snapshot) (int, error) {
	if err := s.replace(ctx, "fct_product_performance"); err != nil {
		return 0, err
	}
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO fct_product_performance (
			product_id, product_name, category,
			total_views, cart_adds, purchases,
			unique_viewers, unique_cart_users, unique_buyers, total_revenue,
			view_to_cart_rate, cart_to_purchase_rate, overall_conversion_rate,
			cart_abandonment_rate, avg_order_value,
			revenue_tier, conversion_tier, product_health, generated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	for _, r := range snap.Products {
		if err := batch.Append(
			r.ProductID, r.ProductName, r.Category,
			r.TotalViews, r.CartAdds, r.Purchases,
			r.UniqueViewers, r.UniqueCartUsers, r.UniqueBuyers, r.TotalRevenue,
			r.ViewToCartRate, r.CartToPurchaseRate, r.OverallConversionRate,
			r.CartAbandonmentRate, r.AvgOrderValue,
			r.RevenueTier, r.ConversionTier, r.ProductHealth, snap.GeneratedAt,
		); err != nil {
			return 0, err
		}
	}
	return len(snap.Products), batch.Send()
}

func (s *WarehouseStore) writeDaily(ctx context.Context, snap *models.Snapshot) (int, error) {
	if err := s.replace(ctx, "fct_daily_engagement"); err != nil {
		return 0, err
	}
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO fct_daily_engagement (
			date, active_users, sessions, total_events,
			page_views, product_views, searches, cart_adds, checkout_starts, purchases,
			mobile_sessions, desktop_sessions, tablet_sessions,
			organic_sessions, paid_search_sessions, social_sessions,
			email_sessions, direct_sessions, referral_sessions,
			avg_session_duration, avg_events_per_session, avg_engagement_score, converted_sessions,
			total_revenue, session_conversion_rate, revenue_per_user, events_per_user,
			active_users_7d_avg, total_revenue_7d_avg, conversion_rate_7d_avg,
			active_users_dod_pct, active_users_wow_pct, revenue_dod_pct, revenue_wow_pct,
			generated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	for _, r := range snap.Daily {
		if err := batch.Append(
			r.Date, r.ActiveUsers, r.Sessions, r.TotalEvents,
			r.PageViews, r.ProductViews, r.Searches, r.CartAdds, r.CheckoutStarts, r.Purchases,
			r.MobileSessions, r.DesktopSessions, r.TabletSessions,
			r.OrganicSessions, r.PaidSearchSessions, r.SocialSessions,
			r.EmailSessions, r.DirectSessions, r.ReferralSessions,
			r.AvgSessionDuration, r.AvgEventsPerSession, r.AvgEngagementScore, r.ConvertedSessions,
			r.TotalRevenue, r.SessionConversionRate, r.RevenuePerUser, r.EventsPerUser,
			r.ActiveUsers7DAvg, r.TotalRevenue7DAvg, r.ConversionRate7DAvg,
			r.ActiveUsersDoDPct, r.ActiveUsersWoWPct, r.RevenueDoDPct, r.RevenueWoWPct,
			snap.GeneratedAt,
		); err != nil {
			return 0, err
		}
	}
	return len(snap.Daily), batch.Send()
}

func (s *WarehouseStore) writeRevenue(ctx context.Context, snap *models.Snapshot) (int, error) {
	if err := s.replace(ctx, "fct_revenue"); err != nil {
		return 0, err
	}
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO fct_revenue (
			date, category, transactions, unique_buyers, unique_sessions,
			gross_revenue, avg_order_value, min_order_value, max_order_value,
			mobile_revenue, desktop_revenue, tablet_revenue,
			organic_revenue, paid_search_revenue, social_revenue,
			email_revenue, direct_revenue, referral_revenue,
			category_revenue_share, revenue_7d_sum, revenue_30d_sum,
			cumulative_revenue, revenue_dod_pct, revenue_wow_pct, generated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	for _, r := range snap.Revenue {
		if err := batch.Append(
			r.Date, r.Category, r.Transactions, r.UniqueBuyers, r.UniqueSessions,
			r.GrossRevenue, r.AvgOrderValue, r.MinOrderValue, r.MaxOrderValue,
			r.MobileRevenue, r.DesktopRevenue, r.TabletRevenue,
			r.OrganicRevenue, r.PaidSearchRevenue, r.SocialRevenue,
			r.EmailRevenue, r.DirectRevenue, r.ReferralRevenue,
			r.CategoryRevenueShare, r.Revenue7DSum, r.Revenue30DSum,
			r.CumulativeRevenue, r.RevenueDoDPct, r.RevenueWoWPct, snap.GeneratedAt,
		); err != nil {
			return 0, err
		}
	}
	return len(snap.Revenue), batch.Send()
}

func (s *WarehouseStore) writeFunnel(ctx context.Context, snap *models.Snapshot) (int, error) {
	if err := s.replace(ctx, "fct_funnel_daily"); err != nil {
		return 0, err
	}
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO fct_funnel_daily (
			date,
			users_at_site, users_at_product, users_at_cart, users_at_checkout, users_at_purchase,
			sessions_at_site, sessions_at_product, sessions_at_cart, sessions_at_checkout, sessions_at_purchase,
			converted_users, checkout_abandoned_users, cart_abandoned_users,
			product_exit_users, landing_bounce_users, no_engagement_users,
			site_to_product_rate, product_to_cart_rate, cart_to_checkout_rate, checkout_to_purchase_rate,
			overall_conversion_rate, cart_abandonment_rate,
			overall_conversion_rate_7d_avg, cart_abandonment_rate_7d_avg, overall_conversion_rate_prev_week,
			generated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	for _, r := range snap.Funnel {
		if err := batch.Append(
			r.Date,
			r.UsersAtSite, r.UsersAtProduct, r.UsersAtCart, r.UsersAtCheckout, r.UsersAtPurchase,
			r.SessionsAtSite, r.SessionsAtProduct, r.SessionsAtCart, r.SessionsAtCheckout, r.SessionsAtPurchase,
			r.ConvertedUsers, r.CheckoutAbandonedUsers, r.CartAbandonedUsers,
			r.ProductExitUsers, r.LandingBounceUsers, r.NoEngagementUsers,
			r.SiteToProductRate, r.ProductToCartRate, r.CartToCheckoutRate, r.CheckoutToPurchaseRate,
			r.OverallConversionRate, r.CartAbandonmentRate,
			r.OverallConversionRate7DAvg, r.CartAbandonmentRate7DAvg, r.OverallConversionRatePrevWeek,
			snap.GeneratedAt,
		); err != nil {
			return 0, err
		}
	}
	return len(snap.Funnel), batch.Send()
}

func (s *WarehouseStore) writeUsers(ctx context.Context, snap *models.Snapshot) (int, error) {
	if err := s.replace(ctx, "dim_users"); err != nil {
		return 0, err
	}
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO dim_users (
			user_id, country_code, account_created_at, first_activity_at, last_activity_at,
			total_sessions, total_events, total_purchases, lifetime_revenue,
			recency_days, recency_score, frequency_score, monetary_score, rfm_total_score,
			customer_value_tier, activity_status, buyer_status, generated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	for _, r := range snap.Users {
		if err := batch.Append(
			r.UserID, r.CountryCode, r.AccountCreatedAt, r.FirstActivityAt, r.LastActivityAt,
			r.TotalSessions, r.TotalEvents, r.TotalPurchases, r.LifetimeRevenue,
			r.RecencyDays, r.RecencyScore, r.FrequencyScore, r.MonetaryScore, r.RFMTotalScore,
			r.CustomerValueTier, r.ActivityStatus, r.BuyerStatus, snap.GeneratedAt,
		); err != nil {
			return 0, err
		}
	}
	return len(snap.Users), batch.Send()
}

func (s *WarehouseStore) writeDates(ctx context.Context, snap *models.Snapshot) (int, error) {
	if err := s.replace(ctx, "dim_dates"); err != nil {
		return 0, err
	}
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO dim_dates (
			date, date_key, year, quarter, month, month_name, iso_week,
			day_of_month, day_of_week, day_name, is_weekend, is_month_start, is_month_end
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	for _, r := range snap.Dates {
		if err := batch.Append(
			r.Date, r.DateKey, r.Year, r.Quarter, r.Month, r.MonthName, r.ISOWeek,
			r.DayOfMonth, r.DayOfWeek, r.DayName, r.IsWeekend, r.IsMonthStart, r.IsMonthEnd,
		); err != nil {
			return 0, err
		}
	}
	return len(snap.Dates), batch.Send()
}
