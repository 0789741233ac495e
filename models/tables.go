// api/models/tables.go
package models

import "time"

// The derived tables below are immutable outputs of a single computation
// pass: a re-run fully replaces every row.

// Session is one row per session_id with timing, first-touch attribution
// and per-type event counts.
type Session struct {
	SessionID       string    `json:"sessionId"`
	UserID          string    `json:"userId"`
	SessionStart    time.Time `json:"sessionStart"`
	SessionEnd      time.Time `json:"sessionEnd"`
	DurationSeconds float64   `json:"durationSeconds"`
	DeviceType      string    `json:"deviceType"`
	CountryCode     string    `json:"countryCode"`
	TrafficSource   string    `json:"trafficSource"`
	EventCount      int       `json:"eventCount"`
	PageViews       int       `json:"pageViews"`
	ProductViews    int       `json:"productViews"`
	Searches        int       `json:"searches"`
	CartAdds        int       `json:"cartAdds"`
	CheckoutStarts  int       `json:"checkoutStarts"`
	Purchases       int       `json:"purchases"`
	SessionRevenue  float64   `json:"sessionRevenue"`
	EngagementScore float64   `json:"engagementScore"`
	DurationBucket  string    `json:"durationBucket"`
	QualityTier     string    `json:"qualityTier"`
}

// UserJourney is one row per (user, session, event date) holding the
// first-occurrence timestamp per funnel stage and the derived deepest
// stage and drop-off classification.
type UserJourney struct {
	UserID    string    `json:"userId"`
	SessionID string    `json:"sessionId"`
	EventDate time.Time `json:"eventDate"`

	SiteAt     *time.Time `json:"siteAt,omitempty"`
	ProductAt  *time.Time `json:"productAt,omitempty"`
	CartAt     *time.Time `json:"cartAt,omitempty"`
	CheckoutAt *time.Time `json:"checkoutAt,omitempty"`
	PurchaseAt *time.Time `json:"purchaseAt,omitempty"`

	ReachedSite     bool `json:"reachedSite"`
	ReachedProduct  bool `json:"reachedProduct"`
	ReachedCart     bool `json:"reachedCart"`
	ReachedCheckout bool `json:"reachedCheckout"`
	ReachedPurchase bool `json:"reachedPurchase"`

	DeepestStage string `json:"deepestStage"`
	DropOffStage string `json:"dropOffStage"`

	SiteToProductSeconds      *float64 `json:"siteToProductSeconds,omitempty"`
	ProductToCartSeconds      *float64 `json:"productToCartSeconds,omitempty"`
	CartToCheckoutSeconds     *float64 `json:"cartToCheckoutSeconds,omitempty"`
	CheckoutToPurchaseSeconds *float64 `json:"checkoutToPurchaseSeconds,omitempty"`
}

// ProductPerformance is one row per product_id with funnel conversion
// rates and revenue/performance tiers.
type ProductPerformance struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Category    string `json:"category"`

	TotalViews     int `json:"totalViews"`
	CartAdds       int `json:"cartAdds"`
	Purchases      int `json:"purchases"`
	UniqueViewers  int `json:"uniqueViewers"`
	UniqueCartUsers int `json:"uniqueCartUsers"`
	UniqueBuyers   int `json:"uniqueBuyers"`

	TotalRevenue          float64 `json:"totalRevenue"`
	ViewToCartRate        float64 `json:"viewToCartRate"`
	CartToPurchaseRate    float64 `json:"cartToPurchaseRate"`
	OverallConversionRate float64 `json:"overallConversionRate"`
	CartAbandonmentRate   float64 `json:"cartAbandonmentRate"`
	AvgOrderValue         float64 `json:"avgOrderValue"`

	RevenueTier    string `json:"revenueTier"`
	ConversionTier string `json:"conversionTier"`
	ProductHealth  string `json:"productHealth"`
}

// DailyEngagement is one row per calendar date with KPI counts, derived
// ratios and rolling statistics.
type DailyEngagement struct {
	Date time.Time `json:"date"`

	ActiveUsers int `json:"activeUsers"`
	Sessions    int `json:"sessions"`
	TotalEvents int `json:"totalEvents"`

	PageViews      int `json:"pageViews"`
	ProductViews   int `json:"productViews"`
	Searches       int `json:"searches"`
	CartAdds       int `json:"cartAdds"`
	CheckoutStarts int `json:"checkoutStarts"`
	Purchases      int `json:"purchases"`

	MobileSessions  int `json:"mobileSessions"`
	DesktopSessions int `json:"desktopSessions"`
	TabletSessions  int `json:"tabletSessions"`

	OrganicSessions    int `json:"organicSessions"`
	PaidSearchSessions int `json:"paidSearchSessions"`
	SocialSessions     int `json:"socialSessions"`
	EmailSessions      int `json:"emailSessions"`
	DirectSessions     int `json:"directSessions"`
	ReferralSessions   int `json:"referralSessions"`

	AvgSessionDuration  float64 `json:"avgSessionDuration"`
	AvgEventsPerSession float64 `json:"avgEventsPerSession"`
	AvgEngagementScore  float64 `json:"avgEngagementScore"`
	ConvertedSessions   int     `json:"convertedSessions"`

	TotalRevenue          float64 `json:"totalRevenue"`
	SessionConversionRate float64 `json:"sessionConversionRate"`
	RevenuePerUser        float64 `json:"revenuePerUser"`
	EventsPerUser         float64 `json:"eventsPerUser"`

	ActiveUsers7DAvg    float64 `json:"activeUsers7dAvg"`
	TotalRevenue7DAvg   float64 `json:"totalRevenue7dAvg"`
	ConversionRate7DAvg float64 `json:"conversionRate7dAvg"`

	ActiveUsersDoDPct float64 `json:"activeUsersDodPct"`
	ActiveUsersWoWPct float64 `json:"activeUsersWowPct"`
	RevenueDoDPct     float64 `json:"revenueDodPct"`
	RevenueWoWPct     float64 `json:"revenueWowPct"`
}

// RevenueFact is one row per (date, category) over purchase events with
// positive revenue.
type RevenueFact struct {
	Date     time.Time `json:"date"`
	Category string    `json:"category"`

	Transactions   int `json:"transactions"`
	UniqueBuyers   int `json:"uniqueBuyers"`
	UniqueSessions int `json:"uniqueSessions"`

	GrossRevenue  float64 `json:"grossRevenue"`
	AvgOrderValue float64 `json:"avgOrderValue"`
	MinOrderValue float64 `json:"minOrderValue"`
	MaxOrderValue float64 `json:"maxOrderValue"`

	MobileRevenue  float64 `json:"mobileRevenue"`
	DesktopRevenue float64 `json:"desktopRevenue"`
	TabletRevenue  float64 `json:"tabletRevenue"`

	OrganicRevenue    float64 `json:"organicRevenue"`
	PaidSearchRevenue float64 `json:"paidSearchRevenue"`
	SocialRevenue     float64 `json:"socialRevenue"`
	EmailRevenue      float64 `json:"emailRevenue"`
	DirectRevenue     float64 `json:"directRevenue"`
	ReferralRevenue   float64 `json:"referralRevenue"`

	CategoryRevenueShare float64 `json:"categoryRevenueShare"`
	Revenue7DSum         float64 `json:"revenue7dSum"`
	Revenue30DSum        float64 `json:"revenue30dSum"`
	CumulativeRevenue    float64 `json:"cumulativeRevenue"`
	RevenueDoDPct        float64 `json:"revenueDodPct"`
	RevenueWoWPct        float64 `json:"revenueWowPct"`
}

// FunnelDaily is one row per date with deduplicated per-stage reach
// counts and conversion-rate time series.
type FunnelDaily struct {
	Date time.Time `json:"date"`

	UsersAtSite     int `json:"usersAtSite"`
	UsersAtProduct  int `json:"usersAtProduct"`
	UsersAtCart     int `json:"usersAtCart"`
	UsersAtCheckout int `json:"usersAtCheckout"`
	UsersAtPurchase int `json:"usersAtPurchase"`

	SessionsAtSite     int `json:"sessionsAtSite"`
	SessionsAtProduct  int `json:"sessionsAtProduct"`
	SessionsAtCart     int `json:"sessionsAtCart"`
	SessionsAtCheckout int `json:"sessionsAtCheckout"`
	SessionsAtPurchase int `json:"sessionsAtPurchase"`

	ConvertedUsers         int `json:"convertedUsers"`
	CheckoutAbandonedUsers int `json:"checkoutAbandonedUsers"`
	CartAbandonedUsers     int `json:"cartAbandonedUsers"`
	ProductExitUsers       int `json:"productExitUsers"`
	LandingBounceUsers     int `json:"landingBounceUsers"`
	NoEngagementUsers      int `json:"noEngagementUsers"`

	SiteToProductRate      float64 `json:"siteToProductRate"`
	ProductToCartRate      float64 `json:"productToCartRate"`
	CartToCheckoutRate     float64 `json:"cartToCheckoutRate"`
	CheckoutToPurchaseRate float64 `json:"checkoutToPurchaseRate"`
	OverallConversionRate  float64 `json:"overallConversionRate"`
	CartAbandonmentRate    float64 `json:"cartAbandonmentRate"`

	OverallConversionRate7DAvg    float64 `json:"overallConversionRate7dAvg"`
	CartAbandonmentRate7DAvg      float64 `json:"cartAbandonmentRate7dAvg"`
	OverallConversionRatePrevWeek float64 `json:"overallConversionRatePrevWeek"`
}

// UserDimension is one row per user_id with lifetime counters, RFM
// scores and composite tiers.
type UserDimension struct {
	UserID           string     `json:"userId"`
	CountryCode      string     `json:"countryCode"`
	AccountCreatedAt *time.Time `json:"accountCreatedAt,omitempty"`
	FirstActivityAt  *time.Time `json:"firstActivityAt,omitempty"`
	LastActivityAt   *time.Time `json:"lastActivityAt,omitempty"`

	TotalSessions   int     `json:"totalSessions"`
	TotalEvents     int     `json:"totalEvents"`
	TotalPurchases  int     `json:"totalPurchases"`
	LifetimeRevenue float64 `json:"lifetimeRevenue"`

	RecencyDays    int `json:"recencyDays"`
	RecencyScore   int `json:"recencyScore"`
	FrequencyScore int `json:"frequencyScore"`
	MonetaryScore  int `json:"monetaryScore"`
	RFMTotalScore  int `json:"rfmTotalScore"`

	CustomerValueTier string `json:"customerValueTier"`
	ActivityStatus    string `json:"activityStatus"`
	BuyerStatus       string `json:"buyerStatus"`
}

// DateDimension is pure calendar arithmetic over a generated range.
type DateDimension struct {
	Date         time.Time `json:"date"`
	DateKey      int       `json:"dateKey"`
	Year         int       `json:"year"`
	Quarter      int       `json:"quarter"`
	Month        int       `json:"month"`
	MonthName    string    `json:"monthName"`
	ISOWeek      int       `json:"isoWeek"`
	DayOfMonth   int       `json:"dayOfMonth"`
	DayOfWeek    int       `json:"dayOfWeek"`
	DayName      string    `json:"dayName"`
	IsWeekend    bool      `json:"isWeekend"`
	IsMonthStart bool      `json:"isMonthStart"`
	IsMonthEnd   bool      `json:"isMonthEnd"`
}

// Snapshot bundles the output of one full computation pass. GeneratedAt
// is the only field excluded from idempotence comparisons.
type Snapshot struct {
	AsOf        time.Time `json:"asOf"`
	GeneratedAt time.Time `json:"generatedAt"`

	Sessions []Session            `json:"sessions"`
	Journeys []UserJourney        `json:"journeys"`
	Products []ProductPerformance `json:"products"`
	Daily    []DailyEngagement    `json:"daily"`
	Revenue  []RevenueFact        `json:"revenue"`
	Funnel   []FunnelDaily        `json:"funnel"`
	Users    []UserDimension      `json:"users"`
	Dates    []DateDimension      `json:"dates"`
}
