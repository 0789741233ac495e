// api/models/event.go
package models

import "time"

// Event types emitted by the storefront tracker.
const (
	EventPageView       = "page_view"
	EventProductView    = "product_view"
	EventAddToCart      = "add_to_cart"
	EventRemoveFromCart = "remove_from_cart"
	EventBeginCheckout  = "begin_checkout"
	EventPurchase       = "purchase"
	EventSearch         = "search"
	EventSignup         = "signup"
	EventLogin          = "login"
)

// Device types attached to events.
const (
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"
	DeviceTablet  = "tablet"
)

// Traffic sources attached to events.
const (
	SourceOrganic    = "organic"
	SourcePaidSearch = "paid_search"
	SourceSocial     = "social"
	SourceEmail      = "email"
	SourceDirect     = "direct"
	SourceReferral   = "referral"
)

// Event is a single validated behavioral event. Upstream ingestion
// guarantees eventId, userId, sessionId and timestamp are set and that
// revenueAmount is non-zero only on purchase events.
type Event struct {
	EventID       string    `json:"eventId"`
	EventType     string    `json:"eventType"`
	UserID        string    `json:"userId"`
	SessionID     string    `json:"sessionId"`
	Timestamp     time.Time `json:"timestamp"`
	DeviceType    string    `json:"deviceType"`
	CountryCode   string    `json:"countryCode"`
	TrafficSource string    `json:"trafficSource"`
	ProductID     string    `json:"productId,omitempty"`
	Category      string    `json:"category,omitempty"`
	RevenueAmount float64   `json:"revenueAmount"`
}

// ProductRef is a row from the static product reference table.
type ProductRef struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Category    string  `json:"category"`
	BasePrice   float64 `json:"basePrice"`
}

// UserRef is a row from the static user reference table.
type UserRef struct {
	UserID           string    `json:"userId"`
	CountryCode      string    `json:"countryCode"`
	AccountCreatedAt time.Time `json:"accountCreatedAt"`
}
