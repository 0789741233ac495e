package engine

import (
	"time"

	"mabletask/analytics/models"
)

var testDay = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

type evOpt func(*models.Event)

func withProduct(productID, category string) evOpt {
	return func(e *models.Event) {
		e.ProductID = productID
		e.Category = category
	}
}

func withRevenue(amount float64) evOpt {
	return func(e *models.Event) { e.RevenueAmount = amount }
}

func withDevice(device string) evOpt {
	return func(e *models.Event) { e.DeviceType = device }
}

func withSource(source string) evOpt {
	return func(e *models.Event) { e.TrafficSource = source }
}

func ev(id, userID, sessionID, eventType string, ts time.Time, opts ...evOpt) models.Event {
	e := models.Event{
		EventID:       id,
		EventType:     eventType,
		UserID:        userID,
		SessionID:     sessionID,
		Timestamp:     ts,
		DeviceType:    models.DeviceDesktop,
		CountryCode:   "US",
		TrafficSource: models.SourceOrganic,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}
