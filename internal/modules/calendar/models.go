// Package calendar serves the weekly economic calendar with a short-lived
// in-memory cache and a persisted stale copy.
package calendar

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"
)

// ErrUnavailable is returned when the feed fails and no copy is cached
var ErrUnavailable = errors.New("economic calendar unavailable")

// Impact levels
const (
	ImpactHigh   = "high"
	ImpactMedium = "medium"
	ImpactLow    = "low"
)

// EconomicEvent is one calendar entry
type EconomicEvent struct {
	ID       string `json:"id" msgpack:"id"`
	Time     string `json:"time" msgpack:"time"` // HH:MM in UTC
	Currency string `json:"currency" msgpack:"currency"`
	Event    string `json:"event" msgpack:"event"`
	Impact   string `json:"impact" msgpack:"impact"`
	Actual   string `json:"actual,omitempty" msgpack:"actual,omitempty"`
	Forecast string `json:"forecast,omitempty" msgpack:"forecast,omitempty"`
	Previous string `json:"previous,omitempty" msgpack:"previous,omitempty"`
	Date     string `json:"date" msgpack:"date"` // YYYY-MM-DD in UTC
}

// feedEvent is one entry of the upstream JSON feed
type feedEvent struct {
	Title    string `json:"title"`
	Country  string `json:"country"`
	Date     string `json:"date"`
	Impact   string `json:"impact"`
	Forecast string `json:"forecast"`
	Previous string `json:"previous"`
	Actual   string `json:"actual"`
}

// normalizeImpact maps feed impact labels to high, medium or low
func normalizeImpact(impact string) string {
	switch strings.ToLower(strings.TrimSpace(impact)) {
	case "high":
		return ImpactHigh
	case "medium":
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// toEvent converts a feed entry. Entries without currency or title are
// dropped.
func (f feedEvent) toEvent() (EconomicEvent, bool) {
	currency := strings.TrimSpace(f.Country)
	title := strings.TrimSpace(f.Title)
	if currency == "" || title == "" {
		return EconomicEvent{}, false
	}

	event := EconomicEvent{
		ID:       eventID(currency, title, f.Date),
		Currency: currency,
		Event:    title,
		Impact:   normalizeImpact(f.Impact),
		Actual:   strings.TrimSpace(f.Actual),
		Forecast: strings.TrimSpace(f.Forecast),
		Previous: strings.TrimSpace(f.Previous),
	}

	if at, err := time.Parse(time.RFC3339, f.Date); err == nil {
		at = at.UTC()
		event.Date = at.Format("2006-01-02")
		event.Time = at.Format("15:04")
	}
	return event, true
}

// eventID derives a stable identifier since the feed carries none
func eventID(parts ...string) string {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
