package models

import (
	"encoding/json"
	"time"

	"github.com/paulmach/orb"
)

// UnknownRoute is display text for a snapshot without a route. It is never
// stored or compared against.
const UnknownRoute = "Unknown Route"

// ShipStatusActive is the status written on every successful ship upsert.
const ShipStatusActive = "Active"

// ShipConfig is one entry of the configured fleet
type ShipConfig struct {
	SiteID         string `json:"ship_id"`
	VesselID       string `json:"vessel_id"`
	Name           string `json:"name"`
	OrganizationID string `json:"organization_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`
}

// VesselSnapshot is a point-in-time capture of a vessel's extracted state
type VesselSnapshot struct {
	Route            *string    `json:"route"`
	DepartureTime    *time.Time `json:"departure_time"`
	EstimatedArrival *time.Time `json:"estimated_arrival"`
	// Position is nil when the page had no coordinate pair.
	Position       *orb.Point `json:"-"`
	SpeedKnots     float64    `json:"speed_knots"`
	HeadingDegrees float64    `json:"heading_degrees"`
	CapturedAt     time.Time  `json:"captured_at"`
}

// Latitude returns the latitude or nil when the position is absent
func (s VesselSnapshot) Latitude() *float64 {
	if s.Position == nil {
		return nil
	}
	lat := s.Position.Lat()
	return &lat
}

// Longitude returns the longitude or nil when the position is absent
func (s VesselSnapshot) Longitude() *float64 {
	if s.Position == nil {
		return nil
	}
	lon := s.Position.Lon()
	return &lon
}

// RouteText returns the route or UnknownRoute for display
func (s VesselSnapshot) RouteText() string {
	if s.Route == nil {
		return UnknownRoute
	}
	return *s.Route
}

// MarshalJSON flattens the position into latitude/longitude fields
func (s VesselSnapshot) MarshalJSON() ([]byte, error) {
	type plain VesselSnapshot
	return json.Marshal(struct {
		plain
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}{plain(s), s.Latitude(), s.Longitude()})
}

// TripKey is the natural key of a voyage
type TripKey struct {
	VesselID      string
	Route         string
	DepartureTime time.Time
}

// String renders the key for logs
func (k TripKey) String() string {
	return k.VesselID + "|" + k.Route + "|" + k.DepartureTime.UTC().Format(time.RFC3339)
}

// TripRecord is a persisted voyage. Created once per natural key, never updated.
type TripRecord struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	OrganizationID   string     `json:"organization_id"`
	VesselID         string     `json:"ship_id"`
	VesselName       string     `json:"ship_name"`
	Name             string     `json:"name"`
	Route            string     `json:"route"`
	DepartureTime    time.Time  `json:"departure_date_time"`
	EstimatedArrival *time.Time `json:"eta,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Key returns the natural key of the record
func (t TripRecord) Key() TripKey {
	return TripKey{VesselID: t.VesselID, Route: t.Route, DepartureTime: t.DepartureTime}
}

// ShipState is the latest known state of a vessel, keyed by vessel id
type ShipState struct {
	VesselID  string    `json:"id"`
	Name      string    `json:"name"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	Speed     float64   `json:"speed"`
	Heading   float64   `json:"heading"`
	ImageURL  *string   `json:"image_url"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}
