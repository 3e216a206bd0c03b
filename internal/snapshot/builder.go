// Package snapshot normalizes extracted fields into a VesselSnapshot.
package snapshot

import (
	"time"

	"github.com/law-makers/shiptrack/internal/extract"
	"github.com/law-makers/shiptrack/pkg/models"
)

// Build converts extracted fields into a snapshot captured at capturedAt.
// Zone-less timestamps are read in loc (UTC when nil) and stored as UTC.
// Missing speed and heading default to 0; a missing route or position stays nil.
func Build(f extract.Fields, capturedAt time.Time, loc *time.Location) models.VesselSnapshot {
	s := models.VesselSnapshot{
		CapturedAt: capturedAt.UTC(),
	}

	if f.Route != nil && f.Route.Value != "" {
		route := f.Route.Value
		s.Route = &route
	}
	s.DepartureTime = parseTime(f.Departure, loc)
	s.EstimatedArrival = parseTime(f.Arrival, loc)

	if f.Position != nil {
		p := *f.Position
		s.Position = &p
	}
	if f.Speed != nil {
		s.SpeedKnots = *f.Speed
	}
	if f.Heading != nil {
		s.HeadingDegrees = *f.Heading
	}
	return s
}

func parseTime(m *extract.Match, loc *time.Location) *time.Time {
	if m == nil {
		return nil
	}
	t, ok := extract.ParseTimestamp(m.Value, loc)
	if !ok {
		return nil
	}
	t = t.UTC()
	return &t
}
