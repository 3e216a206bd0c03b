// Package output exports fleet run results to files.
package output

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/law-makers/shiptrack/internal/fleet"
)

// Row is the flat export form of one ship result
type Row struct {
	Ship         string     `json:"ship"`
	VesselID     string     `json:"vessel_id"`
	Phase        string     `json:"phase"`
	FailedIn     string     `json:"failed_in,omitempty"`
	Route        *string    `json:"route"`
	Departure    *time.Time `json:"departure_time"`
	Arrival      *time.Time `json:"estimated_arrival"`
	Latitude     *float64   `json:"latitude"`
	Longitude    *float64   `json:"longitude"`
	SpeedKnots   float64    `json:"speed_knots"`
	Heading      float64    `json:"heading_degrees"`
	TripInserted bool       `json:"trip_inserted"`
	ImageURL     string     `json:"image_url,omitempty"`
	Warnings     []string   `json:"warnings,omitempty"`
	Error        string     `json:"error,omitempty"`
	DurationMS   int64      `json:"duration_ms"`
}

// Rows flattens a run summary
func Rows(s fleet.Summary) []Row {
	rows := make([]Row, 0, len(s.Results))
	for _, r := range s.Results {
		row := Row{
			Ship:         r.Ship.Name,
			VesselID:     r.Ship.VesselID,
			Phase:        string(r.Phase),
			TripInserted: r.TripInserted,
			ImageURL:     r.ImageURL,
			DurationMS:   r.Duration.Milliseconds(),
		}
		if r.Failed() {
			row.FailedIn = string(r.FailedIn)
		}
		if r.Err != nil {
			row.Error = r.Err.Error()
		}
		for _, w := range r.Warnings {
			row.Warnings = append(row.Warnings, w.Error())
		}
		if snap := r.Snapshot; snap != nil {
			row.Route = snap.Route
			row.Departure = snap.DepartureTime
			row.Arrival = snap.EstimatedArrival
			row.Latitude = snap.Latitude()
			row.Longitude = snap.Longitude()
			row.SpeedKnots = snap.SpeedKnots
			row.Heading = snap.HeadingDegrees
		}
		rows = append(rows, row)
	}
	return rows
}

// Save writes rows as JSON or CSV depending on the file extension
func Save(rows []Row, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return SaveJSON(rows, path)
	case ".csv":
		return SaveCSV(rows, path)
	default:
		return fmt.Errorf("unsupported output format %q (use .json or .csv)", filepath.Ext(path))
	}
}
