package output

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"
	"time"
)

var csvHeader = []string{
	"ship", "vessel_id", "phase", "failed_in", "route", "departure_time", "estimated_arrival",
	"latitude", "longitude", "speed_knots", "heading_degrees", "trip_inserted", "image_url",
	"warnings", "error", "duration_ms",
}

// SaveCSV writes rows to a CSV file. Absent values are empty cells.
func SaveCSV(rows []Row, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Ship,
			r.VesselID,
			r.Phase,
			r.FailedIn,
			optString(r.Route),
			optTime(r.Departure),
			optTime(r.Arrival),
			optFloat(r.Latitude),
			optFloat(r.Longitude),
			strconv.FormatFloat(r.SpeedKnots, 'f', -1, 64),
			strconv.FormatFloat(r.Heading, 'f', -1, 64),
			strconv.FormatBool(r.TripInserted),
			r.ImageURL,
			strings.Join(r.Warnings, "; "),
			r.Error,
			strconv.FormatInt(r.DurationMS, 10),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func optString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func optFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
