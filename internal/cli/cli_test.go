package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/paulmach/orb"

	"github.com/law-makers/shiptrack/internal/fleet"
	"github.com/law-makers/shiptrack/pkg/models"
)

func TestParseCommand_HTML(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "SHIPTRACK_") || strings.HasPrefix(key, "SUPABASE_") || key == "DATABASE_URL" {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}

	page := `<html><body>
<div>VN HAIPHONG VN SAIGON</div>
<div>ATD: 2024-05-01 08:00</div>
<p>Position (10.5, 106.25)</p>
<div>12.5 kn / 045°</div>
</body></html>`
	path := filepath.Join(dir, "page.html")
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"parse", path, "--timezone", "Asia/Ho_Chi_Minh"})
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	var got struct {
		Snapshot struct {
			Route         *string    `json:"route"`
			DepartureTime *time.Time `json:"departure_time"`
			Latitude      *float64   `json:"latitude"`
			Longitude     *float64   `json:"longitude"`
			SpeedKnots    float64    `json:"speed_knots"`
		} `json:"snapshot"`
		Rules map[string]string `json:"rules"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out.String(), err)
	}
	if got.Snapshot.Route == nil || *got.Snapshot.Route != "VN HAIPHONG VN SAIGON" {
		t.Errorf("route = %v", got.Snapshot.Route)
	}
	want := time.Date(2024, 5, 1, 1, 0, 0, 0, time.UTC)
	if got.Snapshot.DepartureTime == nil || !got.Snapshot.DepartureTime.Equal(want) {
		t.Errorf("departure = %v, want %v", got.Snapshot.DepartureTime, want)
	}
	if got.Snapshot.Latitude == nil || *got.Snapshot.Latitude != 10.5 || *got.Snapshot.Longitude != 106.25 {
		t.Errorf("position = %v, %v", got.Snapshot.Latitude, got.Snapshot.Longitude)
	}
	if got.Rules["route"] != "national-vn" {
		t.Errorf("rules = %v", got.Rules)
	}
}

func TestPrintSummary(t *testing.T) {
	route := "VN HAIPHONG VN SAIGON"
	pos := orb.Point{106.25, 10.5}
	s := fleet.Summary{
		Duration: 3 * time.Second,
		Results: []fleet.Result{
			{
				Ship:         models.ShipConfig{Name: "SEA STAR"},
				Phase:        fleet.PhaseDone,
				Snapshot:     &models.VesselSnapshot{Route: &route, Position: &pos, SpeedKnots: 12.5, HeadingDegrees: 45},
				TripInserted: true,
				Warnings:     []error{errors.New("upload skipped")},
			},
			{
				Ship:     models.ShipConfig{Name: "OCEAN PEARL"},
				Phase:    fleet.PhaseFailed,
				FailedIn: fleet.PhaseNavigating,
				Err:      errors.New("timeout"),
			},
		},
	}

	var buf bytes.Buffer
	printSummary(&buf, s)
	out := buf.String()

	for _, want := range []string{
		"SEA STAR", route, "10.50000, 106.25000", "new trip", "upload skipped",
		"OCEAN PEARL", "failed while navigating: timeout",
		"1 done, 1 failed, 1 new trips",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four\n\n- item stays whole even when long", 9)
	want := "one two\nthree\nfour\n\n- item stays whole even when long"
	if got != want {
		t.Errorf("wrapText = %q, want %q", got, want)
	}
}
