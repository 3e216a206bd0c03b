package snapshot

import (
	"testing"
	"time"

	"github.com/law-makers/shiptrack/internal/extract"
)

func TestBuild_FullPage(t *testing.T) {
	text := "...VN HAIPHONG VN SAIGON... ATD: 2024-05-01 08:00 ETA: 2024-05-03 10:00 ... (10.762622, 106.660172) ... 12.5 kn ... / 045°"
	f, err := extract.New(extract.DefaultRules(), extract.PolicyStrict).Extract(text)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	captured := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	s := Build(f, captured, time.UTC)

	if s.Route == nil || *s.Route != "VN HAIPHONG VN SAIGON" {
		t.Errorf("route = %v", s.Route)
	}
	wantATD := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	if s.DepartureTime == nil || !s.DepartureTime.Equal(wantATD) {
		t.Errorf("departure = %v, want %v", s.DepartureTime, wantATD)
	}
	wantETA := time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC)
	if s.EstimatedArrival == nil || !s.EstimatedArrival.Equal(wantETA) {
		t.Errorf("arrival = %v, want %v", s.EstimatedArrival, wantETA)
	}
	if lat := s.Latitude(); lat == nil || *lat != 10.762622 {
		t.Errorf("latitude = %v", lat)
	}
	if lon := s.Longitude(); lon == nil || *lon != 106.660172 {
		t.Errorf("longitude = %v", lon)
	}
	if s.SpeedKnots != 12.5 || s.HeadingDegrees != 45 {
		t.Errorf("speed/heading = %v/%v, want 12.5/45", s.SpeedKnots, s.HeadingDegrees)
	}
	if !s.CapturedAt.Equal(captured) {
		t.Errorf("captured at = %v, want %v", s.CapturedAt, captured)
	}
}

func TestBuild_Defaults(t *testing.T) {
	s := Build(extract.Fields{}, time.Now(), nil)

	if s.Route != nil {
		t.Errorf("expected nil route, got %q", *s.Route)
	}
	if s.RouteText() != "Unknown Route" {
		t.Errorf("route text = %q", s.RouteText())
	}
	if s.DepartureTime != nil || s.EstimatedArrival != nil {
		t.Error("expected nil timestamps")
	}
	if s.Position != nil || s.Latitude() != nil || s.Longitude() != nil {
		t.Error("latitude and longitude must both be absent")
	}
	if s.SpeedKnots != 0 || s.HeadingDegrees != 0 {
		t.Errorf("speed/heading = %v/%v, want 0/0", s.SpeedKnots, s.HeadingDegrees)
	}
}

func TestBuild_LocationApplied(t *testing.T) {
	loc := time.FixedZone("ICT", 7*60*60)
	f := extract.Fields{Departure: &extract.Match{Value: "2024-05-01 08:00"}}

	s := Build(f, time.Now(), loc)
	want := time.Date(2024, 5, 1, 1, 0, 0, 0, time.UTC)
	if s.DepartureTime == nil || !s.DepartureTime.Equal(want) {
		t.Fatalf("departure = %v, want %v", s.DepartureTime, want)
	}
	if s.DepartureTime.Location() != time.UTC {
		t.Errorf("departure not stored as UTC: %v", s.DepartureTime.Location())
	}
}

func TestBuild_Deterministic(t *testing.T) {
	text := "VN DANANG VN HAIPHONG ATD: 2024-01-02 03:04 (1.5, 2.5) 3 kn / 90°"
	ex := extract.New(extract.DefaultRules(), extract.PolicyLenient)
	at := time.Date(2024, 1, 2, 5, 0, 0, 0, time.UTC)

	f1, _ := ex.Extract(text)
	f2, _ := ex.Extract(text)
	a, b := Build(f1, at, time.UTC), Build(f2, at, time.UTC)

	if *a.Route != *b.Route || !a.DepartureTime.Equal(*b.DepartureTime) || *a.Position != *b.Position ||
		a.SpeedKnots != b.SpeedKnots || a.HeadingDegrees != b.HeadingDegrees {
		t.Errorf("snapshots differ: %+v vs %+v", a, b)
	}
}
