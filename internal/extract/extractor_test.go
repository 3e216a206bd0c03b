package extract

import (
	"errors"
	"strings"
	"testing"
)

const samplePage = `MarineTraffic
VN HAIPHONG   VN
SAIGON
Voyage
ATD: 2024-05-01 08:00 ETA: 2024-05-03 10:00
Position (10.762622, 106.660172)
Speed 12.5 kn / 045°`

func TestExtract_FullPage(t *testing.T) {
	f, err := New(DefaultRules(), PolicyStrict).Extract(samplePage)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if f.Route == nil || f.Route.Value != "VN HAIPHONG VN SAIGON" {
		t.Fatalf("route = %+v, want VN HAIPHONG VN SAIGON", f.Route)
	}
	if f.Route.Rule != "national-vn" {
		t.Errorf("route rule = %q, want national-vn", f.Route.Rule)
	}
	if f.Departure == nil || f.Departure.Value != "2024-05-01 08:00" {
		t.Errorf("departure = %+v", f.Departure)
	}
	if f.Arrival == nil || f.Arrival.Value != "2024-05-03 10:00" {
		t.Errorf("arrival = %+v", f.Arrival)
	}
	if f.Position == nil {
		t.Fatal("expected a position")
	}
	if f.Position.Lat() != 10.762622 || f.Position.Lon() != 106.660172 {
		t.Errorf("position = %v, want lat 10.762622 lon 106.660172", *f.Position)
	}
	if f.Speed == nil || *f.Speed != 12.5 {
		t.Errorf("speed = %v, want 12.5", f.Speed)
	}
	if f.Heading == nil || *f.Heading != 45 {
		t.Errorf("heading = %v, want 45", f.Heading)
	}
}

func TestExtract_CoordinatesIndependentOfSurroundings(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		lat, lon float64
	}{
		{"bare", "(1.5, 2.5)", 1.5, 2.5},
		{"negative", "pos (-33.8688,+151.2093) now", -33.8688, 151.2093},
		{"no space", "x(45.0,-120.25)y", 45.0, -120.25},
		{"skips out of range", "(123.4, 10.0) then (12.3, 45.6)", 12.3, 45.6},
		{"first of many", "(1.1, 2.2) (3.3, 4.4)", 1.1, 2.2},
	}

	ex := New(DefaultRules(), PolicyLenient)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ex.Extract(tt.text)
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if f.Position == nil {
				t.Fatal("expected a position")
			}
			if f.Position.Lat() != tt.lat || f.Position.Lon() != tt.lon {
				t.Errorf("got (%v, %v), want (%v, %v)", f.Position.Lat(), f.Position.Lon(), tt.lat, tt.lon)
			}
		})
	}
}

func TestExtract_MissingPosition(t *testing.T) {
	text := "VN HAIPHONG VN SAIGON ATD: 2024-05-01 08:00"

	_, err := New(DefaultRules(), PolicyStrict).Extract(text)
	if !errors.Is(err, ErrNoPosition) {
		t.Fatalf("strict: expected ErrNoPosition, got %v", err)
	}

	f, err := New(DefaultRules(), PolicyLenient).Extract(text)
	if err != nil {
		t.Fatalf("lenient: unexpected error %v", err)
	}
	if f.Position != nil {
		t.Errorf("lenient: expected nil position, got %v", *f.Position)
	}
	if f.Route == nil || f.Departure == nil {
		t.Errorf("lenient: other fields should still be read, got %+v", f)
	}
}

func TestExtract_SpeedAndHeadingAbsent(t *testing.T) {
	f, err := New(DefaultRules(), PolicyLenient).Extract("Speed unknown, heading 045 deg, (1.0, 2.0)")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if f.Speed != nil {
		t.Errorf("expected no speed, got %v", *f.Speed)
	}
	if f.Heading != nil {
		t.Errorf("expected no heading, got %v", *f.Heading)
	}
}

func TestExtract_SpeedVariants(t *testing.T) {
	tests := map[string]float64{
		"12.5 kn":     12.5,
		"0kn":         0,
		"14 KN":       14,
		"8.2 knots":   8.2,
		"Speed: 3 Kn": 3,
	}
	ex := New(DefaultRules(), PolicyLenient)
	for text, want := range tests {
		f, _ := ex.Extract(text)
		if f.Speed == nil || *f.Speed != want {
			t.Errorf("%q: speed = %v, want %v", text, f.Speed, want)
		}
	}
}

func TestExtract_RouteRulePriority(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     string
		wantRule string
	}{
		{"national wins over label", "Route: Somewhere\nVN DANANG VN HAIPHONG", "VN DANANG VN HAIPHONG", "national-vn"},
		{"arrow", "SG SINGAPORE → MY KLANG", "SG SINGAPORE → MY KLANG", "arrow"},
		{"ascii arrow", "SG SINGAPORE -> MY PORT-KLANG", "SG SINGAPORE -> MY PORT-KLANG", "arrow"},
		{"label", "Route:   Busan   to   Qingdao\nnext", "Busan to Qingdao", "label"},
	}

	ex := New(DefaultRules(), PolicyLenient)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := ex.Extract(tt.text)
			if f.Route == nil {
				t.Fatal("expected a route")
			}
			if f.Route.Value != tt.want || f.Route.Rule != tt.wantRule {
				t.Errorf("got %q via %s, want %q via %s", f.Route.Value, f.Route.Rule, tt.want, tt.wantRule)
			}
		})
	}
}

func TestExtract_RouteAbsent(t *testing.T) {
	f, _ := New(DefaultRules(), PolicyLenient).Extract("no voyage data (1.0, 2.0)")
	if f.Route != nil {
		t.Errorf("expected no route, got %+v", f.Route)
	}
}

func TestExtract_RouteIdempotent(t *testing.T) {
	ex := New(DefaultRules(), PolicyLenient)
	text := "VN\tHAIPHONG \n\n VN    SAIGON"
	a, _ := ex.Extract(text)
	b, _ := ex.Extract(text)
	if a.Route == nil || b.Route == nil || a.Route.Value != b.Route.Value {
		t.Fatalf("routes differ: %+v vs %+v", a.Route, b.Route)
	}
	if strings.Contains(a.Route.Value, "  ") || a.Route.Value != "VN HAIPHONG VN SAIGON" {
		t.Errorf("whitespace not collapsed: %q", a.Route.Value)
	}
}

func TestExtract_CustomCountry(t *testing.T) {
	f, _ := New(DefaultRules("PH", "VN"), PolicyLenient).Extract("PH MANILA PH CEBU")
	if f.Route == nil || f.Route.Value != "PH MANILA PH CEBU" || f.Route.Rule != "national-ph" {
		t.Errorf("route = %+v", f.Route)
	}
}

func TestExtract_ArrivalFallsBackToReportedETA(t *testing.T) {
	text := "ETA: not available\nReported ETA: 2024-06-10 14:30"
	f, _ := New(DefaultRules(), PolicyLenient).Extract(text)
	if f.Arrival == nil {
		t.Fatal("expected an arrival")
	}
	if f.Arrival.Value != "2024-06-10 14:30" {
		t.Errorf("arrival = %q", f.Arrival.Value)
	}
}

func TestExtract_TimestampTrailingDigits(t *testing.T) {
	f, _ := New(DefaultRules(), PolicyLenient).Extract("ATD: 2024-05-01 08:00\n12 kn")
	if f.Departure == nil || f.Departure.Value != "2024-05-01 08:00" {
		t.Errorf("departure = %+v", f.Departure)
	}
}

func TestExtract_UnparsableTimestamp(t *testing.T) {
	f, _ := New(DefaultRules(), PolicyLenient).Extract("ATD: 99-99 ETA: --")
	if f.Departure != nil || f.Arrival != nil {
		t.Errorf("expected no timestamps, got %+v / %+v", f.Departure, f.Arrival)
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := ParsePolicy("STRICT"); err != nil || p != PolicyStrict {
		t.Errorf("ParsePolicy(STRICT) = %v, %v", p, err)
	}
	if p, err := ParsePolicy(""); err != nil || p != PolicyLenient {
		t.Errorf("ParsePolicy(\"\") = %v, %v", p, err)
	}
	if _, err := ParsePolicy("sometimes"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
