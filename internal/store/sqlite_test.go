package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/law-makers/shiptrack/pkg/models"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "data", "shiptrack.db"), true)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_Trips(t *testing.T) {
	testTrips(t, openTestSQLite(t))
}

func TestSQLite_Ships(t *testing.T) {
	testShips(t, openTestSQLite(t))
}

func TestSQLite_MigrateTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shiptrack.db")
	for i := 0; i < 2; i++ {
		s, err := OpenSQLite(context.Background(), path, true)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		s.Close()
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "oracle"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}

// testTrips exercises the trip half of a Store
func testTrips(t *testing.T, s Store) {
	ctx := context.Background()
	departure := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	eta := time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC)
	key := models.TripKey{VesselID: "v-1", Route: "VN HAIPHONG VN SAIGON", DepartureTime: departure}

	got, err := s.FindTrips(ctx, key)
	if err != nil {
		t.Fatalf("FindTrips failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no trips, got %d", len(got))
	}

	trip := models.TripRecord{
		UserID:           "org-1",
		OrganizationID:   "org-1",
		VesselID:         key.VesselID,
		VesselName:       "Ocean Star",
		Name:             key.Route,
		Route:            key.Route,
		DepartureTime:    departure,
		EstimatedArrival: &eta,
	}
	if err := s.InsertTrip(ctx, trip); err != nil {
		t.Fatalf("InsertTrip failed: %v", err)
	}

	// Same instant in another zone still matches.
	local := key
	local.DepartureTime = departure.In(time.FixedZone("ICT", 7*3600))
	got, err = s.FindTrips(ctx, local)
	if err != nil {
		t.Fatalf("FindTrips failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one trip, got %d", len(got))
	}
	if got[0].ID == "" {
		t.Error("expected a generated id")
	}
	if !got[0].DepartureTime.Equal(departure) || got[0].EstimatedArrival == nil || !got[0].EstimatedArrival.Equal(eta) {
		t.Errorf("times = %v / %v", got[0].DepartureTime, got[0].EstimatedArrival)
	}
	if got[0].VesselName != "Ocean Star" || got[0].OrganizationID != "org-1" {
		t.Errorf("trip = %+v", got[0])
	}

	other := key
	other.DepartureTime = departure.Add(time.Hour)
	if got, _ := s.FindTrips(ctx, other); len(got) != 0 {
		t.Errorf("different departure matched %d trips", len(got))
	}
}

// testShips exercises the ship half of a Store
func testShips(t *testing.T, s Store) {
	ctx := context.Background()
	lat, lon := 10.5, 106.25
	img := "https://cdn.example/Ocean_Star_map.png"

	if _, err := s.GetShip(ctx, "v-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	first := models.ShipState{
		VesselID: "v-1", Name: "Ocean Star", Latitude: &lat, Longitude: &lon,
		Speed: 12.5, Heading: 45, ImageURL: &img, Status: models.ShipStatusActive,
		UpdatedAt: time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC),
	}
	if err := s.UpsertShip(ctx, first); err != nil {
		t.Fatalf("UpsertShip failed: %v", err)
	}

	// No image and no position: coordinates clear, image is kept.
	second := models.ShipState{
		VesselID: "v-1", Name: "Ocean Star", Speed: 3, Heading: 90,
		Status: models.ShipStatusActive, UpdatedAt: time.Date(2024, 5, 2, 13, 0, 0, 0, time.UTC),
	}
	if err := s.UpsertShip(ctx, second); err != nil {
		t.Fatalf("UpsertShip failed: %v", err)
	}

	got, err := s.GetShip(ctx, "v-1")
	if err != nil {
		t.Fatalf("GetShip failed: %v", err)
	}
	if got.Latitude != nil || got.Longitude != nil {
		t.Errorf("expected cleared coordinates, got %v, %v", got.Latitude, got.Longitude)
	}
	if got.ImageURL == nil || *got.ImageURL != img {
		t.Errorf("image url = %v, want %s", got.ImageURL, img)
	}
	if got.Speed != 3 || got.Heading != 90 || !got.UpdatedAt.Equal(second.UpdatedAt) {
		t.Errorf("ship = %+v", got)
	}

	if err := s.UpsertShip(ctx, models.ShipState{VesselID: "v-0", Name: "Blue Whale", Status: models.ShipStatusActive}); err != nil {
		t.Fatalf("UpsertShip failed: %v", err)
	}
	ships, err := s.ListShips(ctx)
	if err != nil {
		t.Fatalf("ListShips failed: %v", err)
	}
	if len(ships) != 2 || ships[0].Name != "Blue Whale" || ships[1].Name != "Ocean Star" {
		t.Errorf("ships = %+v", ships)
	}
}
