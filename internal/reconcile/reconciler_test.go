package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/law-makers/shiptrack/pkg/models"
)

type fakeTrips struct {
	trips   []models.TripRecord
	err     error
	queries int
}

func (f *fakeTrips) FindTrips(ctx context.Context, key models.TripKey) ([]models.TripRecord, error) {
	f.queries++
	if f.err != nil {
		return nil, f.err
	}
	var out []models.TripRecord
	for _, t := range f.trips {
		if t.VesselID == key.VesselID && t.Route == key.Route && t.DepartureTime.Equal(key.DepartureTime) {
			out = append(out, t)
		}
	}
	return out, nil
}

var departure = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func TestShouldInsert(t *testing.T) {
	onFile := models.TripRecord{VesselID: "v1", Route: "VN HAIPHONG VN SAIGON", DepartureTime: departure}

	tests := []struct {
		name      string
		trips     []models.TripRecord
		vesselID  string
		route     string
		departure time.Time
		want      bool
	}{
		{"empty store", nil, "v1", "VN HAIPHONG VN SAIGON", departure, true},
		{"same key", []models.TripRecord{onFile}, "v1", "VN HAIPHONG VN SAIGON", departure, false},
		{"same key other zone", []models.TripRecord{onFile}, "v1", "VN HAIPHONG VN SAIGON", departure.In(time.FixedZone("ICT", 7*3600)), false},
		{"different route", []models.TripRecord{onFile}, "v1", "VN SAIGON VN HAIPHONG", departure, true},
		{"different departure", []models.TripRecord{onFile}, "v1", "VN HAIPHONG VN SAIGON", departure.Add(time.Hour), true},
		{"different vessel", []models.TripRecord{onFile}, "v2", "VN HAIPHONG VN SAIGON", departure, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(&fakeTrips{trips: tt.trips}, nil)
			got, err := r.ShouldInsert(context.Background(), tt.vesselID, tt.route, tt.departure)
			if err != nil {
				t.Fatalf("ShouldInsert failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldInsert = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldInsert_QueryErrorIsRetryable(t *testing.T) {
	boom := errors.New("connection reset")
	r := New(&fakeTrips{err: boom}, nil)

	insert, err := r.ShouldInsert(context.Background(), "v1", "R", departure)
	if insert {
		t.Error("must not decide insert on query failure")
	}
	var qe *QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("expected *QueryError, got %T", err)
	}
	if !qe.Temporary() {
		t.Error("query errors must be retryable")
	}
	if !errors.Is(err, boom) {
		t.Error("expected the store error to be wrapped")
	}
}

func TestDecide_NotApplicable(t *testing.T) {
	route := "VN HAIPHONG VN SAIGON"
	tests := []struct {
		name string
		snap models.VesselSnapshot
	}{
		{"no route", models.VesselSnapshot{DepartureTime: &departure}},
		{"no departure", models.VesselSnapshot{Route: &route}},
		{"neither", models.VesselSnapshot{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeTrips{}
			d, err := New(store, nil).Decide(context.Background(), "v1", tt.snap)
			if err != nil {
				t.Fatalf("Decide failed: %v", err)
			}
			if d.Action != ActionNotApplicable {
				t.Errorf("action = %s, want %s", d.Action, ActionNotApplicable)
			}
			if store.queries != 0 {
				t.Errorf("store queried %d times, want 0", store.queries)
			}
		})
	}
}

func TestDecide_InsertThenSkip(t *testing.T) {
	route := "VN HAIPHONG VN SAIGON"
	snap := models.VesselSnapshot{Route: &route, DepartureTime: &departure}
	store := &fakeTrips{}
	r := New(store, NewKnownKeys(16, 0))

	d, err := r.Decide(context.Background(), "v1", snap)
	if err != nil || d.Action != ActionInsert {
		t.Fatalf("first decision = %+v, %v; want insert", d, err)
	}
	r.Inserted(d.Key)

	d, err = r.Decide(context.Background(), "v1", snap)
	if err != nil || d.Action != ActionSkip {
		t.Fatalf("second decision = %+v, %v; want skip", d, err)
	}
	if store.queries != 1 {
		t.Errorf("store queried %d times, want 1 (second answered from known keys)", store.queries)
	}
}

func TestKnownKeys_EvictsAndExpires(t *testing.T) {
	k := NewKnownKeys(2, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	k.now = func() time.Time { return now }

	a := models.TripKey{VesselID: "a", Route: "r", DepartureTime: departure}
	b := models.TripKey{VesselID: "b", Route: "r", DepartureTime: departure}
	c := models.TripKey{VesselID: "c", Route: "r", DepartureTime: departure}
	k.Remember(a)
	k.Remember(b)
	k.Remember(c)
	if k.Contains(a) {
		t.Error("oldest key should have been evicted")
	}
	if !k.Contains(b) || !k.Contains(c) {
		t.Error("recent keys should be present")
	}

	now = now.Add(2 * time.Minute)
	if k.Contains(b) {
		t.Error("expired key should be gone")
	}
	if k.Len() != 1 {
		t.Errorf("Len = %d, want 1", k.Len())
	}
}

func TestKnownKeys_SeparatorInFields(t *testing.T) {
	k := NewKnownKeys(16, 0)
	remembered := models.TripKey{VesselID: "a|b", Route: "c", DepartureTime: departure}
	other := models.TripKey{VesselID: "a", Route: "b|c", DepartureTime: departure}
	if remembered.String() != other.String() {
		t.Fatalf("keys render differently, %q vs %q", remembered, other)
	}

	k.Remember(remembered)
	if k.Contains(other) {
		t.Error("a different trip key matched through its rendered form")
	}
	if !k.Contains(remembered) {
		t.Error("remembered key missing")
	}
}

func TestKnownKeys_SameInstantAnyZone(t *testing.T) {
	k := NewKnownKeys(16, 0)
	saigon := time.FixedZone("ICT", 7*3600)
	k.Remember(models.TripKey{VesselID: "v1", Route: "r", DepartureTime: departure.In(saigon)})

	if !k.Contains(models.TripKey{VesselID: "v1", Route: "r", DepartureTime: departure.UTC()}) {
		t.Error("same departure in another zone should match")
	}
}

func TestDecide_SeparatorInFieldsStillQueries(t *testing.T) {
	store := &fakeTrips{trips: []models.TripRecord{{VesselID: "a|b", Route: "c", DepartureTime: departure}}}
	r := New(store, NewKnownKeys(16, 0))

	insert, err := r.ShouldInsert(context.Background(), "a|b", "c", departure)
	if err != nil || insert {
		t.Fatalf("existing trip: insert=%v err=%v", insert, err)
	}
	insert, err = r.ShouldInsert(context.Background(), "a", "b|c", departure)
	if err != nil || !insert {
		t.Fatalf("distinct trip: insert=%v err=%v, want insert", insert, err)
	}
	if store.queries != 2 {
		t.Errorf("store queried %d times, want 2", store.queries)
	}
}
