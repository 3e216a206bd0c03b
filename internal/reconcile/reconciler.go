// Package reconcile decides whether an observed voyage is new.
//
// The check-then-insert sequence is not atomic: two concurrent writers can
// both see an empty result and insert the same trip. Deduplication is eventual.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/law-makers/shiptrack/pkg/models"
)

// TripFinder queries trips by natural key
type TripFinder interface {
	FindTrips(ctx context.Context, key models.TripKey) ([]models.TripRecord, error)
}

// Action is the outcome of reconciling one snapshot
type Action string

const (
	// ActionNotApplicable means the snapshot lacks a route or departure time
	ActionNotApplicable Action = "not_applicable"
	// ActionSkip means the trip is already on file
	ActionSkip Action = "skip"
	// ActionInsert means no trip matches the natural key
	ActionInsert Action = "insert"
)

// Decision is the reconciler's verdict for one snapshot
type Decision struct {
	Action Action
	Key    models.TripKey
}

// QueryError wraps a failed trip lookup. It is always retryable.
type QueryError struct {
	Key models.TripKey
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("trip lookup %s: %v", e.Key, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Temporary marks the error as retryable
func (e *QueryError) Temporary() bool {
	return true
}

// Reconciler checks observed voyages against the trip store
type Reconciler struct {
	trips TripFinder
	known *KnownKeys
}

// New creates a Reconciler. known may be nil to always query the store.
func New(trips TripFinder, known *KnownKeys) *Reconciler {
	return &Reconciler{trips: trips, known: known}
}

// ShouldInsert reports whether no trip matches (vesselID, route, departure)
func (r *Reconciler) ShouldInsert(ctx context.Context, vesselID, route string, departure time.Time) (bool, error) {
	key := models.TripKey{VesselID: vesselID, Route: route, DepartureTime: departure.UTC()}
	if r.known.Contains(key) {
		return false, nil
	}

	existing, err := r.trips.FindTrips(ctx, key)
	if err != nil {
		return false, &QueryError{Key: key, Err: err}
	}
	if len(existing) > 0 {
		r.known.Remember(key)
		return false, nil
	}
	return true, nil
}

// Decide reconciles a snapshot. Snapshots without a route or departure time
// are not applicable and never reach the store.
func (r *Reconciler) Decide(ctx context.Context, vesselID string, s models.VesselSnapshot) (Decision, error) {
	if s.Route == nil || s.DepartureTime == nil {
		return Decision{Action: ActionNotApplicable}, nil
	}

	key := models.TripKey{VesselID: vesselID, Route: *s.Route, DepartureTime: s.DepartureTime.UTC()}
	insert, err := r.ShouldInsert(ctx, key.VesselID, key.Route, key.DepartureTime)
	if err != nil {
		return Decision{Key: key}, err
	}
	if insert {
		return Decision{Action: ActionInsert, Key: key}, nil
	}
	return Decision{Action: ActionSkip, Key: key}, nil
}

// Inserted records that a trip with key now exists
func (r *Reconciler) Inserted(key models.TripKey) {
	r.known.Remember(key)
}
