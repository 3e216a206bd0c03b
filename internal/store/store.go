// Package store persists trips and ship states.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/law-makers/shiptrack/pkg/models"
)

// ErrNotFound is returned when a ship state does not exist
var ErrNotFound = errors.New("not found")

// Store is the trip and ship persistence sink
type Store interface {
	// FindTrips returns trips whose natural key equals key.
	FindTrips(ctx context.Context, key models.TripKey) ([]models.TripRecord, error)
	// InsertTrip appends one trip. An empty ID is filled with a new UUID.
	InsertTrip(ctx context.Context, trip models.TripRecord) error
	// UpsertShip replaces or creates the state keyed by VesselID. A nil
	// ImageURL keeps the stored image reference.
	UpsertShip(ctx context.Context, state models.ShipState) error
	GetShip(ctx context.Context, vesselID string) (models.ShipState, error)
	ListShips(ctx context.Context) ([]models.ShipState, error)
	Close() error
}

// Driver names
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and configures a store
type Options struct {
	Driver string
	// DSN is the Postgres connection string or the SQLite file path.
	DSN     string
	Migrate bool
}

// Open connects to the configured store and optionally applies migrations
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverPostgres:
		return OpenPostgres(ctx, opts.DSN, opts.Migrate)
	case DriverSQLite, "":
		return OpenSQLite(ctx, opts.DSN, opts.Migrate)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
