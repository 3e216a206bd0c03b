package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/law-makers/shiptrack/pkg/models"
)

// Postgres stores trips and ships in a shared database, such as the one
// behind the hosted dashboard.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool to dsn
func OpenPostgres(ctx context.Context, dsn string, migrate bool) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("postgres connection string is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if migrate {
		db := stdlib.OpenDBFromPool(pool)
		err := Migrate(ctx, db, goose.DialectPostgres)
		db.Close()
		if err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) FindTrips(ctx context.Context, key models.TripKey) ([]models.TripRecord, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id::text, COALESCE(user_id, ''), COALESCE(organization_id, ''), ship_id, ship_name,
		       name, route, departure_date_time, eta, created_at
		FROM trips
		WHERE ship_id = $1 AND route = $2 AND departure_date_time = $3`,
		key.VesselID, key.Route, key.DepartureTime.UTC())
	if err != nil {
		return nil, fmt.Errorf("query trips: %w", err)
	}
	defer rows.Close()

	var trips []models.TripRecord
	for rows.Next() {
		var (
			t   models.TripRecord
			eta *time.Time
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.OrganizationID, &t.VesselID, &t.VesselName,
			&t.Name, &t.Route, &t.DepartureTime, &eta, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		t.DepartureTime = t.DepartureTime.UTC()
		t.CreatedAt = t.CreatedAt.UTC()
		if eta != nil {
			v := eta.UTC()
			t.EstimatedArrival = &v
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

func (p *Postgres) InsertTrip(ctx context.Context, trip models.TripRecord) error {
	if trip.ID == "" {
		trip.ID = uuid.NewString()
	}
	if trip.CreatedAt.IsZero() {
		trip.CreatedAt = time.Now()
	}
	var eta *time.Time
	if trip.EstimatedArrival != nil {
		v := trip.EstimatedArrival.UTC()
		eta = &v
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO trips (id, user_id, organization_id, ship_id, ship_name, name, route,
		                   departure_date_time, eta, created_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10)`,
		trip.ID, trip.UserID, trip.OrganizationID, trip.VesselID, trip.VesselName, trip.Name,
		trip.Route, trip.DepartureTime.UTC(), eta, trip.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert trip: %w", err)
	}
	return nil
}

func (p *Postgres) UpsertShip(ctx context.Context, state models.ShipState) error {
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = time.Now()
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO ships (id, name, latitude, longitude, speed, heading, image_url, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			speed = EXCLUDED.speed,
			heading = EXCLUDED.heading,
			image_url = COALESCE(EXCLUDED.image_url, ships.image_url),
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`,
		state.VesselID, state.Name, state.Latitude, state.Longitude, state.Speed, state.Heading,
		state.ImageURL, state.Status, state.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert ship %s: %w", state.VesselID, err)
	}
	return nil
}

const pgShipColumns = `id, name, latitude, longitude, speed, heading, image_url, status, updated_at`

func (p *Postgres) GetShip(ctx context.Context, vesselID string) (models.ShipState, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+pgShipColumns+` FROM ships WHERE id = $1`, vesselID)
	state, err := scanPgShip(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ShipState{}, ErrNotFound
	}
	return state, err
}

func (p *Postgres) ListShips(ctx context.Context) ([]models.ShipState, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+pgShipColumns+` FROM ships ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query ships: %w", err)
	}
	defer rows.Close()

	var ships []models.ShipState
	for rows.Next() {
		state, err := scanPgShip(rows)
		if err != nil {
			return nil, err
		}
		ships = append(ships, state)
	}
	return ships, rows.Err()
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func scanPgShip(row pgx.Row) (models.ShipState, error) {
	var state models.ShipState
	err := row.Scan(&state.VesselID, &state.Name, &state.Latitude, &state.Longitude,
		&state.Speed, &state.Heading, &state.ImageURL, &state.Status, &state.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return state, err
		}
		return state, fmt.Errorf("scan ship: %w", err)
	}
	state.UpdatedAt = state.UpdatedAt.UTC()
	return state, nil
}
