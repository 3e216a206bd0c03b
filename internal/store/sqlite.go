package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/law-makers/shiptrack/pkg/models"
)

// sqliteTime is the stored timestamp layout. Values are always UTC so the
// natural key compares as text.
const sqliteTime = time.RFC3339

// SQLite is a single-file store for local runs
type SQLite struct {
	db      *sql.DB
	writeMu sync.Mutex
}

// OpenSQLite opens (creating if needed) the database at path
func OpenSQLite(ctx context.Context, path string, migrate bool) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if migrate {
		if err := Migrate(ctx, db, goose.DialectSQLite3); err != nil {
			db.Close()
			return nil, err
		}
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) FindTrips(ctx context.Context, key models.TripKey) ([]models.TripRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, organization_id, ship_id, ship_name, name, route,
		       departure_date_time, eta, created_at
		FROM trips
		WHERE ship_id = ? AND route = ? AND departure_date_time = ?`,
		key.VesselID, key.Route, key.DepartureTime.UTC().Format(sqliteTime))
	if err != nil {
		return nil, fmt.Errorf("query trips: %w", err)
	}
	defer rows.Close()

	var trips []models.TripRecord
	for rows.Next() {
		var (
			t                  models.TripRecord
			departure, created string
			eta                sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.OrganizationID, &t.VesselID, &t.VesselName,
			&t.Name, &t.Route, &departure, &eta, &created); err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		if t.DepartureTime, err = time.Parse(sqliteTime, departure); err != nil {
			return nil, fmt.Errorf("trip %s departure: %w", t.ID, err)
		}
		if t.CreatedAt, err = time.Parse(sqliteTime, created); err != nil {
			return nil, fmt.Errorf("trip %s created_at: %w", t.ID, err)
		}
		if eta.Valid {
			v, err := time.Parse(sqliteTime, eta.String)
			if err != nil {
				return nil, fmt.Errorf("trip %s eta: %w", t.ID, err)
			}
			t.EstimatedArrival = &v
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

func (s *SQLite) InsertTrip(ctx context.Context, trip models.TripRecord) error {
	if trip.ID == "" {
		trip.ID = uuid.NewString()
	}
	if trip.CreatedAt.IsZero() {
		trip.CreatedAt = time.Now()
	}
	var eta sql.NullString
	if trip.EstimatedArrival != nil {
		eta = sql.NullString{String: trip.EstimatedArrival.UTC().Format(sqliteTime), Valid: true}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trips (id, user_id, organization_id, ship_id, ship_name, name, route,
		                   departure_date_time, eta, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trip.ID, trip.UserID, trip.OrganizationID, trip.VesselID, trip.VesselName, trip.Name,
		trip.Route, trip.DepartureTime.UTC().Format(sqliteTime), eta,
		trip.CreatedAt.UTC().Format(sqliteTime))
	if err != nil {
		return fmt.Errorf("insert trip: %w", err)
	}
	return nil
}

func (s *SQLite) UpsertShip(ctx context.Context, state models.ShipState) error {
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = time.Now()
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ships (id, name, latitude, longitude, speed, heading, image_url, status, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			speed = excluded.speed,
			heading = excluded.heading,
			image_url = COALESCE(excluded.image_url, ships.image_url),
			status = excluded.status,
			updated_at = excluded.updated_at`,
		state.VesselID, state.Name, nullFloat(state.Latitude), nullFloat(state.Longitude),
		state.Speed, state.Heading, nullString(state.ImageURL), state.Status,
		state.UpdatedAt.UTC().Format(sqliteTime))
	if err != nil {
		return fmt.Errorf("upsert ship %s: %w", state.VesselID, err)
	}
	return nil
}

const sqliteShipColumns = `id, name, latitude, longitude, speed, heading, image_url, status, updated_at`

func (s *SQLite) GetShip(ctx context.Context, vesselID string) (models.ShipState, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteShipColumns+` FROM ships WHERE id = ?`, vesselID)
	state, err := scanSQLiteShip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ShipState{}, ErrNotFound
	}
	return state, err
}

func (s *SQLite) ListShips(ctx context.Context) ([]models.ShipState, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sqliteShipColumns+` FROM ships ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query ships: %w", err)
	}
	defer rows.Close()

	var ships []models.ShipState
	for rows.Next() {
		state, err := scanSQLiteShip(rows)
		if err != nil {
			return nil, err
		}
		ships = append(ships, state)
	}
	return ships, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteShip(row rowScanner) (models.ShipState, error) {
	var (
		state     models.ShipState
		lat, lon  sql.NullFloat64
		imageURL  sql.NullString
		updatedAt string
	)
	if err := row.Scan(&state.VesselID, &state.Name, &lat, &lon, &state.Speed, &state.Heading,
		&imageURL, &state.Status, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return state, err
		}
		return state, fmt.Errorf("scan ship: %w", err)
	}
	if lat.Valid {
		state.Latitude = &lat.Float64
	}
	if lon.Valid {
		state.Longitude = &lon.Float64
	}
	if imageURL.Valid {
		state.ImageURL = &imageURL.String
	}
	t, err := time.Parse(sqliteTime, updatedAt)
	if err != nil {
		return state, fmt.Errorf("ship %s updated_at: %w", state.VesselID, err)
	}
	state.UpdatedAt = t
	return state, nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
