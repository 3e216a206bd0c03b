package store

import (
	"context"
	"os"
	"testing"
)

// The Postgres tests run against a scratch database named by
// SHIPTRACK_TEST_DATABASE_URL. Its trips and ships tables are truncated.
func openTestPostgres(t *testing.T) *Postgres {
	t.Helper()
	dsn := os.Getenv("SHIPTRACK_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SHIPTRACK_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	p, err := OpenPostgres(ctx, dsn, true)
	if err != nil {
		t.Fatalf("OpenPostgres failed: %v", err)
	}
	if _, err := p.pool.Exec(ctx, `TRUNCATE trips, ships`); err != nil {
		p.Close()
		t.Fatalf("truncate: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestPostgres_Trips(t *testing.T) {
	testTrips(t, openTestPostgres(t))
}

func TestPostgres_Ships(t *testing.T) {
	testShips(t, openTestPostgres(t))
}
