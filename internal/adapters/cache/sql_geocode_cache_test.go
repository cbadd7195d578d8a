package cache

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"safe-route-service/internal/domain"
	"safe-route-service/internal/platform/db"
)

// openTestDB connects to TEST_DATABASE_URL and applies migrations. Tests
// that need Postgres are skipped without it.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	conn, err := db.Open(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.Migrate(context.Background(), conn))
	return conn
}

func TestSQLGeocodeCacheUpsert(t *testing.T) {
	conn := openTestDB(t)
	c := NewSQLGeocodeCache(conn)
	ctx := context.Background()

	const addr = "sql-geocode-cache-test address"
	t.Cleanup(func() { _, _ = conn.Exec(`DELETE FROM geocode_cache WHERE address = $1`, addr) })

	_, ok, err := c.Get(ctx, addr)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Put(ctx, addr, domain.Coordinate{Lat: 1, Lng: 2}))
	require.NoError(t, c.Put(ctx, addr, domain.Coordinate{Lat: 3, Lng: 4}))

	got, ok, err := c.Get(ctx, addr)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.Coordinate{Lat: 3, Lng: 4}, got)
}

func TestSQLGeocodeCacheNilDB(t *testing.T) {
	c := NewSQLGeocodeCache(nil)
	_, _, err := c.Get(context.Background(), "x")
	require.Error(t, err)
	require.Error(t, c.Put(context.Background(), "x", domain.Coordinate{}))
}
