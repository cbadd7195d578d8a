package repositories

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"safe-route-service/internal/domain"
	"safe-route-service/internal/platform/apperr"
	"safe-route-service/internal/platform/db"
	"safe-route-service/internal/ports"
)

func sampleSnapshot() domain.ShareSnapshot {
	return domain.ShareSnapshot{
		ID:        uuid.NewString(),
		Version:   domain.SnapshotVersion,
		CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Result: domain.SearchResult{
			Origin:      "Tokyo Station",
			Destination: "Shibuya Station",
			Routes: []domain.CandidateRoute{
				{
					DistanceMeters:  6500,
					DurationSeconds: 5400,
					Geometry:        domain.RouteGeometry{{Lat: 35.68124, Lng: 139.76712}, {Lat: 35.65803, Lng: 139.70164}},
					EncodedGeometry: "kfuxEqqzsY`nCxdK",
				},
				{
					DistanceMeters:  7100.25,
					DurationSeconds: 5900,
					Geometry:        domain.RouteGeometry{{Lat: 35.68124, Lng: 139.76712}, {Lat: 35.67, Lng: 139.73}, {Lat: 35.65803, Lng: 139.70164}},
					EncodedGeometry: "abc",
				},
			},
			Scores: []domain.RouteScore{
				{ElevationAggregate: 31.5, SeaDistanceAggregate: 4.2, WeightedScore: 23.31},
				{ElevationAggregate: 12, SeaDistanceAggregate: 0, WeightedScore: 8.4, SeaDistanceDegraded: true},
			},
			RecommendedIndex: 0,
		},
	}
}

// exerciseRepository runs the behaviour every SnapshotRepository must share.
func exerciseRepository(t *testing.T, repo ports.SnapshotRepository) {
	t.Helper()
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		want := sampleSnapshot()
		require.NoError(t, repo.Save(ctx, want))

		got, err := repo.Get(ctx, want.ID)
		require.NoError(t, err)
		require.Equal(t, want.ID, got.ID)
		require.Equal(t, want.Version, got.Version)
		require.True(t, want.CreatedAt.Equal(got.CreatedAt))
		require.Equal(t, want.Result, got.Result)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.Get(ctx, uuid.NewString())
		require.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)
	})

	t.Run("duplicate id", func(t *testing.T) {
		s := sampleSnapshot()
		require.NoError(t, repo.Save(ctx, s))
		require.Error(t, repo.Save(ctx, s))
	})
}

func TestMemorySnapshotRepository(t *testing.T) {
	exerciseRepository(t, NewMemorySnapshotRepository())
}

func TestMemorySnapshotRepositoryIsolatesCopies(t *testing.T) {
	repo := NewMemorySnapshotRepository()
	ctx := context.Background()

	s := sampleSnapshot()
	require.NoError(t, repo.Save(ctx, s))
	s.Result.Routes[0].Geometry[0].Lat = 0

	got, err := repo.Get(ctx, s.ID)
	require.NoError(t, err)
	got.Result.Scores[0].WeightedScore = -1

	again, err := repo.Get(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, 35.68124, again.Result.Routes[0].Geometry[0].Lat)
	require.Equal(t, 23.31, again.Result.Scores[0].WeightedScore)
}

func newRedisRepo(t *testing.T, ttl time.Duration) (*RedisSnapshotRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSnapshotRepository(client, ttl), mr
}

func TestRedisSnapshotRepository(t *testing.T) {
	repo, _ := newRedisRepo(t, 0)
	exerciseRepository(t, repo)
}

func TestRedisSnapshotRepositoryTTL(t *testing.T) {
	repo, mr := newRedisRepo(t, 24*time.Hour)
	ctx := context.Background()

	s := sampleSnapshot()
	require.NoError(t, repo.Save(ctx, s))
	require.Equal(t, 24*time.Hour, mr.TTL(snapshotKeyPrefix+s.ID))

	mr.FastForward(25 * time.Hour)
	_, err := repo.Get(ctx, s.ID)
	require.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)
}

func TestRedisSnapshotRepositoryNoTTLByDefault(t *testing.T) {
	repo, mr := newRedisRepo(t, 0)

	s := sampleSnapshot()
	require.NoError(t, repo.Save(context.Background(), s))
	require.Zero(t, mr.TTL(snapshotKeyPrefix+s.ID))
}

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

func TestPostgresSnapshotRepository(t *testing.T) {
	exerciseRepository(t, NewPostgresSnapshotRepository(openTestDB(t)))
}
