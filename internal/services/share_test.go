package services

import (
	"context"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"safe-route-service/internal/domain"
	"safe-route-service/internal/platform/apperr"
)

func searchResult(t *testing.T) *domain.SearchResult {
	t.Helper()
	tr := terrain{
		elevation: map[int]float64{0: 10, 1: 30, 2: 20},
		sea:       map[int]float64{0: 1, 1: 0.5, 2: 2},
	}
	res, err := newTestEngine(t, defaultDeps(3, tr)).Search(context.Background(), "Tokyo Station", "Shibuya Station")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	return res
}

func TestShareRoundTrip(t *testing.T) {
	shares := newTestShares()
	res := searchResult(t)

	id, err := shares.Publish(context.Background(), res)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("id %q is not a uuid: %v", id, err)
	}

	got, err := shares.Retrieve(context.Background(), id)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if !reflect.DeepEqual(got, res) {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, res)
	}
}

func TestShareSnapshotIsImmutable(t *testing.T) {
	shares := newTestShares()
	res := searchResult(t)

	id, err := shares.Publish(context.Background(), res)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	wantIndex := res.RecommendedIndex
	res.RecommendedIndex = 0
	res.Routes[0].Geometry[0].Lat = -1

	got, err := shares.Retrieve(context.Background(), id)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if got.RecommendedIndex != wantIndex || got.Routes[0].Geometry[0].Lat == -1 {
		t.Fatalf("snapshot changed with the source result")
	}
}

func TestShareMetadata(t *testing.T) {
	shares := newTestShares()
	id, err := shares.Publish(context.Background(), searchResult(t))
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	snap, err := shares.Snapshot(context.Background(), id)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Version != domain.SnapshotVersion || snap.CreatedAt.IsZero() || snap.ID != id {
		t.Fatalf("bad metadata: %+v", snap)
	}
}

func TestShareDistinctIDs(t *testing.T) {
	shares := newTestShares()
	res := searchResult(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		id, err := shares.Publish(context.Background(), res)
		if err != nil {
			t.Fatalf("publish: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestShareUnknownID(t *testing.T) {
	shares := newTestShares()
	for _, id := range []string{uuid.NewString(), "", "not-a-uuid"} {
		_, err := shares.Retrieve(context.Background(), id)
		if !apperr.Is(err, apperr.KindNotFound) {
			t.Fatalf("Retrieve(%q) err = %v, want NotFound", id, err)
		}
	}
}

func TestSharePublishRejectsInvalidResults(t *testing.T) {
	shares := newTestShares()

	misaligned := searchResult(t)
	misaligned.Scores = misaligned.Scores[:1]

	for name, res := range map[string]*domain.SearchResult{
		"nil":        nil,
		"no routes":  {Origin: "a", Destination: "b"},
		"misaligned": misaligned,
	} {
		if _, err := shares.Publish(context.Background(), res); !apperr.Is(err, apperr.KindInvalidInput) {
			t.Errorf("%s: err = %v, want InvalidInput", name, err)
		}
	}
}
