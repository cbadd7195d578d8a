package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"safe-route-service/internal/adapters/mock"
	"safe-route-service/internal/domain"
	"safe-route-service/internal/platform/apperr"
	"safe-route-service/internal/ports"
)

func newTestSessions(t *testing.T, d engineDeps) *Sessions {
	t.Helper()
	return NewSessions(newTestEngine(t, d), newTestShares(), time.Hour)
}

func TestSessionReachesReady(t *testing.T) {
	tr := terrain{elevation: map[int]float64{0: 1, 1: 2}}
	s := newTestSessions(t, defaultDeps(2, tr)).Get("user-1")

	if st, res, _ := s.Status(); st != StateIdle || res != nil {
		t.Fatalf("new session state = %v, result = %v", st, res)
	}

	res, err := s.Search(context.Background(), "Tokyo Station", "Shibuya Station")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st, current, failure := s.Status()
	if st != StateReady || failure != nil {
		t.Fatalf("state = %v, failure = %v", st, failure)
	}
	if current.RecommendedIndex != res.RecommendedIndex || len(current.Routes) != 2 {
		t.Fatalf("status result does not match search result")
	}
}

func TestSessionFailure(t *testing.T) {
	s := newTestSessions(t, defaultDeps(2, terrain{})).Get("user-1")

	_, err := s.Search(context.Background(), "Tokyo Station", "Atlantis")
	if !apperr.Is(err, apperr.KindResolutionFailed) {
		t.Fatalf("err = %v, want ResolutionFailed", err)
	}

	st, res, failure := s.Status()
	if st != StateFailed || res != nil || !apperr.Is(failure, apperr.KindResolutionFailed) {
		t.Fatalf("state = %v, result = %v, failure = %v", st, res, failure)
	}

	if _, err := s.Publish(context.Background()); !apperr.Is(err, apperr.KindNotReady) {
		t.Fatalf("publish from Failed err = %v, want NotReady", err)
	}
}

func TestSessionPublishRequiresReady(t *testing.T) {
	s := newTestSessions(t, defaultDeps(2, terrain{})).Get("user-1")

	if _, err := s.Publish(context.Background()); !apperr.Is(err, apperr.KindNotReady) {
		t.Fatalf("publish from Idle err = %v, want NotReady", err)
	}

	if _, err := s.Search(context.Background(), "Tokyo Station", "Shibuya Station"); err != nil {
		t.Fatalf("search: %v", err)
	}
	id, err := s.Publish(context.Background())
	if err != nil || id == "" {
		t.Fatalf("publish from Ready = (%q, %v)", id, err)
	}

	got, err := s.shares.Retrieve(context.Background(), id)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	_, current, _ := s.Status()
	if got.RecommendedIndex != current.RecommendedIndex || len(got.Routes) != len(current.Routes) {
		t.Fatalf("published snapshot differs from session result")
	}
}

// A slow first search must not overwrite the result of a newer one.
func TestSessionDiscardsStaleSearch(t *testing.T) {
	slowStarted := make(chan struct{}, 1)
	release := make(chan struct{})

	var calls atomic.Int32
	d := defaultDeps(0, terrain{elevation: map[int]float64{0: 5, 1: 9}})
	d.routes = mock.RouteFunc(func(ctx context.Context, o, dst domain.Coordinate, n int) ([]ports.RoutePath, error) {
		if calls.Add(1) == 1 {
			slowStarted <- struct{}{}
			select {
			case <-release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return routePaths(1), nil
		}
		return routePaths(2), nil
	})

	s := newTestSessions(t, d).Get("user-1")

	type outcome struct {
		res *domain.SearchResult
		err error
	}
	first := make(chan outcome, 1)
	go func() {
		res, err := s.Search(context.Background(), "Tokyo Station", "Shibuya Station")
		first <- outcome{res, err}
	}()
	<-slowStarted

	// The second search replaces the first while it is waiting on routes.
	res, err := s.Search(context.Background(), "Tokyo Station", "Shibuya Station")
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	if len(res.Routes) != 2 {
		t.Fatalf("second search routes = %d, want 2", len(res.Routes))
	}

	close(release)
	stale := <-first
	if !apperr.Is(stale.err, apperr.KindSuperseded) {
		t.Fatalf("stale search err = %v, want Superseded", stale.err)
	}
	if stale.res != nil {
		t.Fatalf("stale search returned a result")
	}

	st, current, _ := s.Status()
	if st != StateReady || len(current.Routes) != 2 {
		t.Fatalf("stale result leaked into session: state %v, %d routes", st, len(current.Routes))
	}
}

func TestSessionStaleFailureDoesNotOverwrite(t *testing.T) {
	s := newTestSessions(t, defaultDeps(2, terrain{})).Get("user-1")

	gen := s.begin()
	if _, err := s.Search(context.Background(), "Tokyo Station", "Shibuya Station"); err != nil {
		t.Fatalf("search: %v", err)
	}

	err := s.fail(gen, apperr.ResolutionFailed("late"))
	if !apperr.Is(err, apperr.KindSuperseded) {
		t.Fatalf("stale fail err = %v, want Superseded", err)
	}
	if err := s.advance(gen, StateScoring); !apperr.Is(err, apperr.KindSuperseded) {
		t.Fatalf("stale advance err = %v, want Superseded", err)
	}
	if st, _, _ := s.Status(); st != StateReady {
		t.Fatalf("state = %v, want ready", st)
	}
}

func TestSessionsReuseAndExpire(t *testing.T) {
	reg := newTestSessions(t, defaultDeps(1, terrain{}))
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	a := reg.Get("a")
	if reg.Get("a") != a {
		t.Fatalf("Get returned a different session for the same id")
	}
	reg.Get("b")
	if reg.Len() != 2 {
		t.Fatalf("len = %d, want 2", reg.Len())
	}

	now = now.Add(45 * time.Minute)
	reg.Get("b")

	now = now.Add(30 * time.Minute)
	if _, ok := reg.Lookup("a"); ok {
		t.Fatalf("session a should have expired")
	}
	if _, ok := reg.Lookup("b"); !ok {
		t.Fatalf("session b was used recently and should survive")
	}
}

func TestStateString(t *testing.T) {
	want := map[State]string{
		StateIdle:           "idle",
		StateGeocoding:      "geocoding",
		StateRoutesFetching: "routes_fetching",
		StateScoring:        "scoring",
		StateReady:          "ready",
		StateFailed:         "failed",
	}
	for st, s := range want {
		if st.String() != s {
			t.Errorf("%d.String() = %q, want %q", st, st.String(), s)
		}
	}
}
