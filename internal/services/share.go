package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"safe-route-service/internal/domain"
	"safe-route-service/internal/platform/apperr"
	"safe-route-service/internal/platform/metrics"
	"safe-route-service/internal/platform/obs"
	"safe-route-service/internal/ports"
)

// ShareService publishes immutable snapshots of search results and returns
// them by id. It never recomputes scores.
type ShareService struct {
	repo  ports.SnapshotRepository
	now   func() time.Time
	newID func() string
}

func NewShareService(repo ports.SnapshotRepository) *ShareService {
	return &ShareService{repo: repo, now: time.Now, newID: uuid.NewString}
}

// Publish stores a deep copy of result and returns its new id. Later changes
// to result are not visible through the snapshot.
func (s *ShareService) Publish(ctx context.Context, result *domain.SearchResult) (_ string, err error) {
	defer obs.Time(ctx, "share.Publish")(&err)

	if result == nil {
		return "", apperr.InvalidInput("result is required").WithOp("publish share")
	}
	if len(result.Routes) == 0 {
		return "", apperr.InvalidInput("result has no routes").WithOp("publish share")
	}
	if err := result.Validate(); err != nil {
		return "", apperr.Wrap(apperr.KindInvalidInput, "invalid result", err).WithOp("publish share")
	}

	snapshot := domain.ShareSnapshot{
		ID:        s.newID(),
		Version:   domain.SnapshotVersion,
		CreatedAt: s.now().UTC(),
		Result:    *result.Clone(),
	}

	if err := s.repo.Save(ctx, snapshot); err != nil {
		return "", err
	}

	metrics.SharesPublished.Inc()
	return snapshot.ID, nil
}

// Retrieve returns the stored result for id, unchanged.
func (s *ShareService) Retrieve(ctx context.Context, id string) (_ *domain.SearchResult, err error) {
	defer obs.Time(ctx, "share.Retrieve")(&err)

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.NotFound("share not found").WithOp("retrieve share")
	}

	snapshot, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return snapshot.Result.Clone(), nil
}

// Snapshot returns the full stored record including its metadata.
func (s *ShareService) Snapshot(ctx context.Context, id string) (domain.ShareSnapshot, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ShareSnapshot{}, apperr.NotFound("share not found").WithOp("retrieve share")
	}
	snapshot, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.ShareSnapshot{}, err
	}
	snapshot.Result = *snapshot.Result.Clone()
	return snapshot, nil
}
