package ports

import (
	"context"

	"safe-route-service/internal/domain"
)

// Port: storage for published share snapshots. There is no update or delete.
type SnapshotRepository interface {
	// Save stores a new snapshot. Saving an existing id is an error.
	Save(ctx context.Context, snapshot domain.ShareSnapshot) error
	// Get returns the stored snapshot or an apperr NotFound error.
	Get(ctx context.Context, id string) (domain.ShareSnapshot, error)
}
