package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"safe-route-service/internal/domain"
	"safe-route-service/internal/platform/apperr"
	"safe-route-service/internal/platform/obs"
	"safe-route-service/internal/ports"
)

// PostgresSnapshotRepository stores snapshots in the share_snapshots table.
// The search result is kept as a JSONB payload.
type PostgresSnapshotRepository struct{ DB *sql.DB }

func NewPostgresSnapshotRepository(db *sql.DB) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{DB: db}
}

var _ ports.SnapshotRepository = (*PostgresSnapshotRepository)(nil)

func (p *PostgresSnapshotRepository) Save(ctx context.Context, snapshot domain.ShareSnapshot) (err error) {
	defer obs.Time(ctx, "snapshots.postgres.Save")(&err)

	if p.DB == nil {
		return errors.New("postgres snapshot repository: DB is nil")
	}

	payload, err := json.Marshal(snapshot.Result)
	if err != nil {
		return fmt.Errorf("save snapshot: encode payload: %w", err)
	}

	_, err = p.DB.ExecContext(ctx, `
	INSERT INTO share_snapshots (id, version, origin, destination, payload, created_at)
	VALUES ($1, $2, $3, $4, $5, $6);
	`,
		snapshot.ID,
		snapshot.Version,
		snapshot.Result.Origin,
		snapshot.Result.Destination,
		payload,
		snapshot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save snapshot %q: insert share_snapshots: %w", snapshot.ID, err)
	}

	return nil
}

func (p *PostgresSnapshotRepository) Get(ctx context.Context, id string) (_ domain.ShareSnapshot, err error) {
	defer obs.Time(ctx, "snapshots.postgres.Get")(&err)

	if p.DB == nil {
		return domain.ShareSnapshot{}, errors.New("postgres snapshot repository: DB is nil")
	}

	var (
		snapshot domain.ShareSnapshot
		payload  []byte
	)
	err = p.DB.QueryRowContext(ctx, `
	SELECT id, version, payload, created_at
	FROM share_snapshots
	WHERE id = $1;
	`, id).Scan(&snapshot.ID, &snapshot.Version, &payload, &snapshot.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ShareSnapshot{}, apperr.NotFound(fmt.Sprintf("share %q not found", id))
	}
	if err != nil {
		return domain.ShareSnapshot{}, fmt.Errorf("get snapshot %q: query share_snapshots: %w", id, err)
	}

	if err := json.Unmarshal(payload, &snapshot.Result); err != nil {
		return domain.ShareSnapshot{}, fmt.Errorf("get snapshot %q: decode payload: %w", id, err)
	}

	return snapshot, nil
}
