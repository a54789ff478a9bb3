package ports

import (
	"context"

	"github.com/bnema/dipwatch/internal/domain"
)

// SnapshotRepository persists one snapshot record per watched game. Load
// returns domain.ErrSnapshotNotFound when the game has never been saved.
type SnapshotRepository interface {
	Load(ctx context.Context, id domain.GameID) (domain.Snapshot, error)
	Save(ctx context.Context, id domain.GameID, snapshot domain.Snapshot) error
}
