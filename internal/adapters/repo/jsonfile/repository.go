package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/dipwatch/internal/domain"
	"github.com/bnema/dipwatch/internal/ports"
)

const (
	snapshotFileMode = 0o600
	snapshotDirMode  = 0o700
	tempFilePattern  = ".db-*.json.tmp"
)

// Repository stores one JSON snapshot record per game under a save
// directory, as db<gameID>.json. The previous record is kept alongside as
// db<gameID>_old.json.
type Repository struct {
	saveDir string
	mu      *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	dirLockMap     = map[string]*sync.RWMutex{}
)

var _ ports.SnapshotRepository = (*Repository)(nil)

func NewRepository(saveDir string) (*Repository, error) {
	if saveDir == "" {
		saveDir = "."
	}

	absDir, err := filepath.Abs(saveDir)
	if err != nil {
		return nil, fmt.Errorf("resolve save directory: %w", err)
	}
	absDir = filepath.Clean(absDir)

	return &Repository{saveDir: absDir, mu: lockForDir(absDir)}, nil
}

func (r *Repository) Load(ctx context.Context, id domain.GameID) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.snapshotPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Snapshot{}, domain.ErrSnapshotNotFound
		}
		return domain.Snapshot{}, fmt.Errorf("read snapshot file: %w", err)
	}

	var file fileSchema
	if err := json.Unmarshal(data, &file); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode snapshot file: %w", err)
	}

	return fromSchema(file), nil
}

func (r *Repository) Save(ctx context.Context, id domain.GameID, snapshot domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.saveDir, snapshotDirMode); err != nil {
		return fmt.Errorf("create save directory: %w", err)
	}

	data, err := json.MarshalIndent(toSchema(snapshot), "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	path := r.snapshotPath(id)
	switch _, err := os.Stat(path); {
	case err == nil:
		if err := os.Rename(path, r.oldSnapshotPath(id)); err != nil {
			return fmt.Errorf("rotate previous snapshot: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("stat previous snapshot: %w", err)
	}

	tempFile, err := os.CreateTemp(r.saveDir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp snapshot file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp snapshot file: %w", err)
	}

	if err := tempFile.Chmod(snapshotFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp snapshot file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp snapshot file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace snapshot file: %w", err)
	}

	cleanup = false

	return nil
}

func (r *Repository) snapshotPath(id domain.GameID) string {
	return filepath.Join(r.saveDir, fmt.Sprintf("db%s.json", id))
}

func (r *Repository) oldSnapshotPath(id domain.GameID) string {
	return filepath.Join(r.saveDir, fmt.Sprintf("db%s_old.json", id))
}

func lockForDir(dir string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := dirLockMap[dir]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	dirLockMap[dir] = mu
	return mu
}
