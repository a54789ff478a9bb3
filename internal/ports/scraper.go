package ports

import (
	"context"

	"github.com/bnema/dipwatch/internal/domain"
)

// Scraper fetches the board page and extracts one snapshot of game state.
// It returns domain.ErrEmptySnapshot when the required page regions are
// absent.
type Scraper interface {
	Scrape(ctx context.Context) (domain.Snapshot, error)
}
