package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/net/html"

	"github.com/bnema/dipwatch/internal/domain"
	"github.com/bnema/dipwatch/internal/ports"
)

// Scraper fetches a webDiplomacy board page and extracts a snapshot.
type Scraper struct {
	client *http.Client
	logger *slog.Logger

	boardURL string
}

var _ ports.Scraper = (*Scraper)(nil)

// New builds a scraper for one game. gameURL is the board endpoint up to
// and including the query separator, e.g.
// "http://webdiplomacy.net/board.php?".
func New(client *http.Client, gameURL string, gameID domain.GameID, logger *slog.Logger) *Scraper {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scraper{
		client:   client,
		logger:   logger,
		boardURL: gameURL + "gameID=" + url.QueryEscape(string(gameID)),
	}
}

func (s *Scraper) Scrape(ctx context.Context) (domain.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.boardURL, nil)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("build board request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("fetch board page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Snapshot{}, fmt.Errorf("fetch board page: unexpected status %s", resp.Status)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("parse board page: %w", err)
	}

	snapshot := domain.Snapshot{
		Turn:          extractTurn(doc),
		CountryStatus: extractStatus(doc),
		Messages:      extractMessages(doc),
	}
	if !snapshot.Valid() {
		return domain.Snapshot{}, domain.ErrEmptySnapshot
	}

	s.logger.Debug("board page scraped",
		"date", snapshot.Turn.GameDate,
		"phase", snapshot.Turn.GamePhase,
		"countries", len(snapshot.CountryStatus),
		"messages", len(snapshot.Messages))

	return snapshot, nil
}
