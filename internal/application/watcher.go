package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bnema/dipwatch/internal/domain"
	"github.com/bnema/dipwatch/internal/ports"
)

// WatcherConfig holds the per-instance policy knobs of the cycle.
type WatcherConfig struct {
	GameID               domain.GameID
	Thresholds           domain.Thresholds
	AnnounceStatusChange bool
	// SeedPolicy is the notification policy used when no persisted
	// snapshot exists yet.
	SeedPolicy domain.NotifyPolicy
}

// Watcher runs the fetch, diff, warn, notify, persist cycle for one
// game. Strictly sequential: no cycle overlaps another.
type Watcher struct {
	scraper    ports.Scraper
	repo       ports.SnapshotRepository
	dispatcher *Dispatcher
	cfg        WatcherConfig
	logger     *slog.Logger
}

func NewWatcher(scraper ports.Scraper, repo ports.SnapshotRepository, dispatcher *Dispatcher, cfg WatcherConfig, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		scraper:    scraper,
		repo:       repo,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
	}
}

// RunCycle performs one full cycle. Fetch, parse and persistence failures
// abort the cycle and leave the previous baseline in place; delivery
// failures do not.
func (w *Watcher) RunCycle(ctx context.Context) error {
	curr, err := w.scraper.Scrape(ctx)
	if err != nil {
		return fmt.Errorf("scrape game %s: %w", w.cfg.GameID, err)
	}
	if !curr.Valid() {
		return fmt.Errorf("scrape game %s: %w", w.cfg.GameID, domain.ErrEmptySnapshot)
	}

	past, err := w.repo.Load(ctx, w.cfg.GameID)
	if err != nil {
		if !errors.Is(err, domain.ErrSnapshotNotFound) {
			return fmt.Errorf("load past snapshot: %w", err)
		}
		return w.saveBaseline(ctx, curr)
	}

	curr.CarryForward(past)

	// Commands embedded in the new messages mutate the policy before any
	// dispatch happens, so a stop-all in this batch silences the rest of
	// the cycle.
	fresh := domain.CompareMessages(curr.Messages, past.Messages)
	var chat []domain.Message
	for _, msg := range fresh {
		cmd := domain.ParseCommand(msg)
		if cmd.IsCommand() {
			w.logger.Info("chat command applied", "kind", cmd.Kind, "who", msg.Who)
			cmd.Apply(curr.Policy)
			continue
		}
		chat = append(chat, msg)
	}

	var events []Event
	change := domain.CompareTurn(curr.Turn, past.Turn)
	switch change {
	case domain.TurnAdvance:
		curr.Warned.Reset()
		events = append(events, renderTurnAdvance(curr.Turn))
	case domain.TurnPhaseChange:
		curr.Warned.Reset()
		events = append(events, renderPhaseChange(curr.Turn))
	case domain.TurnNoChange:
		for _, warning := range domain.EvaluateWarnings(&curr, w.cfg.Thresholds) {
			events = append(events, renderWarning(warning))
		}
	}

	// Status changes are diffed within the same turn, including phase
	// changes. Only a turn advance skips the diff: the new turn resets
	// every country's status anyway.
	if change != domain.TurnAdvance && w.cfg.AnnounceStatusChange {
		if len(curr.CountryStatus) != len(past.CountryStatus) {
			w.logger.Warn("country status list length mismatch",
				"curr", len(curr.CountryStatus), "past", len(past.CountryStatus))
		}
		for _, sc := range domain.CompareStatus(curr.CountryStatus, past.CountryStatus) {
			events = append(events, renderStatusChange(sc))
		}
	}
	for _, msg := range chat {
		events = append(events, renderMessage(msg))
	}

	for _, event := range events {
		w.dispatcher.Dispatch(ctx, curr.Policy, event)
	}

	if err := w.repo.Save(ctx, w.cfg.GameID, curr); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	return nil
}

func (w *Watcher) saveBaseline(ctx context.Context, curr domain.Snapshot) error {
	curr.Policy = w.cfg.SeedPolicy.Clone()
	curr.Policy.EnsureDefaults()

	w.logger.Info("no previous snapshot, saving baseline", "game", w.cfg.GameID)
	if err := w.repo.Save(ctx, w.cfg.GameID, curr); err != nil {
		return fmt.Errorf("save baseline snapshot: %w", err)
	}

	return nil
}

// Run repeats RunCycle every wait interval until the context is cancelled
// or a cycle fails. With oneShot set it runs a single cycle.
func (w *Watcher) Run(ctx context.Context, wait time.Duration, oneShot bool) error {
	for {
		if err := w.RunCycle(ctx); err != nil {
			return err
		}
		if oneShot {
			return nil
		}

		w.logger.Debug("cycle complete, sleeping", "wait", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
