package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/dipwatch/internal/domain"
	"github.com/bnema/dipwatch/internal/ports"
)

type fakeScraper struct {
	snapshot domain.Snapshot
	err      error
	calls    int
}

func (f *fakeScraper) Scrape(context.Context) (domain.Snapshot, error) {
	f.calls++
	return f.snapshot, f.err
}

type inMemoryRepo struct {
	snapshots map[domain.GameID]domain.Snapshot
	loadErr   error
	saveErr   error
	saves     int
}

func newInMemoryRepo() *inMemoryRepo {
	return &inMemoryRepo{snapshots: map[domain.GameID]domain.Snapshot{}}
}

func (r *inMemoryRepo) Load(_ context.Context, id domain.GameID) (domain.Snapshot, error) {
	if r.loadErr != nil {
		return domain.Snapshot{}, r.loadErr
	}
	snapshot, ok := r.snapshots[id]
	if !ok {
		return domain.Snapshot{}, domain.ErrSnapshotNotFound
	}
	return snapshot, nil
}

func (r *inMemoryRepo) Save(_ context.Context, id domain.GameID, snapshot domain.Snapshot) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.snapshots[id] = snapshot
	return nil
}

type delivery struct {
	category   string
	recipients []string
	text       string
}

type recordingSink struct {
	deliveries []delivery
	err        error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Deliver(_ context.Context, category string, recipients []string, text string) error {
	s.deliveries = append(s.deliveries, delivery{category: category, recipients: recipients, text: text})
	return s.err
}

func int64Ptr(v int64) *int64 { return &v }

func baseSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Turn: domain.Turn{
			GameName:      "Western War",
			GameDate:      "Spring, 1901",
			GamePhase:     "Diplomacy",
			TimeRemaining: "10 hours",
			UnixTime:      int64Ptr(10 * 3600),
			UnixTimeFrom:  int64Ptr(0),
		},
		CountryStatus: map[string]domain.CountryStatus{
			"France":  {Status: "Not received"},
			"Germany": {Status: "Ready"},
		},
		Messages: []domain.Message{{Time: "01:00", Who: "France", Text: "hello"}},
		Policy:   domain.DefaultNotifyPolicy(),
	}
}

func newTestWatcher(scraper *fakeScraper, repo *inMemoryRepo, sink *recordingSink, cfg WatcherConfig) *Watcher {
	if cfg.GameID == "" {
		cfg.GameID = "1234"
	}
	return NewWatcher(scraper, repo, NewDispatcher([]ports.Deliverer{sink}, nil), cfg, nil)
}

func TestRunCycleFirstRunSavesBaselineWithoutEvents(t *testing.T) {
	t.Parallel()

	scraper := &fakeScraper{snapshot: baseSnapshot()}
	repo := newInMemoryRepo()
	sink := &recordingSink{}
	seedPolicy := domain.DefaultNotifyPolicy()
	seedPolicy["warning"]["ops@example.com"] = true

	watcher := newTestWatcher(scraper, repo, sink, WatcherConfig{
		Thresholds:           domain.Thresholds{Warning: 12, Fatal: 6},
		AnnounceStatusChange: true,
		SeedPolicy:           seedPolicy,
	})

	require.NoError(t, watcher.RunCycle(context.Background()))

	assert.Empty(t, sink.deliveries)
	saved := repo.snapshots["1234"]
	assert.True(t, saved.Policy["warning"]["ops@example.com"], "baseline carries the seed policy")
}

func TestRunCyclePhaseChangeResetsWarnedFlags(t *testing.T) {
	t.Parallel()

	past := baseSnapshot()
	past.Warned = domain.Warned{WarningFired: true, FatalFired: true}

	curr := baseSnapshot()
	curr.Turn.GamePhase = "Retreat"

	scraper := &fakeScraper{snapshot: curr}
	repo := newInMemoryRepo()
	repo.snapshots["1234"] = past
	sink := &recordingSink{}

	watcher := newTestWatcher(scraper, repo, sink, WatcherConfig{
		Thresholds:           domain.Thresholds{Warning: 12, Fatal: 6},
		AnnounceStatusChange: true,
	})

	require.NoError(t, watcher.RunCycle(context.Background()))

	require.Len(t, sink.deliveries, 1)
	assert.Equal(t, "turn", sink.deliveries[0].category)
	assert.Contains(t, sink.deliveries[0].text, "advanced to a new phase")
	assert.Contains(t, sink.deliveries[0].text, "Retreat")

	saved := repo.snapshots["1234"]
	assert.Equal(t, domain.Warned{}, saved.Warned, "phase change resets both flags")
}

func TestRunCyclePhaseChangeStillAnnouncesStatusChanges(t *testing.T) {
	t.Parallel()

	curr := baseSnapshot()
	curr.Turn.GamePhase = "Retreat"
	curr.CountryStatus["France"] = domain.CountryStatus{Status: "Completed"}

	scraper := &fakeScraper{snapshot: curr}
	repo := newInMemoryRepo()
	repo.snapshots["1234"] = baseSnapshot()
	sink := &recordingSink{}

	watcher := newTestWatcher(scraper, repo, sink, WatcherConfig{
		Thresholds:           domain.Thresholds{Warning: 12, Fatal: 6},
		AnnounceStatusChange: true,
	})

	require.NoError(t, watcher.RunCycle(context.Background()))

	require.Len(t, sink.deliveries, 2)
	assert.Equal(t, "turn", sink.deliveries[0].category)
	assert.Contains(t, sink.deliveries[0].text, "advanced to a new phase")
	assert.Equal(t, "status", sink.deliveries[1].category)
	assert.Contains(t, sink.deliveries[1].text, "France's status has changed from Not received to Completed")
}

func TestRunCycleTurnAdvanceSkipsStatusDiff(t *testing.T) {
	t.Parallel()

	curr := baseSnapshot()
	curr.Turn.GameDate = "Autumn, 1901"
	curr.CountryStatus["France"] = domain.CountryStatus{Status: "Completed"}

	scraper := &fakeScraper{snapshot: curr}
	repo := newInMemoryRepo()
	repo.snapshots["1234"] = baseSnapshot()
	sink := &recordingSink{}

	watcher := newTestWatcher(scraper, repo, sink, WatcherConfig{
		Thresholds:           domain.Thresholds{Warning: 12, Fatal: 6},
		AnnounceStatusChange: true,
	})

	require.NoError(t, watcher.RunCycle(context.Background()))

	// The new turn resets every country's status; announcing the diff
	// against the previous turn would be noise.
	require.Len(t, sink.deliveries, 1)
	assert.Equal(t, "turn", sink.deliveries[0].category)
	assert.Contains(t, sink.deliveries[0].text, "advanced to a new turn")
}

func TestRunCycleTurnAdvanceWinsOverPhaseChange(t *testing.T) {
	t.Parallel()

	curr := baseSnapshot()
	curr.Turn.GameDate = "Autumn, 1901"
	curr.Turn.GamePhase = "Retreat"

	scraper := &fakeScraper{snapshot: curr}
	repo := newInMemoryRepo()
	repo.snapshots["1234"] = baseSnapshot()
	sink := &recordingSink{}

	watcher := newTestWatcher(scraper, repo, sink, WatcherConfig{
		Thresholds: domain.Thresholds{Warning: 12, Fatal: 6},
	})

	require.NoError(t, watcher.RunCycle(context.Background()))

	require.Len(t, sink.deliveries, 1)
	assert.Contains(t, sink.deliveries[0].text, "advanced to a new turn")
	assert.Contains(t, sink.deliveries[0].text, "Autumn, 1901")
}

func TestRunCycleSameTurnEmitsWarningAndStatusEvents(t *testing.T) {
	t.Parallel()

	curr := baseSnapshot()
	curr.CountryStatus["France"] = domain.CountryStatus{Status: "Completed"}

	scraper := &fakeScraper{snapshot: curr}
	repo := newInMemoryRepo()
	repo.snapshots["1234"] = baseSnapshot()
	sink := &recordingSink{}

	watcher := newTestWatcher(scraper, repo, sink, WatcherConfig{
		Thresholds:           domain.Thresholds{Warning: 12, Fatal: 6},
		AnnounceStatusChange: true,
	})

	require.NoError(t, watcher.RunCycle(context.Background()))

	require.Len(t, sink.deliveries, 2)
	assert.Equal(t, "warning", sink.deliveries[0].category)
	assert.Contains(t, sink.deliveries[0].text, "still need to make orders")
	assert.Contains(t, sink.deliveries[0].text, "Germany")
	assert.NotContains(t, sink.deliveries[0].text, "France", "completed countries are not nagged")
	assert.Equal(t, "status", sink.deliveries[1].category)
	assert.Contains(t, sink.deliveries[1].text, "France's status has changed from Not received to Completed")

	saved := repo.snapshots["1234"]
	assert.True(t, saved.Warned.WarningFired)
	assert.False(t, saved.Warned.FatalFired)
}

func TestRunCycleStatusAnnouncementsDisabled(t *testing.T) {
	t.Parallel()

	curr := baseSnapshot()
	curr.Turn.UnixTime = int64Ptr(20 * 3600) // above warning cutoff
	curr.CountryStatus["France"] = domain.CountryStatus{Status: "Completed"}

	scraper := &fakeScraper{snapshot: curr}
	repo := newInMemoryRepo()
	repo.snapshots["1234"] = baseSnapshot()
	sink := &recordingSink{}

	watcher := newTestWatcher(scraper, repo, sink, WatcherConfig{
		Thresholds:           domain.Thresholds{Warning: 12, Fatal: 6},
		AnnounceStatusChange: false,
	})

	require.NoError(t, watcher.RunCycle(context.Background()))
	assert.Empty(t, sink.deliveries)
}

func TestRunCycleNewMessagesAnnouncedCommandsConsumed(t *testing.T) {
	t.Parallel()

	curr := baseSnapshot()
	curr.Turn.UnixTime = int64Ptr(20 * 3600)
	curr.Messages = append(curr.Messages,
		domain.Message{Time: "02:00", Who: "France", Text: "WDA: start notify [turn,message]"},
		domain.Message{Time: "02:05", Who: "Germany", Text: "nice move"},
	)

	scraper := &fakeScraper{snapshot: curr}
	repo := newInMemoryRepo()
	repo.snapshots["1234"] = baseSnapshot()
	sink := &recordingSink{}

	watcher := newTestWatcher(scraper, repo, sink, WatcherConfig{
		Thresholds: domain.Thresholds{Warning: 12, Fatal: 6},
	})

	require.NoError(t, watcher.RunCycle(context.Background()))

	require.Len(t, sink.deliveries, 1, "the command message is not forwarded")
	assert.Equal(t, "message", sink.deliveries[0].category)
	assert.Contains(t, sink.deliveries[0].text, "New message from Germany")
	assert.Equal(t, []string{"France"}, sink.deliveries[0].recipients,
		"France subscribed to the message category in the same batch")

	saved := repo.snapshots["1234"]
	assert.True(t, saved.Policy["turn"]["France"])
	assert.True(t, saved.Policy["message"]["France"])
}

func TestRunCycleStopAllCommandSilencesSameCycle(t *testing.T) {
	t.Parallel()

	curr := baseSnapshot()
	curr.Turn.GameDate = "Autumn, 1901"
	curr.Messages = append(curr.Messages,
		domain.Message{Time: "02:00", Who: "France", Text: "WDA: admin notify stop"},
		domain.Message{Time: "02:05", Who: "Germany", Text: "quiet please"},
	)

	scraper := &fakeScraper{snapshot: curr}
	repo := newInMemoryRepo()
	repo.snapshots["1234"] = baseSnapshot()
	sink := &recordingSink{}

	watcher := newTestWatcher(scraper, repo, sink, WatcherConfig{
		Thresholds: domain.Thresholds{Warning: 12, Fatal: 6},
	})

	require.NoError(t, watcher.RunCycle(context.Background()))

	assert.Empty(t, sink.deliveries, "stop all suppresses the turn advance and the chat message")

	saved := repo.snapshots["1234"]
	assert.True(t, saved.Policy.Stopped("turn"))
	assert.True(t, saved.Policy.Stopped("message"))
	assert.True(t, saved.Policy.Stopped("warning"))
}

func TestRunCycleDeliveryFailureDoesNotBlockPersistence(t *testing.T) {
	t.Parallel()

	curr := baseSnapshot()
	curr.Turn.GameDate = "Autumn, 1901"

	scraper := &fakeScraper{snapshot: curr}
	repo := newInMemoryRepo()
	repo.snapshots["1234"] = baseSnapshot()
	sink := &recordingSink{err: errors.New("mail server unreachable")}

	watcher := newTestWatcher(scraper, repo, sink, WatcherConfig{
		Thresholds: domain.Thresholds{Warning: 12, Fatal: 6},
	})

	require.NoError(t, watcher.RunCycle(context.Background()))

	saved := repo.snapshots["1234"]
	assert.Equal(t, "Autumn, 1901", saved.Turn.GameDate, "new state persisted despite delivery failure")
}

func TestRunCycleEmptySnapshotAborts(t *testing.T) {
	t.Parallel()

	scraper := &fakeScraper{snapshot: domain.Snapshot{}}
	repo := newInMemoryRepo()
	repo.snapshots["1234"] = baseSnapshot()
	sink := &recordingSink{}

	watcher := newTestWatcher(scraper, repo, sink, WatcherConfig{})

	err := watcher.RunCycle(context.Background())
	require.ErrorIs(t, err, domain.ErrEmptySnapshot)
	assert.Equal(t, 0, repo.saves, "baseline preserved for the next cycle")
}

func TestRunCycleScrapeErrorAborts(t *testing.T) {
	t.Parallel()

	scrapeErr := errors.New("connection refused")
	scraper := &fakeScraper{err: scrapeErr}
	watcher := newTestWatcher(scraper, newInMemoryRepo(), &recordingSink{}, WatcherConfig{})

	err := watcher.RunCycle(context.Background())
	require.ErrorIs(t, err, scrapeErr)
}

func TestRunCyclePersistenceFailureSurfaced(t *testing.T) {
	t.Parallel()

	saveErr := errors.New("disk full")
	scraper := &fakeScraper{snapshot: baseSnapshot()}
	repo := newInMemoryRepo()
	repo.snapshots["1234"] = baseSnapshot()
	repo.saveErr = saveErr

	watcher := newTestWatcher(scraper, repo, &recordingSink{}, WatcherConfig{})

	err := watcher.RunCycle(context.Background())
	require.ErrorIs(t, err, saveErr)
}

func TestRunOneShotRunsSingleCycle(t *testing.T) {
	t.Parallel()

	scraper := &fakeScraper{snapshot: baseSnapshot()}
	repo := newInMemoryRepo()
	watcher := newTestWatcher(scraper, repo, &recordingSink{}, WatcherConfig{})

	require.NoError(t, watcher.Run(context.Background(), time.Minute, true))
	assert.Equal(t, 1, scraper.calls)
}

func TestRunStopsOnContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scraper := &fakeScraper{snapshot: baseSnapshot()}
	watcher := newTestWatcher(scraper, newInMemoryRepo(), &recordingSink{}, WatcherConfig{})

	err := watcher.Run(ctx, time.Hour, false)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, scraper.calls, "the cancelled context is noticed before the second cycle")
}
