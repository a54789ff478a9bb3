package domain

type GameID string

type GameState string

const (
	GameStatePaused   GameState = "Paused"
	GameStateFinished GameState = "Finished"
)

// Turn holds the title-bar information of one fetch: date, phase and the
// time remaining until the turn ends. UnixTime and UnixTimeFrom are absent
// when the page shows no countdown (paused or finished games).
type Turn struct {
	GameName      string
	GameDate      string
	GamePhase     string
	State         GameState
	TimeRemaining string
	UnixTime      *int64
	UnixTimeFrom  *int64
}

const PhasePreGame = "Pre-game"

func (t Turn) IsZero() bool {
	return t.GameName == "" && t.GameDate == "" && t.GamePhase == ""
}

// HoursRemaining derives the hours left in the turn. The second return is
// false when either unix timestamp is absent.
func (t Turn) HoursRemaining() (float64, bool) {
	if t.UnixTime == nil || t.UnixTimeFrom == nil {
		return 0, false
	}
	return float64(*t.UnixTime-*t.UnixTimeFrom) / 3600, true
}

const (
	StatusCompleted = "Completed"
	StatusDefeated  = "Defeated"
)

type CountryStatus struct {
	Status string
}

// OwesOrders reports whether the country still has to act this turn.
func (c CountryStatus) OwesOrders() bool {
	return c.Status != StatusCompleted && c.Status != StatusDefeated
}

// Message is one chat entry as rendered by the page. Two messages are the
// same message iff all three fields match.
type Message struct {
	Time string
	Who  string
	Text string
}

// Warned tracks which time-remaining alerts already fired for the current
// turn. Reset on every turn or phase advance.
type Warned struct {
	WarningFired bool
	FatalFired   bool
}

func (w *Warned) Reset() {
	w.WarningFired = false
	w.FatalFired = false
}

// Snapshot is one fetch cycle's extracted game state plus the configuration
// carried across cycles (notification policy, warned flags).
type Snapshot struct {
	Turn          Turn
	CountryStatus map[string]CountryStatus
	Messages      []Message
	Warned        Warned
	Policy        NotifyPolicy
}

// Valid reports whether the scrape produced usable data. A snapshot with
// neither turn nor status information is a fetch failure, not "no change".
func (s Snapshot) Valid() bool {
	return !s.Turn.IsZero() || len(s.CountryStatus) > 0
}

// CarryForward seeds conversation-derived state from the previously
// persisted snapshot: the notification policy and the per-turn warned
// flags. Scraped fields are left untouched.
func (s *Snapshot) CarryForward(past Snapshot) {
	s.Warned = past.Warned
	s.Policy = past.Policy.Clone()
	s.Policy.EnsureDefaults()
}
