package domain

import "sort"

// Thresholds are the hour cutoffs below which time-remaining alerts fire.
// Fatal is expected to be tighter than Warning but this is not enforced: a
// fatal threshold above the warning one simply produces both alerts on the
// first cycle that crosses the looser cutoff.
type Thresholds struct {
	Warning float64
	Fatal   float64
}

// TurnWarning is one time-remaining alert: the countries that still owe
// orders and how much time is left.
type TurnWarning struct {
	Fatal         bool
	Countries     []string
	TimeRemaining string
}

// EvaluateWarnings decides whether time-remaining alerts newly fire for the
// current turn, flipping the one-shot flags on the snapshot. Callers run it
// only when the turn and phase are unchanged since the last fetch; the
// flags are reset elsewhere on a turn or phase advance.
//
// The whole check is skipped when there is no countdown, during Pre-game,
// or while the game is paused or finished.
func EvaluateWarnings(s *Snapshot, th Thresholds) []TurnWarning {
	hours, ok := s.Turn.HoursRemaining()
	if !ok {
		return nil
	}
	if s.Turn.GamePhase == PhasePreGame {
		return nil
	}
	if s.Turn.State == GameStatePaused || s.Turn.State == GameStateFinished {
		return nil
	}

	var pending []string
	for country, status := range s.CountryStatus {
		if status.OwesOrders() {
			pending = append(pending, country)
		}
	}
	sort.Strings(pending)

	var warnings []TurnWarning
	if hours < th.Warning && !s.Warned.WarningFired {
		warnings = append(warnings, TurnWarning{
			Countries:     pending,
			TimeRemaining: s.Turn.TimeRemaining,
		})
		s.Warned.WarningFired = true
	}
	if hours < th.Fatal && !s.Warned.FatalFired {
		warnings = append(warnings, TurnWarning{
			Fatal:         true,
			Countries:     pending,
			TimeRemaining: s.Turn.TimeRemaining,
		})
		s.Warned.FatalFired = true
	}

	return warnings
}
