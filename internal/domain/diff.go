package domain

import "sort"

type TurnChange string

const (
	TurnNoChange    TurnChange = "no_change"
	TurnPhaseChange TurnChange = "phase_change"
	TurnAdvance     TurnChange = "turn_advance"
)

// CompareTurn classifies the difference between two title-bar extractions.
// A date change wins over a phase change: a new turn usually carries a new
// phase as well, and only the advance is reported.
func CompareTurn(curr, past Turn) TurnChange {
	if curr.GameDate != past.GameDate {
		return TurnAdvance
	}
	if curr.GamePhase != past.GamePhase {
		return TurnPhaseChange
	}
	return TurnNoChange
}

type StatusChange struct {
	Country   string
	OldStatus string
	NewStatus string
}

// CompareStatus reports every country present in both snapshots whose
// status string differs, in sorted country order. Countries that joined or
// left between fetches are not reported; the caller may log the length
// mismatch as an anomaly.
func CompareStatus(curr, past map[string]CountryStatus) []StatusChange {
	countries := make([]string, 0, len(curr))
	for country := range curr {
		countries = append(countries, country)
	}
	sort.Strings(countries)

	var changes []StatusChange
	for _, country := range countries {
		old, ok := past[country]
		if !ok {
			continue
		}
		if curr[country].Status != old.Status {
			changes = append(changes, StatusChange{
				Country:   country,
				OldStatus: old.Status,
				NewStatus: curr[country].Status,
			})
		}
	}

	return changes
}

// CompareMessages returns every message of curr that no message of past
// structurally equals, preserving curr's order. A verbatim repeat of an
// already-seen message is treated as already seen and suppressed.
func CompareMessages(curr, past []Message) []Message {
	seen := make(map[Message]struct{}, len(past))
	for _, m := range past {
		seen[m] = struct{}{}
	}

	var fresh []Message
	for _, m := range curr {
		if _, ok := seen[m]; ok {
			continue
		}
		fresh = append(fresh, m)
	}

	return fresh
}
