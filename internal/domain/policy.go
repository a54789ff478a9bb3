package domain

import "sort"

// StopAllSentinel is a reserved subscriber id acting as a per-category kill
// switch: when set to true, nothing in that category is delivered,
// regardless of per-subscriber flags.
const StopAllSentinel = "__stop_all__"

const (
	CategoryMessage = "message"
	CategoryTurn    = "turn"
	CategoryStatus  = "status"
	CategoryWarning = "warning"
)

// NotifyPolicy maps a notification category to per-subscriber enabled
// flags. It is conversation-derived configuration: mutated only by chat
// commands and carried forward fetch-to-fetch through the Snapshot.
type NotifyPolicy map[string]map[string]bool

func DefaultNotifyPolicy() NotifyPolicy {
	p := NotifyPolicy{}
	p.EnsureDefaults()
	return p
}

// EnsureDefaults creates the built-in categories if missing. Existing
// entries are never touched.
func (p NotifyPolicy) EnsureDefaults() {
	for _, category := range []string{CategoryMessage, CategoryTurn, CategoryWarning} {
		if _, ok := p[category]; !ok {
			p[category] = map[string]bool{}
		}
	}
}

func (p NotifyPolicy) Clone() NotifyPolicy {
	if p == nil {
		return NotifyPolicy{}
	}

	clone := make(NotifyPolicy, len(p))
	for category, subscribers := range p {
		entry := make(map[string]bool, len(subscribers))
		for who, enabled := range subscribers {
			entry[who] = enabled
		}
		clone[category] = entry
	}

	return clone
}

// StopAll sets the kill-switch sentinel on every existing category.
func (p NotifyPolicy) StopAll(stopped bool) {
	for category := range p {
		p[category][StopAllSentinel] = stopped
	}
}

// SetSubscriber flips a subscriber flag on the named categories, creating
// unknown categories fresh. With all set, every existing category is
// targeted instead.
func (p NotifyPolicy) SetSubscriber(categories []string, all bool, who string, enabled bool) {
	if all {
		for category := range p {
			p[category][who] = enabled
		}
		return
	}

	for _, category := range categories {
		if _, ok := p[category]; !ok {
			p[category] = map[string]bool{}
		}
		p[category][who] = enabled
	}
}

// Stopped reports whether the category's kill switch is set.
func (p NotifyPolicy) Stopped(category string) bool {
	return p[category][StopAllSentinel]
}

// Recipients returns the subscribers with an enabled flag in the category,
// sorted, sentinel excluded. Empty means broadcast to the default channel.
func (p NotifyPolicy) Recipients(category string) []string {
	var recipients []string
	for who, enabled := range p[category] {
		if who == StopAllSentinel || !enabled {
			continue
		}
		recipients = append(recipients, who)
	}
	sort.Strings(recipients)
	return recipients
}
