package application

import (
	"fmt"
	"strings"

	"github.com/bnema/dipwatch/internal/domain"
)

func renderTurnAdvance(turn domain.Turn) Event {
	return Event{
		Category: domain.CategoryTurn,
		Text:     fmt.Sprintf("The game %q advanced to a new turn! It is now %s.", turn.GameName, turn.GameDate),
	}
}

func renderPhaseChange(turn domain.Turn) Event {
	return Event{
		Category: domain.CategoryTurn,
		Text: fmt.Sprintf("The game %q advanced to a new phase! It is now in the %s phase of %s.",
			turn.GameName, turn.GamePhase, turn.GameDate),
	}
}

func renderStatusChange(change domain.StatusChange) Event {
	return Event{
		Category: domain.CategoryStatus,
		Text: fmt.Sprintf("%s's status has changed from %s to %s",
			change.Country, change.OldStatus, change.NewStatus),
	}
}

func renderMessage(msg domain.Message) Event {
	return Event{
		Category: domain.CategoryMessage,
		Text:     fmt.Sprintf("New message from %s: %q", msg.Who, msg.Text),
	}
}

func renderWarning(w domain.TurnWarning) Event {
	countries := strings.Join(w.Countries, ", ")
	if w.Fatal {
		return Event{
			Category: domain.CategoryWarning,
			Text:     fmt.Sprintf("%s, you are slow! Only %s until the turn ends", countries, w.TimeRemaining),
		}
	}
	return Event{
		Category: domain.CategoryWarning,
		Text: fmt.Sprintf("%s still need to make orders. Hurry up, only %s until the turn ends",
			countries, w.TimeRemaining),
	}
}
