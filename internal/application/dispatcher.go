package application

import (
	"context"
	"log/slog"

	"github.com/bnema/dipwatch/internal/domain"
	"github.com/bnema/dipwatch/internal/ports"
)

// Event is one notify-worthy change, rendered and tagged with its policy
// category.
type Event struct {
	Category string
	Text     string
}

// Dispatcher routes events to the configured delivery sinks, applying the
// snapshot's notification policy: a category with the kill switch set is
// dropped entirely, otherwise the text goes to every sink addressed to the
// category's enabled subscribers (or as a plain broadcast when nobody
// subscribed explicitly).
//
// Delivery failures are logged per sink and never propagate: the diff and
// warning decisions are principal and must reach persistence even when a
// transport is down.
type Dispatcher struct {
	sinks  []ports.Deliverer
	logger *slog.Logger
}

func NewDispatcher(sinks []ports.Deliverer, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{sinks: sinks, logger: logger}
}

func (d *Dispatcher) Dispatch(ctx context.Context, policy domain.NotifyPolicy, event Event) {
	if policy.Stopped(event.Category) {
		d.logger.Debug("notification suppressed", "category", event.Category)
		return
	}

	recipients := policy.Recipients(event.Category)
	for _, sink := range d.sinks {
		if err := sink.Deliver(ctx, event.Category, recipients, event.Text); err != nil {
			d.logger.Error("delivery failed",
				"sink", sink.Name(),
				"category", event.Category,
				"error", err)
		}
	}
}
