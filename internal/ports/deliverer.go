package ports

import "context"

// Deliverer sends a rendered notification to one transport (console, mail,
// Discord). An empty recipients slice means broadcast to the transport's
// default target.
type Deliverer interface {
	Name() string
	Deliver(ctx context.Context, category string, recipients []string, text string) error
}
