// Package console is the default delivery sink: announcements printed to a
// writer, normally stdout.
package console

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/dipwatch/internal/ports"
)

type Sink struct {
	out io.Writer
}

var _ ports.Deliverer = (*Sink)(nil)

func NewSink(out io.Writer) *Sink {
	return &Sink{out: out}
}

func (s *Sink) Name() string { return "console" }

func (s *Sink) Deliver(ctx context.Context, category string, recipients []string, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(s.out, text); err != nil {
		return fmt.Errorf("write console notification: %w", err)
	}

	return nil
}
