package cmd

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/dipwatch/internal/ports"
)

func TestNewSinksCleanupClosesConnectedSinks(t *testing.T) {
	t.Parallel()

	a := &app{
		cfg: appConfig{
			ConsoleEnabled:   true,
			DiscordEnabled:   true,
			DiscordToken:     "not-a-real-token",
			DiscordChannelID: "42",
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:  ports.SystemClock{},
	}

	sinks, cleanup, err := a.newSinks(io.Discard)
	require.NoError(t, err)
	require.Len(t, sinks, 2)
	require.NotNil(t, cleanup)

	assert.NotPanics(t, cleanup, "closing a never-opened session is a no-op")
}

func TestNewSinksConsoleOnlyCleanupIsNoOp(t *testing.T) {
	t.Parallel()

	a := &app{
		cfg:    appConfig{ConsoleEnabled: true},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:  ports.SystemClock{},
	}

	sinks, cleanup, err := a.newSinks(io.Discard)
	require.NoError(t, err)
	require.Len(t, sinks, 1)
	require.NotNil(t, cleanup)
	cleanup()
}
