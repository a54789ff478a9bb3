package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/dipwatch/internal/domain"
)

func newWatchCmd(app *app) *cobra.Command {
	var (
		gameID  string
		gameURL string
		oneShot bool
		wait    int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the board page and announce changes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			watcher, cleanup, err := app.newWatcher(gameURL, domain.GameID(gameID), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			app.logger.Info("watching game",
				"game", gameID,
				"oneshot", oneShot,
				"wait_minutes", wait)

			return watcher.Run(ctx, time.Duration(wait)*time.Minute, oneShot)
		},
	}

	cmd.Flags().StringVar(&gameID, "game-id", app.cfg.GameID, "webDiplomacy game ID")
	cmd.Flags().StringVar(&gameURL, "game-url", app.cfg.GameURL, "Board page URL up to the query separator")
	cmd.Flags().BoolVar(&oneShot, "oneshot", app.cfg.OneShot, "Run a single cycle and exit")
	cmd.Flags().IntVar(&wait, "wait", app.cfg.WaitMinutes, "Minutes between cycles")

	return cmd
}
