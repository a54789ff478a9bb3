package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bnema/dipwatch/internal/domain"
)

func newPolicyCmd(app *app) *cobra.Command {
	var gameID string

	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Show the persisted notification policy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := app.newRepository()
			if err != nil {
				return err
			}

			snapshot, err := repo.Load(cmd.Context(), domain.GameID(gameID))
			if err != nil {
				return fmt.Errorf("load snapshot for game %s: %w", gameID, err)
			}

			out := cmd.OutOrStdout()

			categories := make([]string, 0, len(snapshot.Policy))
			for category := range snapshot.Policy {
				categories = append(categories, category)
			}
			sort.Strings(categories)

			for _, category := range categories {
				fmt.Fprintf(out, "%s:", category)
				if snapshot.Policy.Stopped(category) {
					fmt.Fprint(out, " [stopped]")
				}
				recipients := snapshot.Policy.Recipients(category)
				if len(recipients) == 0 {
					fmt.Fprint(out, " (broadcast only)")
				}
				fmt.Fprintln(out)
				for _, who := range recipients {
					fmt.Fprintf(out, "  %s\n", who)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&gameID, "game-id", app.cfg.GameID, "webDiplomacy game ID")

	return cmd
}
