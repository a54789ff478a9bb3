package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bnema/dipwatch/internal/domain"
)

func newStatusCmd(app *app) *cobra.Command {
	var (
		gameID string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the persisted snapshot of the watched game",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := app.newRepository()
			if err != nil {
				return err
			}

			snapshot, err := repo.Load(cmd.Context(), domain.GameID(gameID))
			if err != nil {
				return fmt.Errorf("load snapshot for game %s: %w", gameID, err)
			}

			if asJSON {
				data, err := json.MarshalIndent(snapshot, "", "  ")
				if err != nil {
					return fmt.Errorf("encode snapshot: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s, %s phase\n", snapshot.Turn.GameName, snapshot.Turn.GameDate, snapshot.Turn.GamePhase)
			if snapshot.Turn.State != "" {
				fmt.Fprintf(out, "state: %s\n", snapshot.Turn.State)
			}
			if snapshot.Turn.TimeRemaining != "" {
				fmt.Fprintf(out, "time remaining: %s\n", snapshot.Turn.TimeRemaining)
			}

			countries := make([]string, 0, len(snapshot.CountryStatus))
			for country := range snapshot.CountryStatus {
				countries = append(countries, country)
			}
			sort.Strings(countries)
			for _, country := range countries {
				fmt.Fprintf(out, "  %-12s %s\n", country, snapshot.CountryStatus[country].Status)
			}

			fmt.Fprintf(out, "warned: warning=%v fatal=%v\n", snapshot.Warned.WarningFired, snapshot.Warned.FatalFired)
			fmt.Fprintf(out, "messages seen: %d\n", len(snapshot.Messages))

			return nil
		},
	}

	cmd.Flags().StringVar(&gameID, "game-id", app.cfg.GameID, "webDiplomacy game ID")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw snapshot as JSON")

	return cmd
}
