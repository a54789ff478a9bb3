package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dipwatch",
		Short:         "dipwatch: watch a webDiplomacy game and announce changes",
		Long:          "dipwatch polls a webDiplomacy board page, keeps a snapshot of the game state, and announces turn advances, phase changes, player status changes, new chat messages, and time-remaining warnings through the configured channels.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newWatchCmd(app),
		newStatusCmd(app),
		newPolicyCmd(app),
	)

	return rootCmd
}
