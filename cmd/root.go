package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gymctl",
	Short: "Gym gamification backend",
	Long:  "gymctl runs the gym gamification API (levels, points, badges, challenges, workout sessions) and its maintenance tasks.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(resetCmd)
}
