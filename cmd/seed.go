package cmd

import (
	"fmt"

	"gym-management-system/database"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sedes, muscle groups, badges and challenges",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := database.Seed(a.db)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d sedes, %d muscle groups, %d badges, %d challenges.\n",
			report.Sedes, report.MuscleGroups, report.Badges, report.Challenges)
		return nil
	},
}
