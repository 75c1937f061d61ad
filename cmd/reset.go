package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe all points, badges and challenge completions (demo environments only)",
	Long:  "Deletes the points ledger and every badge and challenge grant, then resets each user's acknowledged level. Refused unless ALLOW_DEMO_RESET=true.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.services.Reset.Reset(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Deleted %d point events, %d badges, %d challenge completions.\n",
			report.PointEvents, report.UserBadges, report.UserChallenges)
		if report.IdentitySkipped {
			fmt.Fprintln(out, "Identity provider not configured; acknowledged levels left untouched.")
		} else {
			fmt.Fprintf(out, "Acknowledged level reset for %d users (%d failed).\n", report.UsersReset, report.UsersFailed)
		}
		return nil
	},
}
