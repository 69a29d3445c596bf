package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	matomo "github.com/GesetzeFinden-at/matomo-sdk"
)

var (
	pageviewActionName string
	pageviewReferrer   string
	pageviewUserID     string
)

var pageviewCmd = &cobra.Command{
	Use:     "pageview URL",
	Aliases: []string{"pv"},
	Short:   "Record a page view",
	Args:    cobra.ExactArgs(1),
	RunE:    runPageview,
}

func init() {
	rootCmd.AddCommand(pageviewCmd)

	pageviewCmd.Flags().StringVar(&pageviewActionName, "action-name", "", "page title (action_name)")
	pageviewCmd.Flags().StringVar(&pageviewReferrer, "referrer", "", "referrer URL (urlref)")
	pageviewCmd.Flags().StringVar(&pageviewUserID, "user-id", "", "user id the hit belongs to (uid)")
}

func runPageview(cmd *cobra.Command, args []string) error {
	_, _, client, err := setup()
	if err != nil {
		return err
	}

	_, err = client.Track(cmd.Context(), matomo.Params{
		URL:        args[0],
		ActionName: pageviewActionName,
		Referrer:   pageviewReferrer,
		UserID:     pageviewUserID,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "page view recorded for %s\n", args[0])
	return nil
}
