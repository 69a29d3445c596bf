package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	matomo "github.com/GesetzeFinden-at/matomo-sdk"
)

var (
	contentName        string
	contentPiece       string
	contentTarget      string
	contentInteraction string
	contentURL         string
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Record a content impression or interaction",
	Long: `Record a content impression (c_n/c_p) or, with --interaction, a
content interaction. Content hits are flagged as custom actions.

Example:
  matomo content --name banner --piece ad.jpg --url https://mywebsite.com/`,
	RunE: runContent,
}

func init() {
	rootCmd.AddCommand(contentCmd)

	contentCmd.Flags().StringVar(&contentName, "name", "", "content name (c_n, required)")
	contentCmd.Flags().StringVar(&contentPiece, "piece", "", "content piece (c_p, required)")
	contentCmd.Flags().StringVar(&contentTarget, "target", "", "content target (c_t)")
	contentCmd.Flags().StringVar(&contentInteraction, "interaction", "", "content interaction, e.g. click (c_i)")
	contentCmd.Flags().StringVar(&contentURL, "url", "", "page URL the content was shown on (required)")
	contentCmd.MarkFlagRequired("name")  //nolint:errcheck
	contentCmd.MarkFlagRequired("piece") //nolint:errcheck
	contentCmd.MarkFlagRequired("url")   //nolint:errcheck
}

func runContent(cmd *cobra.Command, args []string) error {
	_, _, client, err := setup()
	if err != nil {
		return err
	}

	_, err = client.TrackContent(cmd.Context(), matomo.Params{
		URL:                contentURL,
		ContentName:        contentName,
		ContentPiece:       contentPiece,
		ContentTarget:      contentTarget,
		ContentInteraction: contentInteraction,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "content recorded: %s (%s)\n", contentName, contentPiece)
	return nil
}
