package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	sdkerrors "github.com/GesetzeFinden-at/matomo-sdk/internal/errors"
	"github.com/GesetzeFinden-at/matomo-sdk/internal/spool"
)

var bulkCmd = &cobra.Command{
	Use:   "bulk FILE",
	Short: "Send a batch of hits in one POST",
	Long: `Read a list of tracking requests from FILE (JSON or YAML, keyed by
the tracking API's wire names) and submit them as a single bulk POST.
The batch preserves file order and fails or succeeds as a whole.

Example file (hits.json):
  [
    {"url": "https://mywebsite.com/", "action_name": "Home"},
    {"e_c": "Buy", "e_a": "rightButton", "e_v": 2}
  ]`,
	Args: cobra.ExactArgs(1),
	RunE: runBulk,
}

func init() {
	rootCmd.AddCommand(bulkCmd)
}

func runBulk(cmd *cobra.Command, args []string) error {
	_, _, client, err := setup()
	if err != nil {
		return err
	}

	hits, err := spool.DecodeHitList(args[0])
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		return sdkerrors.NewValidationError("empty_batch", "%s contains no hits", args[0])
	}

	if _, err := client.TrackBulk(cmd.Context(), hits); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d hits submitted in one batch\n", len(hits))
	return nil
}
