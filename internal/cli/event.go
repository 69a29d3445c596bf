package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	matomo "github.com/GesetzeFinden-at/matomo-sdk"
)

var (
	eventCategory string
	eventAction   string
	eventName     string
	eventValue    float64
	eventURL      string
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Record a custom event",
	Long: `Record a custom event (e_c/e_a, optionally e_n/e_v). Events are
flagged as custom actions so they do not count as page views.

Example:
  matomo event -c Video -a play -n intro --value 2.5`,
	RunE: runEvent,
}

func init() {
	rootCmd.AddCommand(eventCmd)

	eventCmd.Flags().StringVarP(&eventCategory, "category", "c", "", "event category (e_c, required)")
	eventCmd.Flags().StringVarP(&eventAction, "action", "a", "", "event action (e_a, required)")
	eventCmd.Flags().StringVarP(&eventName, "name", "n", "", "event name (e_n)")
	eventCmd.Flags().Float64Var(&eventValue, "value", 0, "event value (e_v)")
	eventCmd.Flags().StringVar(&eventURL, "url", "", "page URL the event happened on (required)")
	eventCmd.MarkFlagRequired("category") //nolint:errcheck
	eventCmd.MarkFlagRequired("action")   //nolint:errcheck
	eventCmd.MarkFlagRequired("url")      //nolint:errcheck
}

func runEvent(cmd *cobra.Command, args []string) error {
	_, _, client, err := setup()
	if err != nil {
		return err
	}

	p := matomo.Params{
		URL:           eventURL,
		EventCategory: eventCategory,
		EventAction:   eventAction,
		EventName:     eventName,
	}
	if cmd.Flags().Changed("value") {
		p.EventValue = &eventValue
	}

	if _, err := client.TrackEvent(cmd.Context(), p); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "event recorded: %s/%s\n", eventCategory, eventAction)
	return nil
}
