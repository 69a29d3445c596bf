package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	matomo "github.com/GesetzeFinden-at/matomo-sdk"
	"github.com/GesetzeFinden-at/matomo-sdk/internal/spool"
)

var (
	spoolAddActionName string
	spoolWatchDebounce time.Duration
	spoolWatchInterval time.Duration
)

var spoolCmd = &cobra.Command{
	Use:   "spool",
	Short: "Manage the offline hit spool",
	Long: `Queue hits on disk while the endpoint is unreachable and drain them
later as bulk submissions. Files are removed only after their batch was
accepted, so a failed ship leaves everything queued.`,
}

var spoolAddCmd = &cobra.Command{
	Use:   "add URL",
	Short: "Queue a page view without sending it",
	Args:  cobra.ExactArgs(1),
	RunE:  runSpoolAdd,
}

var spoolShipCmd = &cobra.Command{
	Use:   "ship",
	Short: "Drain the spool into bulk submissions",
	Args:  cobra.NoArgs,
	RunE:  runSpoolShip,
}

var spoolWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Ship queued hits as they arrive",
	Long: `Watch the spool directory and ship hits as files show up, debouncing
bursts into one pass. --interval adds a periodic pass that retries
batches left behind by delivery failures. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runSpoolWatch,
}

func init() {
	rootCmd.AddCommand(spoolCmd)
	spoolCmd.AddCommand(spoolAddCmd)
	spoolCmd.AddCommand(spoolShipCmd)
	spoolCmd.AddCommand(spoolWatchCmd)

	spoolAddCmd.Flags().StringVar(&spoolAddActionName, "action-name", "", "page title (action_name)")
	spoolWatchCmd.Flags().DurationVar(&spoolWatchDebounce, "debounce", 300*time.Millisecond, "quiet period before shipping a burst")
	spoolWatchCmd.Flags().DurationVar(&spoolWatchInterval, "interval", time.Minute, "periodic retry pass (0 disables)")
}

func runSpoolAdd(cmd *cobra.Command, args []string) error {
	cfg, _, _, err := setup()
	if err != nil {
		return err
	}

	s, err := spool.New(cfg.Spool.Dir)
	if err != nil {
		return err
	}

	name, err := s.Add(matomo.Params{URL: args[0], ActionName: spoolAddActionName})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "queued %s\n", name)
	return nil
}

func runSpoolShip(cmd *cobra.Command, args []string) error {
	cfg, logger, client, err := setup()
	if err != nil {
		return err
	}

	s, err := spool.New(cfg.Spool.Dir)
	if err != nil {
		return err
	}

	shipped, err := spool.NewShipper(s, client, cfg.Spool.BatchSize, logger).Ship(cmd.Context())
	if err != nil {
		return fmt.Errorf("shipped %d hits before failing: %w", shipped, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "shipped %d hits\n", shipped)
	return nil
}

func runSpoolWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, client, err := setup()
	if err != nil {
		return err
	}

	s, err := spool.New(cfg.Spool.Dir)
	if err != nil {
		return err
	}

	shipper := spool.NewShipper(s, client, cfg.Spool.BatchSize, logger)
	watcher := spool.NewWatcher(shipper, spoolWatchDebounce, spoolWatchInterval, logger)

	fmt.Fprintf(cmd.OutOrStdout(), "watching %s (ctrl-c to stop)\n", cfg.Spool.Dir)
	if err := watcher.Run(cmd.Context()); err != nil && cmd.Context().Err() == nil {
		return err
	}
	return nil
}
