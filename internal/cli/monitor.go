package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GesetzeFinden-at/matomo-sdk/internal/monitor"
	"github.com/GesetzeFinden-at/matomo-sdk/internal/spool"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch the spool and stream dispatched hits to websocket subscribers",
	Long: `Run the spool watcher together with a local monitor server. Every hit
shipped to the tracking endpoint is broadcast as a JSON frame to
websocket clients connected to ws://<addr>/ws, so a tracking setup can
be inspected live without access to the Matomo backend.`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().String("addr", "", "monitor listen address (default localhost:9638)")
	viper.BindPFlag("monitor.addr", monitorCmd.Flags().Lookup("addr")) //nolint:errcheck
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, logger, client, err := setup()
	if err != nil {
		return err
	}

	s, err := spool.New(cfg.Spool.Dir)
	if err != nil {
		return err
	}

	mon := monitor.NewServer(cfg.Monitor.Addr, logger)
	client.OnHit(mon.HitObserver())

	shipper := spool.NewShipper(s, client, cfg.Spool.BatchSize, logger)
	watcher := spool.NewWatcher(shipper, 300*time.Millisecond, time.Minute, logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() { errCh <- mon.Run(ctx) }()
	go func() { errCh <- watcher.Run(ctx) }()

	fmt.Fprintf(cmd.OutOrStdout(), "monitor on http://%s (ws://%s/ws), watching %s\n",
		cfg.Monitor.Addr, cfg.Monitor.Addr, cfg.Spool.Dir)

	// First exit wins; tear the other half down with it.
	err = <-errCh
	cancel()
	<-errCh

	if cmd.Context().Err() != nil {
		return nil // interrupted by the user
	}
	return err
}
