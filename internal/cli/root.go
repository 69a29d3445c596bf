// Package cli provides the matomo command-line interface: a thin operator
// console over the SDK for sending hits, draining the offline spool, and
// inspecting a tracking setup.
//
// Configuration sources, in precedence order:
//  1. Command-line flags (--site-id, --endpoint, ...)
//  2. MATOMO_CONFIG_FILE environment variable (custom config file path)
//  3. Individual MATOMO_* environment variables (MATOMO_TRACKER_SITE_ID, ...)
//  4. .matomo.yml in the current directory
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GesetzeFinden-at/matomo-sdk/internal/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "matomo",
	Short: "Send hits to a Matomo tracking endpoint",
	Long: `The matomo CLI sends tracking requests to a Matomo (or legacy Piwik)
HTTP tracking endpoint and manages an offline hit spool.

Quick start:
  matomo pageview https://mywebsite.com/        Record a page view
  matomo event -c Video -a play                 Record a custom event
  matomo bulk hits.json                         Send a batch in one POST
  matomo spool ship                             Drain queued hits
  matomo doctor                                 Check endpoint and config

Site and endpoint come from flags, MATOMO_* environment variables, or a
.matomo.yml config file.`,
	SilenceUsage: true,
}

// Execute runs the root command. ctx cancellation (e.g. SIGINT from main)
// propagates to every command through cmd.Context().
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is .matomo.yml, can also use MATOMO_CONFIG_FILE)")
	rootCmd.PersistentFlags().Int("site-id", 0, "id of the tracked site")
	rootCmd.PersistentFlags().String("endpoint", "", "tracker endpoint URL (ending in matomo.php or piwik.php)")
	rootCmd.PersistentFlags().String("token-auth", "", "API token for bulk submissions and authenticated overrides")
	rootCmd.PersistentFlags().Bool("skip-endpoint-validation", false, "skip the tracking-script suffix check on the endpoint")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")

	viper.BindPFlag("tracker.site_id", rootCmd.PersistentFlags().Lookup("site-id"))             //nolint:errcheck
	viper.BindPFlag("tracker.endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))           //nolint:errcheck
	viper.BindPFlag("tracker.token_auth", rootCmd.PersistentFlags().Lookup("token-auth"))       //nolint:errcheck
	viper.BindPFlag("tracker.skip_validation", rootCmd.PersistentFlags().Lookup("skip-endpoint-validation")) //nolint:errcheck
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))                 //nolint:errcheck
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))               //nolint:errcheck
}

// initConfig locates the config file and wires the MATOMO_ env prefix.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("MATOMO_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.SetConfigName(".matomo")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	config.SetupEnv()

	// A missing config file is fine; flags and env may carry everything.
	viper.ReadInConfig() //nolint:errcheck
}
