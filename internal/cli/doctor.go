package cli

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/GesetzeFinden-at/matomo-sdk/internal/config"
	"github.com/GesetzeFinden-at/matomo-sdk/internal/validation"
)

var doctorFormat string

// checkResult is one doctor finding.
type checkResult struct {
	Name   string `yaml:"name"`
	OK     bool   `yaml:"ok"`
	Detail string `yaml:"detail,omitempty"`
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and endpoint reachability",
	Long: `Run diagnostic checks against the current configuration: config
validity, endpoint shape, endpoint reachability, and spool directory
writability. Exits non-zero when any check fails.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().StringVar(&doctorFormat, "format", "text", "output format (text, yaml)")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	var results []checkResult

	cfg, err := config.Load()
	if err != nil {
		results = append(results, checkResult{Name: "configuration", OK: false, Detail: err.Error()})
		return reportDoctor(cmd, results)
	}
	results = append(results, checkResult{
		Name:   "configuration",
		OK:     true,
		Detail: fmt.Sprintf("site %d, endpoint %s", cfg.Tracker.SiteID, cfg.Tracker.Endpoint),
	})

	if validation.HasTrackerSuffix(cfg.Tracker.Endpoint) {
		results = append(results, checkResult{Name: "endpoint shape", OK: true})
	} else {
		results = append(results, checkResult{
			Name:   "endpoint shape",
			OK:     cfg.Tracker.SkipValidation,
			Detail: "endpoint does not end in matomo.php or piwik.php",
		})
	}

	results = append(results, checkEndpointReachable(cfg))
	results = append(results, checkSpoolWritable(cfg))

	return reportDoctor(cmd, results)
}

// checkEndpointReachable probes the endpoint with a parameterless GET. Any
// HTTP answer counts as reachable; Matomo responds with a 400 when the
// required parameters are missing, which is still proof of life.
func checkEndpointReachable(cfg *config.Config) checkResult {
	httpClient := &http.Client{Timeout: 10 * time.Second}
	resp, err := httpClient.Get(cfg.Tracker.Endpoint)
	if err != nil {
		return checkResult{Name: "endpoint reachable", OK: false, Detail: err.Error()}
	}
	resp.Body.Close()
	return checkResult{
		Name:   "endpoint reachable",
		OK:     true,
		Detail: fmt.Sprintf("responded with status %d", resp.StatusCode),
	}
}

func checkSpoolWritable(cfg *config.Config) checkResult {
	if err := os.MkdirAll(cfg.Spool.Dir, 0o755); err != nil {
		return checkResult{Name: "spool writable", OK: false, Detail: err.Error()}
	}
	probe := filepath.Join(cfg.Spool.Dir, ".doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return checkResult{Name: "spool writable", OK: false, Detail: err.Error()}
	}
	os.Remove(probe) //nolint:errcheck
	return checkResult{Name: "spool writable", OK: true, Detail: cfg.Spool.Dir}
}

func reportDoctor(cmd *cobra.Command, results []checkResult) error {
	failed := 0
	for _, r := range results {
		if !r.OK {
			failed++
		}
	}

	switch doctorFormat {
	case "yaml":
		data, err := yaml.Marshal(results)
		if err != nil {
			return err
		}
		cmd.OutOrStdout().Write(data) //nolint:errcheck
	case "text":
		for _, r := range results {
			mark := "ok"
			if !r.OK {
				mark = "FAIL"
			}
			if r.Detail != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n", mark, r.Name, r.Detail)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", mark, r.Name)
			}
		}
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, yaml)", doctorFormat)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	return nil
}
