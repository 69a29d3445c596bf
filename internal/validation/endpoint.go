// Package validation provides input validation for tracker endpoints.
package validation

import (
	"fmt"
	"net/url"
	"strings"

	sdkerrors "github.com/GesetzeFinden-at/matomo-sdk/internal/errors"
)

// TrackerSuffixes are the recognized tracking-script filenames a tracker
// endpoint is expected to end with. Matomo installations expose the HTTP
// tracking API under either name.
var TrackerSuffixes = []string{"matomo.php", "piwik.php"}

// ValidateEndpoint validates a tracker endpoint URL. The suffix check is
// skipped when requireSuffix is false (explicit opt-out at construction).
func ValidateEndpoint(rawURL string, requireSuffix bool) error {
	if strings.TrimSpace(rawURL) == "" {
		return sdkerrors.NewValidationError("missing_endpoint", "tracker endpoint URL is required")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return sdkerrors.NewValidationError("invalid_endpoint", "tracker endpoint is not a valid URL: %v", err)
	}

	// Only http/https make sense for the tracking API.
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return sdkerrors.NewValidationError("invalid_endpoint_scheme",
			"tracker endpoint scheme must be http or https, got %q", parsed.Scheme)
	}

	if parsed.Host == "" {
		return sdkerrors.NewValidationError("invalid_endpoint", "tracker endpoint must have a hostname")
	}

	if requireSuffix && !HasTrackerSuffix(rawURL) {
		return sdkerrors.NewValidationError("invalid_endpoint_suffix",
			"tracker endpoint must end with %s (use WithoutEndpointValidation to override)",
			suffixList())
	}

	return nil
}

// HasTrackerSuffix reports whether the endpoint ends in a recognized
// tracking-script filename.
func HasTrackerSuffix(rawURL string) bool {
	for _, suffix := range TrackerSuffixes {
		if strings.HasSuffix(rawURL, suffix) {
			return true
		}
	}
	return false
}

func suffixList() string {
	return fmt.Sprintf("%q or %q", TrackerSuffixes[0], TrackerSuffixes[1])
}
