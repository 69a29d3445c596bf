package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	sdkerrors "github.com/GesetzeFinden-at/matomo-sdk/internal/errors"
)

func TestValidateEndpoint(t *testing.T) {
	tests := []struct {
		name          string
		url           string
		requireSuffix bool
		expectErr     bool
	}{
		{
			name:          "valid matomo endpoint",
			url:           "http://example.com/matomo.php",
			requireSuffix: true,
			expectErr:     false,
		},
		{
			name:          "valid legacy piwik endpoint",
			url:           "https://stats.example.com/piwik.php",
			requireSuffix: true,
			expectErr:     false,
		},
		{
			name:          "valid endpoint with port",
			url:           "http://127.0.0.1:8080/matomo.php",
			requireSuffix: true,
			expectErr:     false,
		},
		{
			name:          "empty endpoint",
			url:           "",
			requireSuffix: true,
			expectErr:     true,
		},
		{
			name:          "whitespace endpoint",
			url:           "   ",
			requireSuffix: false,
			expectErr:     true,
		},
		{
			name:          "missing suffix",
			url:           "http://example.com/track",
			requireSuffix: true,
			expectErr:     true,
		},
		{
			name:          "missing suffix allowed when bypassed",
			url:           "http://example.com/track",
			requireSuffix: false,
			expectErr:     false,
		},
		{
			name:          "non-http scheme",
			url:           "ftp://example.com/matomo.php",
			requireSuffix: true,
			expectErr:     true,
		},
		{
			name:          "javascript scheme rejected even when bypassed",
			url:           "javascript:alert(1)",
			requireSuffix: false,
			expectErr:     true,
		},
		{
			name:          "relative URL without host",
			url:           "/matomo.php",
			requireSuffix: true,
			expectErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEndpoint(tt.url, tt.requireSuffix)
			if tt.expectErr {
				assert.Error(t, err)
				assert.True(t, sdkerrors.IsKind(err, sdkerrors.KindValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHasTrackerSuffix(t *testing.T) {
	assert.True(t, HasTrackerSuffix("http://example.com/matomo.php"))
	assert.True(t, HasTrackerSuffix("http://example.com/piwik.php"))
	assert.False(t, HasTrackerSuffix("http://example.com/matomo.php?x=1"))
	assert.False(t, HasTrackerSuffix("http://example.com/collect"))
}
