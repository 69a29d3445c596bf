package matomo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsEncoding(t *testing.T) {
	tests := []struct {
		name     string
		params   Params
		expected string
	}{
		{
			name:     "zero value encodes to nothing",
			params:   Params{},
			expected: "",
		},
		{
			name:     "url is percent encoded",
			params:   Params{URL: "http://mywebsite.com/?a=1&b=2"},
			expected: "url=http%3A%2F%2Fmywebsite.com%2F%3Fa%3D1%26b%3D2",
		},
		{
			name: "url comes first",
			params: Params{
				URL:        "http://mywebsite.com/",
				ActionName: "Home / Landing",
			},
			expected: "url=http%3A%2F%2Fmywebsite.com%2F&action_name=Home+%2F+Landing",
		},
		{
			name: "event fields",
			params: Params{
				EventCategory: "Videos",
				EventAction:   "play",
				EventName:     "intro",
				EventValue:    floatPtr(2.5),
			},
			expected: "e_c=Videos&e_a=play&e_n=intro&e_v=2.5",
		},
		{
			name:     "event value zero is still sent",
			params:   Params{EventCategory: "Videos", EventAction: "play", EventValue: floatPtr(0)},
			expected: "e_c=Videos&e_a=play&e_v=0",
		},
		{
			name:     "goal id zero is still sent",
			params:   Params{GoalID: intPtr(0), Revenue: floatPtr(49.9)},
			expected: "idgoal=0&revenue=49.9",
		},
		{
			name:     "boolean flags encode as 1",
			params:   Params{CustomAction: true, NewVisit: true, Bots: true},
			expected: "new_visit=1&ca=1&bots=1",
		},
		{
			name:     "send_image false encodes as 0",
			params:   Params{SendImage: boolPtr(false)},
			expected: "send_image=0",
		},
		{
			name:     "media analytics fields",
			params:   Params{MediaID: "abc123", MediaTitle: "Intro", MediaType: "video", MediaTimePlayed: intPtr(0)},
			expected: "ma_id=abc123&ma_ti=Intro&ma_mt=video&ma_st=0",
		},
		{
			name:     "dimensions are index ordered",
			params:   Params{Dimensions: map[int]string{3: "c", 1: "a", 2: "b"}},
			expected: "dimension1=a&dimension2=b&dimension3=c",
		},
		{
			name:     "extra keys pass through sorted",
			params:   Params{Extra: map[string]string{"zzz": "1", "aaa": "2"}},
			expected: "aaa=2&zzz=1",
		},
		{
			name:     "reserved extra keys are dropped",
			params:   Params{Extra: map[string]string{"idsite": "999", "rec": "0", "keep": "1"}},
			expected: "keep=1",
		},
		{
			name:     "geo overrides",
			params:   Params{Country: "at", City: "Vienna", Latitude: floatPtr(48.2), Longitude: floatPtr(16.37)},
			expected: "country=at&city=Vienna&lat=48.2&long=16.37",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, encodePairs(tt.params.pairs()))
		})
	}
}

func TestBasePairsInjection(t *testing.T) {
	client, err := New(7, "http://example.com/matomo.php")
	require.NoError(t, err)

	encoded := encodePairs(client.basePairs(Params{URL: "http://mywebsite.com/"}))
	assert.Equal(t, "url=http%3A%2F%2Fmywebsite.com%2F&idsite=7&rec=1", encoded)
}

func TestPairsDoesNotMutate(t *testing.T) {
	p := Params{
		URL:        "http://mywebsite.com/",
		Extra:      map[string]string{"x": "1"},
		Dimensions: map[int]string{1: "a"},
	}
	_ = p.pairs()
	_ = p.pairs()

	assert.Equal(t, map[string]string{"x": "1"}, p.Extra)
	assert.Equal(t, map[int]string{1: "a"}, p.Dimensions)
}

func intPtr(i int) *int    { return &i }
func boolPtr(b bool) *bool { return &b }
