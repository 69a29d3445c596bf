package spool

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	matomo "github.com/GesetzeFinden-at/matomo-sdk"
	sdkerrors "github.com/GesetzeFinden-at/matomo-sdk/internal/errors"
)

// fakeTracker records bulk submissions and can be told to fail.
type fakeTracker struct {
	mu      sync.Mutex
	batches [][]matomo.Params
	fail    bool
}

func (f *fakeTracker) TrackBulk(ctx context.Context, batch []matomo.Params) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, sdkerrors.NewDeliveryError(500, "tracking request rejected")
	}
	copied := make([]matomo.Params, len(batch))
	copy(copied, batch)
	f.batches = append(f.batches, copied)
	return nil, nil
}

func (f *fakeTracker) recorded() [][]matomo.Params {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]matomo.Params, len(f.batches))
	copy(out, f.batches)
	return out
}

func (f *fakeTracker) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func TestSpoolAddAndPending(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	names := make([]string, 0, 3)
	for _, u := range []string{"http://a/", "http://b/", "http://c/"} {
		name, err := s.Add(matomo.Params{URL: u})
		require.NoError(t, err)
		names = append(names, name)
	}

	pending, err := s.Pending()
	require.NoError(t, err)
	assert.Equal(t, names, pending, "pending order follows submission order")

	p, err := s.Load(pending[1])
	require.NoError(t, err)
	assert.Equal(t, "http://b/", p.URL)
}

func TestSpoolIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "partial.json.tmp"), []byte("{"), 0o644))

	pending, err := s.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSpoolRequiresDir(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
	assert.True(t, sdkerrors.IsKind(err, sdkerrors.KindValidation))
}

func TestShipperDrainsInOrder(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	for _, u := range []string{"http://a/", "http://b/", "http://c/"} {
		_, err := s.Add(matomo.Params{URL: u})
		require.NoError(t, err)
	}

	tracker := &fakeTracker{}
	shipper := NewShipper(s, tracker, 2, nil)

	shipped, err := shipper.Ship(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, shipped)

	batches := tracker.recorded()
	require.Len(t, batches, 2, "batch size 2 splits 3 hits into 2 posts")
	assert.Equal(t, "http://a/", batches[0][0].URL)
	assert.Equal(t, "http://b/", batches[0][1].URL)
	assert.Equal(t, "http://c/", batches[1][0].URL)

	pending, err := s.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending, "shipped files are removed")
}

func TestShipperKeepsFilesOnFailure(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := s.Add(matomo.Params{URL: "http://example.com/"})
		require.NoError(t, err)
	}

	tracker := &fakeTracker{fail: true}
	shipper := NewShipper(s, tracker, 50, nil)

	shipped, err := shipper.Ship(context.Background())
	require.Error(t, err)
	assert.True(t, sdkerrors.IsKind(err, sdkerrors.KindDelivery))
	assert.Equal(t, 0, shipped)

	pending, err := s.Pending()
	require.NoError(t, err)
	assert.Len(t, pending, 3, "failed batch stays queued")

	// A later pass delivers everything.
	tracker.setFail(false)
	shipped, err = shipper.Ship(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, shipped)
}

func TestShipperSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	_, err = s.Add(matomo.Params{URL: "http://ok/"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hit-zzz.json"), []byte("{broken"), 0o644))

	tracker := &fakeTracker{}
	shipper := NewShipper(s, tracker, 50, nil)

	shipped, err := shipper.Ship(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, shipped)

	pending, err := s.Pending()
	require.NoError(t, err)
	assert.Equal(t, []string{"hit-zzz.json"}, pending, "corrupt file stays for inspection")
}

func TestShipperEmptySpool(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	tracker := &fakeTracker{}
	shipped, err := NewShipper(s, tracker, 50, nil).Ship(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, shipped)
	assert.Empty(t, tracker.recorded(), "no POST for an empty spool")
}

func TestDecodeHitList(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "hits.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"url":"http://a/"},{"e_c":"Buy","e_a":"click"}]`), 0o644))

	hits, err := DecodeHitList(jsonPath)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "http://a/", hits[0].URL)
	assert.Equal(t, "Buy", hits[1].EventCategory)

	yamlPath := filepath.Join(dir, "hits.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("- url: http://a/\n  action_name: Home\n"), 0o644))

	hits, err = DecodeHitList(yamlPath)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Home", hits[0].ActionName)

	_, err = DecodeHitList(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.True(t, sdkerrors.IsKind(err, sdkerrors.KindIO))
}

func TestWatcherShipsOnArrival(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	tracker := &fakeTracker{}
	shipper := NewShipper(s, tracker, 50, nil)
	watcher := NewWatcher(shipper, 50*time.Millisecond, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	// Give the watcher time to register before the file shows up.
	time.Sleep(100 * time.Millisecond)

	_, err = s.Add(matomo.Params{URL: "http://arrived/"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		for _, batch := range tracker.recorded() {
			for _, p := range batch {
				if p.URL == "http://arrived/" {
					return true
				}
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
