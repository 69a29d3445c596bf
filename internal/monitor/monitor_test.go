package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	matomo "github.com/GesetzeFinden-at/matomo-sdk"
)

func dialMonitor(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := strings.Replace(srv.URL, "http://", "ws://", 1) + "/ws"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	return conn
}

func TestMonitorStreamsHits(t *testing.T) {
	monitor := NewServer("unused", nil)
	srv := httptest.NewServer(monitor.Handler())
	defer srv.Close()

	conn := dialMonitor(t, srv)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return monitor.Subscribers() == 1 },
		2*time.Second, 10*time.Millisecond)

	observer := monitor.HitObserver()
	observer(matomo.Hit{
		Method:     http.MethodGet,
		URL:        "http://example.com/matomo.php?url=x&idsite=1&rec=1",
		StatusCode: 200,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	msgType, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageText, msgType)

	var frame HitFrame
	require.NoError(t, json.Unmarshal(data, &frame))
	assert.Equal(t, http.MethodGet, frame.Method)
	assert.Equal(t, 200, frame.StatusCode)
	assert.Contains(t, frame.URL, "idsite=1")
	assert.False(t, frame.Time.IsZero())
}

func TestMonitorStreamsBulkFragments(t *testing.T) {
	monitor := NewServer("unused", nil)
	srv := httptest.NewServer(monitor.Handler())
	defer srv.Close()

	conn := dialMonitor(t, srv)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return monitor.Subscribers() == 1 },
		2*time.Second, 10*time.Millisecond)

	monitor.HitObserver()(matomo.Hit{
		Method:     http.MethodPost,
		URL:        "http://example.com/matomo.php",
		Fragments:  []string{"?url=a&idsite=1&rec=1", "?url=b&idsite=1&rec=1"},
		StatusCode: 200,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var frame HitFrame
	require.NoError(t, json.Unmarshal(data, &frame))
	assert.Equal(t, http.MethodPost, frame.Method)
	assert.Len(t, frame.Fragments, 2)
}

func TestMonitorWithoutSubscribers(t *testing.T) {
	monitor := NewServer("unused", nil)
	// Broadcasting into the void must not block or panic.
	monitor.HitObserver()(matomo.Hit{Method: http.MethodGet, URL: "http://x/", StatusCode: 200})
	assert.Equal(t, 0, monitor.Subscribers())
}

func TestMonitorUnsubscribesOnClose(t *testing.T) {
	monitor := NewServer("unused", nil)
	srv := httptest.NewServer(monitor.Handler())
	defer srv.Close()

	conn := dialMonitor(t, srv)
	require.Eventually(t, func() bool { return monitor.Subscribers() == 1 },
		2*time.Second, 10*time.Millisecond)

	conn.Close(websocket.StatusNormalClosure, "")
	require.Eventually(t, func() bool { return monitor.Subscribers() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestMonitorIndexPage(t *testing.T) {
	monitor := NewServer("unused", nil)
	srv := httptest.NewServer(monitor.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
