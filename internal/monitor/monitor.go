// Package monitor provides a local development server that streams every
// hit a tracker client dispatches to connected websocket subscribers, so
// tracking integration can be inspected live without access to the Matomo
// backend.
package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	matomo "github.com/GesetzeFinden-at/matomo-sdk"
	"github.com/GesetzeFinden-at/matomo-sdk/internal/logging"
)

// HitFrame is one streamed hit as delivered to websocket subscribers.
type HitFrame struct {
	Time       time.Time `json:"time"`
	Method     string    `json:"method"`
	URL        string    `json:"url"`
	Fragments  []string  `json:"fragments,omitempty"`
	StatusCode int       `json:"status_code"`
}

// Server broadcasts hit frames to websocket clients.
type Server struct {
	addr   string
	logger logging.Logger

	mu      sync.Mutex
	clients map[*client]struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

type client struct {
	send chan []byte
}

// clientBuffer bounds the per-subscriber backlog; a subscriber that falls
// further behind starts losing frames rather than blocking the tracker.
const clientBuffer = 64

// NewServer creates a monitor server that will listen on addr.
func NewServer(addr string, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:    addr,
		logger:  logger.WithComponent("monitor"),
		clients: make(map[*client]struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// HitObserver returns the observer to register with matomo.Client.OnHit.
func (s *Server) HitObserver() func(matomo.Hit) {
	return func(hit matomo.Hit) {
		frame := HitFrame{
			Time:       time.Now().UTC(),
			Method:     hit.Method,
			URL:        hit.URL,
			Fragments:  hit.Fragments,
			StatusCode: hit.StatusCode,
		}
		data, err := json.Marshal(frame)
		if err != nil {
			return
		}
		s.broadcast(data)
	}
}

func (s *Server) broadcast(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			// Slow subscriber; drop the frame for this client.
		}
	}
}

// Subscribers returns the number of connected websocket clients.
func (s *Server) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Handler returns the HTTP handler serving the websocket stream at /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("matomo hit monitor: connect a websocket client to /ws\n")) //nolint:errcheck
	})
	return mux
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}

	c := &client{send: make(chan []byte, clientBuffer)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Debug(r.Context(), "subscriber connected", "subscribers", s.Subscribers())

	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	// The read loop only exists to notice the client going away.
	readCtx, readCancel := context.WithCancel(s.ctx)
	defer readCancel()
	go func() {
		defer readCancel()
		for {
			if _, _, err := conn.Read(readCtx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-readCtx.Done():
			return
		case data := <-c.send:
			writeCtx, writeCancel := context.WithTimeout(readCtx, 5*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, data)
			writeCancel()
			if err != nil {
				return
			}
		}
	}
}

// Run serves the monitor until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		s.cancel()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
		return ctx.Err()
	case err := <-errCh:
		s.cancel()
		return err
	}
}
