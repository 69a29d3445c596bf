package spool

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"

	sdkerrors "github.com/GesetzeFinden-at/matomo-sdk/internal/errors"
	"github.com/GesetzeFinden-at/matomo-sdk/internal/logging"
)

// Watcher ships the spool whenever new hit files arrive, debouncing rapid
// bursts into one shipping pass.
type Watcher struct {
	shipper  *Shipper
	debounce time.Duration
	interval time.Duration
	logger   logging.Logger
}

// NewWatcher creates a watcher over the shipper's spool. debounce groups
// bursts of file creations; interval is a periodic fallback pass that
// retries batches left behind by earlier delivery failures (0 disables it).
func NewWatcher(shipper *Shipper, debounce, interval time.Duration, logger logging.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Watcher{
		shipper:  shipper,
		debounce: debounce,
		interval: interval,
		logger:   logger.WithComponent("spool-watcher"),
	}
}

// Run watches until ctx is done. It ships once at startup so hits queued
// while no watcher was running are not stuck waiting for the next event.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return sdkerrors.NewIOError("watch_init", "cannot create filesystem watcher").WithCause(err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.shipper.spool.Dir()); err != nil {
		return sdkerrors.NewIOError("watch_add", "cannot watch spool directory %s", w.shipper.spool.Dir()).WithCause(err)
	}

	w.ship(ctx)

	var timer *time.Timer
	var timerC <-chan time.Time

	var tickerC <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tickerC = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			// Only completed files matter: Add renames .tmp into place,
			// which arrives as a Create (or Rename) of the final name.
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.ship(ctx)

		case <-tickerC:
			w.ship(ctx)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn(ctx, err, "filesystem watcher error")
		}
	}
}

func (w *Watcher) ship(ctx context.Context) {
	shipped, err := w.shipper.Ship(ctx)
	if err != nil {
		w.logger.Warn(ctx, err, "shipping pass failed", "shipped", shipped)
		return
	}
	if shipped > 0 {
		w.logger.Info(ctx, "shipping pass complete", "shipped", shipped)
	}
}
