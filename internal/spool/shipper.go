package spool

import (
	"context"
	"net/http"

	"github.com/samber/lo"

	matomo "github.com/GesetzeFinden-at/matomo-sdk"
	"github.com/GesetzeFinden-at/matomo-sdk/internal/logging"
)

// BulkTracker is the slice of the SDK client the shipper needs.
type BulkTracker interface {
	TrackBulk(ctx context.Context, batch []matomo.Params) (*http.Response, error)
}

// Shipper drains a spool into bulk submissions.
type Shipper struct {
	spool     *Spool
	tracker   BulkTracker
	batchSize int
	logger    logging.Logger
}

// NewShipper creates a shipper. batchSize caps the number of hits per POST.
func NewShipper(s *Spool, tracker BulkTracker, batchSize int, logger logging.Logger) *Shipper {
	if batchSize <= 0 {
		batchSize = 50
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Shipper{
		spool:     s,
		tracker:   tracker,
		batchSize: batchSize,
		logger:    logger.WithComponent("spool"),
	}
}

// Ship sends every queued hit in submission order and returns the number
// of hits delivered. Files are removed only after their batch was
// accepted; on the first failed batch Ship stops and returns the delivery
// error, leaving that batch and everything after it queued. Files that no
// longer decode are skipped and left in place for inspection.
func (sh *Shipper) Ship(ctx context.Context) (int, error) {
	names, err := sh.spool.Pending()
	if err != nil {
		return 0, err
	}
	if len(names) == 0 {
		return 0, nil
	}

	var entries []Entry
	for _, name := range names {
		p, err := sh.spool.Load(name)
		if err != nil {
			sh.logger.Warn(ctx, err, "skipping undecodable spool file", "file", name)
			continue
		}
		entries = append(entries, Entry{File: name, Params: p})
	}

	shipped := 0
	for _, batch := range lo.Chunk(entries, sh.batchSize) {
		params := lo.Map(batch, func(e Entry, _ int) matomo.Params { return e.Params })

		if _, err := sh.tracker.TrackBulk(ctx, params); err != nil {
			sh.logger.Warn(ctx, err, "bulk ship failed, keeping batch queued",
				"batch_size", len(batch), "shipped", shipped)
			return shipped, err
		}

		for _, e := range batch {
			if err := sh.spool.Remove(e.File); err != nil {
				// The hit was delivered; a leftover file means a duplicate
				// on the next pass, which the caller should know about.
				return shipped, err
			}
		}
		shipped += len(batch)
		sh.logger.Info(ctx, "bulk batch shipped", "batch_size", len(batch), "shipped", shipped)
	}

	return shipped, nil
}
