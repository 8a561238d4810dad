package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/channeldash/channel-ingestion-go/internal/metrics"
	"github.com/channeldash/channel-ingestion-go/internal/models"
	"github.com/channeldash/channel-ingestion-go/pkg/logger"
)

// ProgressFunc receives human-readable progress messages during an
// analysis. Advisory only: callers must never depend on them for
// correctness. A nil ProgressFunc is valid.
type ProgressFunc func(message string)

func (f ProgressFunc) report(format string, args ...any) {
	if f != nil {
		f(fmt.Sprintf(format, args...))
	}
}

// IngestOptions carries the pagination and batching limits.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type IngestOptions struct {
	PageSize     int64
	MaxPagesLive int
	MaxPagesDemo int
	DemoVideoCap int
	BatchSize    int
}

// DefaultIngestOptions mirror the upstream API's page and batch ceilings.
// MaxPagesLive is a circuit breaker against runaway pagination, not a
// product limit.
func DefaultIngestOptions() IngestOptions {
	return IngestOptions{
		PageSize:     50,
		MaxPagesLive: 100,
		MaxPagesDemo: 2,
		DemoVideoCap: 100,
		BatchSize:    50,
	}
}

// VideoIngestor paginates a channel's uploads playlist and enriches the
// collected video references with batched detail lookups.
type VideoIngestor struct {
	api   VideoAPI
	opts  IngestOptions
	pacer *rate.Limiter
}

// NewVideoIngestor creates an ingestor. pacer throttles enrichment
// batches; pass rate.NewLimiter(rate.Inf, 1) to disable pacing in tests.
func NewVideoIngestor(api VideoAPI, opts IngestOptions, pacer *rate.Limiter) *VideoIngestor {
	if opts.PageSize <= 0 {
		opts = DefaultIngestOptions()
	}
	return &VideoIngestor{
		api:   api,
		opts:  opts,
		pacer: pacer,
	}
}

// FetchAllVideoRefs walks the uploads playlist page by page, sequentially,
// until the API stops returning a next-page token or a mode-dependent
// ceiling is hit. In demo mode the final batch is truncated so the result
// is exactly min(available, cap), never rounded to a page boundary.
func (i *VideoIngestor) FetchAllVideoRefs(ctx context.Context, uploadsPlaylistID string, mode models.Mode, onProgress ProgressFunc) ([]models.VideoRef, error) {
	maxPages := i.opts.MaxPagesLive
	if mode == models.ModeDemo {
		maxPages = i.opts.MaxPagesDemo
	}

	var refs []models.VideoRef
	pageToken := ""

	for page := 0; page < maxPages; page++ {
		items, nextToken, err := i.api.PlaylistPage(ctx, uploadsPlaylistID, pageToken, i.opts.PageSize)
		if err != nil {
			return nil, err
		}
		metrics.PagesFetched.Inc()
		refs = append(refs, items...)

		if mode == models.ModeDemo && len(refs) >= i.opts.DemoVideoCap {
			refs = refs[:i.opts.DemoVideoCap]
			onProgress.report("Found %d videos (demo mode caps at %d to control costs)", len(refs), i.opts.DemoVideoCap)
			break
		}

		if mode == models.ModeDemo {
			onProgress.report("Found %d videos (demo mode caps at %d to control costs)...", len(refs), i.opts.DemoVideoCap)
		} else {
			onProgress.report("Found %d videos so far...", len(refs))
		}

		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}

	logger.Log.Info("playlist pagination complete",
		zap.String("uploadsPlaylistId", uploadsPlaylistID),
		zap.String("mode", string(mode)),
		zap.Int("videoCount", len(refs)),
	)

	return refs, nil
}

// EnrichVideos resolves full details for the given references in batches,
// sequentially, with a small pacing delay between batches. A failed batch
// is logged and skipped: partial data is more useful than total failure,
// so no error ever escapes.
func (i *VideoIngestor) EnrichVideos(ctx context.Context, refs []models.VideoRef, onProgress ProgressFunc) []models.Video {
	videos := make([]models.Video, 0, len(refs))

	for batchStart := 0; batchStart < len(refs); batchStart += i.opts.BatchSize {
		batchEnd := min(batchStart+i.opts.BatchSize, len(refs))

		if batchStart > 0 && i.pacer != nil {
			if err := i.pacer.Wait(ctx); err != nil {
				logger.Log.Warn("enrichment pacing interrupted", zap.Error(err))
				break
			}
		}

		ids := make([]string, 0, batchEnd-batchStart)
		for _, ref := range refs[batchStart:batchEnd] {
			ids = append(ids, ref.VideoID)
		}

		batch, err := i.api.VideoDetails(ctx, ids)
		if err != nil {
			metrics.EnrichmentBatchesSkipped.Inc()
			logger.Log.Warn("enrichment batch failed, skipping",
				zap.Int("batchStart", batchStart),
				zap.Int("batchSize", len(ids)),
				zap.Error(err),
			)
			continue
		}

		videos = append(videos, batch...)
		onProgress.report("Loaded details for %d of %d videos...", len(videos), len(refs))
	}

	return videos
}
