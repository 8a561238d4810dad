package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/channeldash/channel-ingestion-go/internal/apperrors"
	"github.com/channeldash/channel-ingestion-go/internal/metrics"
	"github.com/channeldash/channel-ingestion-go/internal/models"
	"github.com/channeldash/channel-ingestion-go/internal/service/cache"
	"github.com/channeldash/channel-ingestion-go/internal/service/ratelimit"
	"github.com/channeldash/channel-ingestion-go/pkg/logger"
)

// AnalyzeRequest is one analysis invocation.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type AnalyzeRequest struct {
	Input        string
	Mode         models.Mode
	ForceRefresh bool
	Fingerprint  string
	OnProgress   ProgressFunc
}

// AnalysisResult is the stable video collection an analysis produces,
// with cache provenance when served from the local cache.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type AnalysisResult struct {
	Channel   models.ChannelRef
	Mode      models.Mode
	Videos    []models.Video
	FromCache bool
	Cache     *models.CacheMetadata
}

// AnalysisService orchestrates one analysis request: rate-limit check,
// resolution, cache check, then on a miss the paginated fetch, batched
// enrichment and unconditional persist. It owns the per-analysis session
// state; collaborators receive everything they need as arguments.
type AnalysisService struct {
	resolver *ChannelResolver
	ingestor *VideoIngestor
	cache    *cache.Store
	limiter  *ratelimit.Limiter
}

// NewAnalysisService wires the pipeline.
func NewAnalysisService(resolver *ChannelResolver, ingestor *VideoIngestor, cacheStore *cache.Store, limiter *ratelimit.Limiter) *AnalysisService {
	return &AnalysisService{
		resolver: resolver,
		ingestor: ingestor,
		cache:    cacheStore,
		limiter:  limiter,
	}
}

// analysisSession is the explicit per-request context passed through the
// pipeline, replacing any notion of shared mutable state between requests.
type analysisSession struct {
	id        string
	mode      models.Mode
	startedAt time.Time
}

// Analyze runs the full pipeline for one channel reference. There are no
// automatic retries on any failure path; a retry is always a new call.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalysisResult, error) {
	session := analysisSession{
		id:        uuid.NewString(),
		mode:      req.Mode,
		startedAt: time.Now(),
	}

	log := logger.Log.With(
		zap.String("analysisId", session.id),
		zap.String("mode", string(session.mode)),
	)
	log.Info("analysis started", zap.String("input", req.Input))

	// The demo ceiling is checked before any network call.
	req.OnProgress.report("Checking usage limits...")
	decision := s.limiter.CheckLimit(req.Mode, req.Fingerprint)
	if !decision.Allowed {
		metrics.RateLimitRejections.WithLabelValues(string(decision.Reason)).Inc()
		log.Info("analysis rejected by usage ceiling", zap.String("reason", string(decision.Reason)))
		return nil, &apperrors.RateLimitError{Reason: string(decision.Reason)}
	}

	req.OnProgress.report("Resolving channel...")
	ref, err := s.resolver.Resolve(ctx, req.Input)
	if err != nil {
		log.Warn("channel resolution failed", zap.Error(err))
		return nil, err
	}

	if !req.ForceRefresh {
		if entry, ok := s.cache.Get(ref.ChannelID, req.Mode); ok {
			metrics.CacheHits.WithLabelValues(string(req.Mode)).Inc()
			meta := s.cache.Metadata(entry)
			req.OnProgress.report("Loaded %d videos from cache", entry.VideoCount)
			log.Info("analysis served from cache",
				zap.String("channelId", ref.ChannelID),
				zap.Int("videoCount", entry.VideoCount),
				zap.Bool("cacheValid", meta.Valid),
			)
			return &AnalysisResult{
				Channel:   ref,
				Mode:      req.Mode,
				Videos:    entry.Videos,
				FromCache: true,
				Cache:     meta,
			}, nil
		}
	}
	metrics.CacheMisses.WithLabelValues(string(req.Mode)).Inc()

	refs, err := s.ingestor.FetchAllVideoRefs(ctx, ref.UploadsPlaylistID, req.Mode, req.OnProgress)
	if err != nil {
		log.Warn("playlist pagination failed", zap.Error(err))
		return nil, err
	}

	videos := s.ingestor.EnrichVideos(ctx, refs, req.OnProgress)
	if len(videos) < len(refs) {
		log.Warn("ingestion completed with partial results",
			zap.Int("requested", len(refs)),
			zap.Int("enriched", len(videos)),
		)
	}

	// Persist even partial results; a retry is a manual user action.
	s.cache.Put(ref.ChannelID, req.Mode, videos)
	s.cache.SetLastChannel(ref.ChannelID)
	s.limiter.RecordUsage(req.Mode, req.Fingerprint)

	req.OnProgress.report("Analysis complete: %d videos", len(videos))
	log.Info("analysis complete",
		zap.String("channelId", ref.ChannelID),
		zap.Int("videoCount", len(videos)),
		zap.Duration("elapsed", time.Since(session.startedAt)),
	)

	return &AnalysisResult{
		Channel: ref,
		Mode:    req.Mode,
		Videos:  videos,
	}, nil
}

// CachedChannels lists cache summaries for the given mode.
func (s *AnalysisService) CachedChannels(mode models.Mode) []models.CacheSummary {
	return s.cache.ListAll(mode)
}

// DeleteCached evicts one channel's entry in the given mode.
func (s *AnalysisService) DeleteCached(channelID string, mode models.Mode) {
	s.cache.Delete(channelID, mode)
}
