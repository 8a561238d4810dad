// Package cache is the mode-namespaced local cache of analyzed channels.
// Entries are JSON blobs in the key/value store under
// "<mode>_analysis_<channelId>"; the mode is part of the identity because
// demo mode truncates the video set and the two must never conflate.
package cache

import (
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/channeldash/channel-ingestion-go/internal/models"
	"github.com/channeldash/channel-ingestion-go/internal/storage"
	"github.com/channeldash/channel-ingestion-go/pkg/logger"
)

// DefaultMaxAge is the freshness window after which an entry is flagged
// invalid. Stale entries stay readable; the validity check never deletes.
const DefaultMaxAge = 24 * time.Hour

// Auxiliary storage keys owned by the cache.
const (
	lastChannelKey  = "last_analyzed_channel"
	savedAPIKeyKey  = "saved_api_key"
	migrationMarker = "cache_migration_complete"

	// legacyPrefix is the unnamespaced key shape written before mode
	// namespacing existed; see migrateLegacyEntries.
	legacyPrefix = "analysis_"
)

// Store reads and writes cache entries. Every storage failure degrades to
// a miss or a no-op with a logged warning; the cache never propagates
// storage errors.
type Store struct {
	kv     storage.Store
	maxAge time.Duration
	now    func() time.Time
}

// New creates a Store and runs the one-time legacy key migration.
func New(kv storage.Store, maxAge time.Duration) *Store {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	s := &Store{
		kv:     kv,
		maxAge: maxAge,
		now:    time.Now,
	}
	s.migrateLegacyEntries()
	return s
}

// Key derives the storage key for a cache entry.
func Key(channelID string, mode models.Mode) string {
	return string(mode) + "_" + legacyPrefix + channelID
}

// Get returns the entry for (channelId, mode), rehydrated so that
// publishedAt and fetchedAt are timestamps, not strings.
func (s *Store) Get(channelID string, mode models.Mode) (*models.CacheEntry, bool) {
	raw, ok, err := s.kv.Get(Key(channelID, mode))
	if err != nil {
		logger.Log.Warn("cache read failed",
			zap.String("channelId", channelID),
			zap.String("mode", string(mode)),
			zap.Error(err),
		)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		logger.Log.Warn("cache entry corrupt, treating as miss",
			zap.String("channelId", channelID),
			zap.String("mode", string(mode)),
			zap.Error(err),
		)
		return nil, false
	}
	return &entry, true
}

// Put stores a fresh entry for (channelId, mode), overwriting any
// existing one.
func (s *Store) Put(channelID string, mode models.Mode, videos []models.Video) {
	entry := models.CacheEntry{
		ChannelID:  channelID,
		Mode:       mode,
		Videos:     videos,
		FetchedAt:  s.now(),
		VideoCount: len(videos),
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		logger.Log.Warn("failed to serialize cache entry",
			zap.String("channelId", channelID),
			zap.Error(err),
		)
		return
	}
	if err := s.kv.Set(Key(channelID, mode), string(raw)); err != nil {
		logger.Log.Warn("cache write failed",
			zap.String("channelId", channelID),
			zap.String("mode", string(mode)),
			zap.Error(err),
		)
	}
}

// IsValid reports whether the entry for (channelId, mode) exists and is
// younger than the freshness window.
func (s *Store) IsValid(channelID string, mode models.Mode) bool {
	entry, ok := s.Get(channelID, mode)
	if !ok {
		return false
	}
	return s.entryValid(entry)
}

func (s *Store) entryValid(entry *models.CacheEntry) bool {
	return s.now().Sub(entry.FetchedAt) < s.maxAge
}

// Metadata summarizes an entry for the UI (age, count, validity).
func (s *Store) Metadata(entry *models.CacheEntry) *models.CacheMetadata {
	return &models.CacheMetadata{
		FetchedAt:  entry.FetchedAt,
		AgeHours:   s.now().Sub(entry.FetchedAt).Hours(),
		VideoCount: entry.VideoCount,
		Valid:      s.entryValid(entry),
	}
}

// ListAll returns summaries of every entry in the given mode's namespace.
// A linear scan of the whole key space; fine at the expected cardinality
// of tens of cached channels.
func (s *Store) ListAll(mode models.Mode) []models.CacheSummary {
	keys, err := s.kv.Keys()
	if err != nil {
		logger.Log.Warn("cache key scan failed", zap.Error(err))
		return nil
	}

	prefix := string(mode) + "_" + legacyPrefix
	summaries := make([]models.CacheSummary, 0)
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		channelID := strings.TrimPrefix(key, prefix)
		entry, ok := s.Get(channelID, mode)
		if !ok {
			continue
		}
		summaries = append(summaries, models.CacheSummary{
			ChannelID:  entry.ChannelID,
			Mode:       mode,
			FetchedAt:  entry.FetchedAt,
			VideoCount: entry.VideoCount,
			Valid:      s.entryValid(entry),
		})
	}
	return summaries
}

// Delete removes the entry for (channelId, mode).
func (s *Store) Delete(channelID string, mode models.Mode) {
	if err := s.kv.Delete(Key(channelID, mode)); err != nil {
		logger.Log.Warn("cache delete failed",
			zap.String("channelId", channelID),
			zap.String("mode", string(mode)),
			zap.Error(err),
		)
	}
}

// SetLastChannel records the most recently analyzed channel.
func (s *Store) SetLastChannel(channelID string) {
	if err := s.kv.Set(lastChannelKey, channelID); err != nil {
		logger.Log.Warn("failed to record last analyzed channel", zap.Error(err))
	}
}

// LastChannel returns the most recently analyzed channel, if any.
func (s *Store) LastChannel() (string, bool) {
	v, ok, err := s.kv.Get(lastChannelKey)
	if err != nil {
		logger.Log.Warn("failed to read last analyzed channel", zap.Error(err))
		return "", false
	}
	return v, ok
}

// SaveAPIKey persists a user-supplied API key.
func (s *Store) SaveAPIKey(key string) {
	if err := s.kv.Set(savedAPIKeyKey, key); err != nil {
		logger.Log.Warn("failed to save API key", zap.Error(err))
	}
}

// SavedAPIKey returns the persisted user-supplied API key, if any.
func (s *Store) SavedAPIKey() (string, bool) {
	v, ok, err := s.kv.Get(savedAPIKeyKey)
	if err != nil {
		logger.Log.Warn("failed to read saved API key", zap.Error(err))
		return "", false
	}
	return v, ok
}

// migrateLegacyEntries copies pre-namespacing "analysis_<id>" entries into
// the demo namespace, exactly once. A marker key prevents rescans.
func (s *Store) migrateLegacyEntries() {
	if _, done, err := s.kv.Get(migrationMarker); err != nil || done {
		return
	}

	keys, err := s.kv.Keys()
	if err != nil {
		logger.Log.Warn("cache migration scan failed", zap.Error(err))
		return
	}

	migrated := 0
	for _, key := range keys {
		if !strings.HasPrefix(key, legacyPrefix) {
			continue
		}
		raw, ok, err := s.kv.Get(key)
		if err != nil || !ok {
			continue
		}
		channelID := strings.TrimPrefix(key, legacyPrefix)
		newKey := Key(channelID, models.ModeDemo)
		if _, exists, _ := s.kv.Get(newKey); exists {
			continue
		}
		if err := s.kv.Set(newKey, raw); err != nil {
			logger.Log.Warn("cache migration write failed",
				zap.String("key", key),
				zap.Error(err),
			)
			continue
		}
		migrated++
	}

	if err := s.kv.Set(migrationMarker, s.now().UTC().Format(time.RFC3339)); err != nil {
		logger.Log.Warn("failed to record cache migration marker", zap.Error(err))
		return
	}
	if migrated > 0 {
		logger.Log.Info("migrated legacy cache entries to demo namespace",
			zap.Int("count", migrated),
		)
	}
}
