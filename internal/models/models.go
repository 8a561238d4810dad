// Package models contains the data models and DTOs for the channel ingestion service.
package models

import (
	"fmt"
	"time"
)

// Mode selects the operating mode of an analysis. Demo mode runs against a
// shared server key with daily usage ceilings and a truncated video set;
// live mode uses the caller's own key and fetches the full catalog.
type Mode string

// Operating modes.
const (
	ModeDemo Mode = "demo"
	ModeLive Mode = "live"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDemo, ModeLive:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (expected %q or %q)", s, ModeDemo, ModeLive)
}

// Video is the canonical, normalized video entity. Immutable once created:
// counts default to zero when the upstream record omits them, and
// PublishedAt is always a parsed point in time, never a raw string.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Video struct {
	VideoID         string    `json:"videoId"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	FullDescription string    `json:"fullDescription"`
	PublishedAt     time.Time `json:"publishedAt"`
	ViewCount       int64     `json:"viewCount"`
	LikeCount       int64     `json:"likeCount"`
	CommentCount    int64     `json:"commentCount"`
	DurationSeconds int64     `json:"durationSeconds"`
	Duration        string    `json:"duration"`
	URL             string    `json:"url"`
	ThumbnailURL    string    `json:"thumbnailUrl"`
	Tags            []string  `json:"tags"`
}

// VideoRef identifies a video discovered during playlist pagination,
// before detail enrichment.
type VideoRef struct {
	VideoID string `json:"videoId"`
}

// ChannelRef is a resolved channel: the stable external channel ID used for
// cache identity, plus the implicit uploads playlist through which the
// channel's public videos are enumerated.
type ChannelRef struct {
	ChannelID         string `json:"channelId"`
	UploadsPlaylistID string `json:"uploadsPlaylistId"`
}

// CacheEntry is the durable unit of the local cache, namespaced by
// (mode, channelId) so demo and live analyses of the same channel never
// conflate.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type CacheEntry struct {
	ChannelID  string    `json:"channelId"`
	Mode       Mode      `json:"mode"`
	Videos     []Video   `json:"videos"`
	FetchedAt  time.Time `json:"fetchedAt"`
	VideoCount int       `json:"videoCount"`
}

// CacheSummary is a CacheEntry without its video payload, for listings.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type CacheSummary struct {
	ChannelID  string    `json:"channelId"`
	Mode       Mode      `json:"mode"`
	FetchedAt  time.Time `json:"fetchedAt"`
	VideoCount int       `json:"videoCount"`
	Valid      bool      `json:"valid"`
}

// CacheMetadata describes the cache entry an analysis was served from, so
// the UI can present staleness.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type CacheMetadata struct {
	FetchedAt  time.Time `json:"fetchedAt"`
	AgeHours   float64   `json:"ageHours"`
	VideoCount int       `json:"videoCount"`
	Valid      bool      `json:"valid"`
}

// RateLimitUsage is the persisted demo-mode usage ledger. Date keys are
// UTC days; entries older than seven days are pruned on every write.
type RateLimitUsage struct {
	PerFingerprint map[string]map[string]int `json:"perFingerprint"`
	Global         map[string]int            `json:"global"`
}

// AnalyzeRequestDTO is the analyze endpoint request body.
type AnalyzeRequestDTO struct {
	Channel      string           `json:"channel" binding:"required,max=200"`
	Mode         string           `json:"mode" binding:"required"`
	ForceRefresh bool             `json:"forceRefresh"`
	Client       ClientSignalsDTO `json:"client"`
}

// ClientSignalsDTO carries the browser environment signals used for the
// demo-mode fingerprint.
type ClientSignalsDTO struct {
	ScreenWidth  int    `json:"screenWidth"`
	ScreenHeight int    `json:"screenHeight"`
	Timezone     string `json:"timezone"`
}

// AnalyzeResponseDTO is the analyze endpoint response body.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type AnalyzeResponseDTO struct {
	ChannelID  string         `json:"channelId"`
	Mode       Mode           `json:"mode"`
	Videos     []Video        `json:"videos"`
	VideoCount int            `json:"videoCount"`
	FromCache  bool           `json:"fromCache"`
	Cache      *CacheMetadata `json:"cache,omitempty"`
}

// SaveAPIKeyDTO is the request body for storing a user-supplied API key.
type SaveAPIKeyDTO struct {
	APIKey string `json:"apiKey" binding:"required"`
}

// ErrorResponse represents an error response.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}
