// Package youtube wraps the YouTube Data API v3 endpoints the ingestion
// pipeline consumes: channel lookup by handle, channel search, uploads
// playlist resolution, playlist pagination and batched video details.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/channeldash/channel-ingestion-go/internal/apperrors"
	"github.com/channeldash/channel-ingestion-go/internal/metrics"
	"github.com/channeldash/channel-ingestion-go/internal/models"
)

// MaxBatchSize is the API ceiling on multi-id video detail lookups.
const MaxBatchSize = 50

// videoParts are the parts requested for every video detail lookup.
var videoParts = []string{"snippet", "statistics", "contentDetails"}

// Client wraps the YouTube Data API v3 client.
type Client struct {
	service *youtube.Service
}

// NewClient creates a new YouTube API client.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, &apperrors.APIKeyError{Reason: "API key is required"}
	}

	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Client{service: service}, nil
}

// ChannelIDForHandle resolves a channel handle (without the leading @) to a
// channel ID. Returns "" when the handle is not indexed; that is not an
// error, the caller falls back to search.
func (c *Client) ChannelIDForHandle(ctx context.Context, handle string) (string, error) {
	metrics.APICalls.WithLabelValues("channels.forHandle").Inc()

	response, err := c.service.Channels.List([]string{"id"}).
		ForHandle(handle).
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", classifyAPIError("channels.forHandle", err)
	}

	if len(response.Items) == 0 {
		return "", nil
	}
	return response.Items[0].Id, nil
}

// SearchChannelID finds a channel by free-text search, taking the first
// result. Lower precision than the handle lookup; used only as a fallback.
func (c *Client) SearchChannelID(ctx context.Context, query string) (string, error) {
	metrics.APICalls.WithLabelValues("search.channels").Inc()

	response, err := c.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("channel").
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", classifyAPIError("search.channels", err)
	}

	if len(response.Items) == 0 || response.Items[0].Id == nil {
		return "", nil
	}
	return response.Items[0].Id.ChannelId, nil
}

// UploadsPlaylistID resolves the channel's implicit uploads playlist. All
// of a channel's public uploads are only enumerable through this playlist.
func (c *Client) UploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	metrics.APICalls.WithLabelValues("channels.byId").Inc()

	response, err := c.service.Channels.List([]string{"contentDetails"}).
		Id(channelID).
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", classifyAPIError("channels.byId", err)
	}

	if len(response.Items) == 0 {
		return "", &apperrors.NotFoundError{Resource: "channel", ID: channelID}
	}

	item := response.Items[0]
	if item.ContentDetails == nil || item.ContentDetails.RelatedPlaylists == nil ||
		item.ContentDetails.RelatedPlaylists.Uploads == "" {
		return "", &apperrors.NotFoundError{Resource: "uploads playlist", ID: channelID}
	}
	return item.ContentDetails.RelatedPlaylists.Uploads, nil
}

// PlaylistPage fetches one page of a playlist and returns the video
// references on it along with the next-page token ("" on the last page).
func (c *Client) PlaylistPage(ctx context.Context, playlistID, pageToken string, pageSize int64) ([]models.VideoRef, string, error) {
	metrics.APICalls.WithLabelValues("playlistItems.list").Inc()

	call := c.service.PlaylistItems.List([]string{"contentDetails"}).
		PlaylistId(playlistID).
		MaxResults(pageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	response, err := call.Do()
	if err != nil {
		return nil, "", classifyAPIError("playlistItems.list", err)
	}

	refs := make([]models.VideoRef, 0, len(response.Items))
	for _, item := range response.Items {
		if item.ContentDetails == nil || item.ContentDetails.VideoId == "" {
			continue
		}
		refs = append(refs, models.VideoRef{VideoID: item.ContentDetails.VideoId})
	}

	return refs, response.NextPageToken, nil
}

// VideoDetails fetches snippet, statistics and content details for up to
// MaxBatchSize videos in a single call and normalizes each record.
func (c *Client) VideoDetails(ctx context.Context, videoIDs []string) ([]models.Video, error) {
	if len(videoIDs) == 0 {
		return nil, fmt.Errorf("no video IDs provided")
	}
	if len(videoIDs) > MaxBatchSize {
		return nil, fmt.Errorf("too many video IDs (max %d, got %d)", MaxBatchSize, len(videoIDs))
	}

	metrics.APICalls.WithLabelValues("videos.list").Inc()

	response, err := c.service.Videos.List(videoParts).
		Id(videoIDs...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifyAPIError("videos.list", err)
	}

	videos := make([]models.Video, 0, len(response.Items))
	for _, item := range response.Items {
		videos = append(videos, mapVideo(item))
	}
	return videos, nil
}

// descriptionPreviewLen bounds the truncated description carried next to
// the full text.
const descriptionPreviewLen = 200

// mapVideo converts a raw API video record into the canonical Video
// entity. Missing numeric fields coerce to 0, never null; the thumbnail
// falls back through medium and default sizes to the empty string.
func mapVideo(item *youtube.Video) models.Video {
	video := models.Video{
		VideoID: item.Id,
		URL:     "https://youtube.com/watch?v=" + item.Id,
		Tags:    []string{},
	}

	if item.Snippet != nil {
		video.Title = item.Snippet.Title
		video.FullDescription = item.Snippet.Description
		video.Description = truncate(item.Snippet.Description, descriptionPreviewLen)
		if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			video.PublishedAt = t
		}
		if item.Snippet.Tags != nil {
			video.Tags = item.Snippet.Tags
		}
		if item.Snippet.Thumbnails != nil {
			switch {
			case item.Snippet.Thumbnails.Medium != nil:
				video.ThumbnailURL = item.Snippet.Thumbnails.Medium.Url
			case item.Snippet.Thumbnails.Default != nil:
				video.ThumbnailURL = item.Snippet.Thumbnails.Default.Url
			}
		}
	}

	if item.Statistics != nil {
		video.ViewCount = int64(item.Statistics.ViewCount)
		video.LikeCount = int64(item.Statistics.LikeCount)
		video.CommentCount = int64(item.Statistics.CommentCount)
	}

	if item.ContentDetails != nil {
		video.DurationSeconds = ParseDuration(item.ContentDetails.Duration)
	}
	video.Duration = FormatDuration(video.DurationSeconds)

	return video
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// classifyAPIError maps an SDK error onto the failure taxonomy. Upstream
// error payloads are authoritative regardless of HTTP status; anything
// without a structured payload is a transport failure.
func classifyAPIError(op string, err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return &apperrors.NetworkError{Op: op, Err: err}
	}

	for _, item := range gerr.Errors {
		switch item.Reason {
		case "quotaExceeded", "dailyLimitExceeded", "rateLimitExceeded", "userRateLimitExceeded":
			return &apperrors.QuotaError{Err: err}
		case "keyInvalid", "keyExpired", "ipRefererBlocked":
			return &apperrors.APIKeyError{Err: err}
		case "notFound", "channelNotFound", "playlistNotFound", "videoNotFound":
			return &apperrors.NotFoundError{Resource: "resource", ID: op}
		}
	}

	switch gerr.Code {
	case 400:
		if strings.Contains(strings.ToLower(gerr.Message), "api key") {
			return &apperrors.APIKeyError{Err: err}
		}
	case 403:
		if strings.Contains(strings.ToLower(gerr.Message), "quota") {
			return &apperrors.QuotaError{Err: err}
		}
		return &apperrors.APIKeyError{Err: err}
	case 404:
		return &apperrors.NotFoundError{Resource: "resource", ID: op}
	}

	return fmt.Errorf("%s: %w", op, err)
}
