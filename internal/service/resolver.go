package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/channeldash/channel-ingestion-go/internal/apperrors"
	"github.com/channeldash/channel-ingestion-go/internal/models"
	"github.com/channeldash/channel-ingestion-go/pkg/logger"
)

// VideoAPI is the slice of the upstream API the pipeline consumes. The
// concrete implementation lives in internal/service/youtube.
type VideoAPI interface {
	ChannelIDForHandle(ctx context.Context, handle string) (string, error)
	SearchChannelID(ctx context.Context, query string) (string, error)
	UploadsPlaylistID(ctx context.Context, channelID string) (string, error)
	PlaylistPage(ctx context.Context, playlistID, pageToken string, pageSize int64) ([]models.VideoRef, string, error)
	VideoDetails(ctx context.Context, videoIDs []string) ([]models.Video, error)
}

// ChannelResolver converts a user-supplied channel URL, handle or name
// into a ChannelRef.
type ChannelResolver struct {
	api VideoAPI
}

// NewChannelResolver creates a resolver over the given API.
func NewChannelResolver(api VideoAPI) *ChannelResolver {
	return &ChannelResolver{api: api}
}

// Resolve classifies the input and resolves it to a channel ID plus the
// channel's uploads playlist. Classification order: full /channel/<id>
// URL, then /@handle URL or bare @handle, then anything else treated as a
// handle.
func (r *ChannelResolver) Resolve(ctx context.Context, input string) (models.ChannelRef, error) {
	input = strings.TrimSpace(input)

	var channelID string
	var err error

	switch {
	case strings.Contains(input, "/channel/"):
		channelID = extractPathSegment(input, "/channel/")
	case strings.Contains(input, "/@"):
		channelID, err = r.resolveHandle(ctx, extractPathSegment(input, "/@"))
	case strings.HasPrefix(input, "@"):
		channelID, err = r.resolveHandle(ctx, strings.TrimPrefix(input, "@"))
	default:
		channelID, err = r.resolveHandle(ctx, input)
	}
	if err != nil {
		return models.ChannelRef{}, err
	}
	if channelID == "" {
		return models.ChannelRef{}, &apperrors.ResolutionError{Input: input}
	}

	uploadsID, err := r.api.UploadsPlaylistID(ctx, channelID)
	if err != nil {
		return models.ChannelRef{}, err
	}

	logger.Log.Debug("channel resolved",
		zap.String("input", input),
		zap.String("channelId", channelID),
		zap.String("uploadsPlaylistId", uploadsID),
	)

	return models.ChannelRef{
		ChannelID:         channelID,
		UploadsPlaylistID: uploadsID,
	}, nil
}

// resolveHandle looks a handle up by the exact-handle endpoint first, then
// falls back to free-text channel search. The exact endpoint has higher
// precision but lower recall (not every handle is indexed), so the fuzzy
// path only runs when the precise one comes back empty.
func (r *ChannelResolver) resolveHandle(ctx context.Context, handle string) (string, error) {
	channelID, err := r.api.ChannelIDForHandle(ctx, handle)
	if err != nil {
		return "", err
	}
	if channelID != "" {
		return channelID, nil
	}

	logger.Log.Debug("handle not indexed, falling back to search",
		zap.String("handle", handle),
	)

	channelID, err = r.api.SearchChannelID(ctx, handle)
	if err != nil {
		return "", err
	}
	if channelID == "" {
		return "", &apperrors.NotFoundError{Resource: "channel", ID: handle}
	}
	return channelID, nil
}

// extractPathSegment returns the path segment following marker, stripped
// of any trailing path, query or fragment.
func extractPathSegment(input, marker string) string {
	idx := strings.Index(input, marker)
	if idx == -1 {
		return ""
	}
	rest := input[idx+len(marker):]
	if cut := strings.IndexAny(rest, "/?#&"); cut != -1 {
		rest = rest[:cut]
	}
	return rest
}
