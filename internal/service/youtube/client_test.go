package youtube

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/youtube/v3"

	"github.com/channeldash/channel-ingestion-go/internal/apperrors"
)

func TestMapVideoFullRecord(t *testing.T) {
	item := &youtube.Video{
		Id: "dQw4w9WgXcQ",
		Snippet: &youtube.VideoSnippet{
			Title:       "Test Video",
			Description: "A short description",
			PublishedAt: "2024-03-15T10:30:00Z",
			Tags:        []string{"music", "test"},
			Thumbnails: &youtube.ThumbnailDetails{
				Medium:  &youtube.Thumbnail{Url: "https://img.example/medium.jpg"},
				Default: &youtube.Thumbnail{Url: "https://img.example/default.jpg"},
			},
		},
		Statistics: &youtube.VideoStatistics{
			ViewCount:    12345,
			LikeCount:    678,
			CommentCount: 90,
		},
		ContentDetails: &youtube.VideoContentDetails{
			Duration: "PT1H30M",
		},
	}

	video := mapVideo(item)

	assert.Equal(t, "dQw4w9WgXcQ", video.VideoID)
	assert.Equal(t, "Test Video", video.Title)
	assert.Equal(t, "A short description", video.Description)
	assert.Equal(t, "A short description", video.FullDescription)
	assert.Equal(t, time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), video.PublishedAt)
	assert.Equal(t, int64(12345), video.ViewCount)
	assert.Equal(t, int64(678), video.LikeCount)
	assert.Equal(t, int64(90), video.CommentCount)
	assert.Equal(t, int64(5400), video.DurationSeconds)
	assert.Equal(t, "1:30:00", video.Duration)
	assert.Equal(t, "https://youtube.com/watch?v=dQw4w9WgXcQ", video.URL)
	assert.Equal(t, "https://img.example/medium.jpg", video.ThumbnailURL)
	assert.Equal(t, []string{"music", "test"}, video.Tags)
}

func TestMapVideoMissingFieldsCoerceToZero(t *testing.T) {
	video := mapVideo(&youtube.Video{Id: "abc123def45"})

	assert.Equal(t, int64(0), video.ViewCount)
	assert.Equal(t, int64(0), video.LikeCount)
	assert.Equal(t, int64(0), video.CommentCount)
	assert.Equal(t, int64(0), video.DurationSeconds)
	assert.Equal(t, "0:00", video.Duration)
	assert.True(t, video.PublishedAt.IsZero())
	assert.Equal(t, "", video.ThumbnailURL)
	require.NotNil(t, video.Tags)
	assert.Empty(t, video.Tags)
}

func TestMapVideoThumbnailFallsBackToDefault(t *testing.T) {
	video := mapVideo(&youtube.Video{
		Id: "abc123def45",
		Snippet: &youtube.VideoSnippet{
			Thumbnails: &youtube.ThumbnailDetails{
				Default: &youtube.Thumbnail{Url: "https://img.example/default.jpg"},
			},
		},
	})
	assert.Equal(t, "https://img.example/default.jpg", video.ThumbnailURL)
}

func TestMapVideoTruncatesLongDescription(t *testing.T) {
	long := strings.Repeat("x", 250)
	video := mapVideo(&youtube.Video{
		Id:      "abc123def45",
		Snippet: &youtube.VideoSnippet{Description: long},
	})

	assert.Equal(t, long, video.FullDescription)
	assert.Equal(t, strings.Repeat("x", 200)+"...", video.Description)
}

func TestClassifyAPIError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target any
	}{
		{
			"quota reason",
			&googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "quotaExceeded"}}},
			new(*apperrors.QuotaError),
		},
		{
			"daily limit reason",
			&googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "dailyLimitExceeded"}}},
			new(*apperrors.QuotaError),
		},
		{
			"invalid key reason",
			&googleapi.Error{Code: 400, Errors: []googleapi.ErrorItem{{Reason: "keyInvalid"}}},
			new(*apperrors.APIKeyError),
		},
		{
			"not found reason",
			&googleapi.Error{Code: 404, Errors: []googleapi.ErrorItem{{Reason: "playlistNotFound"}}},
			new(*apperrors.NotFoundError),
		},
		{
			"403 quota message without reason",
			&googleapi.Error{Code: 403, Message: "Quota exceeded for today"},
			new(*apperrors.QuotaError),
		},
		{
			"403 without quota message is a key problem",
			&googleapi.Error{Code: 403, Message: "Forbidden"},
			new(*apperrors.APIKeyError),
		},
		{
			"404 without reason",
			&googleapi.Error{Code: 404},
			new(*apperrors.NotFoundError),
		},
		{
			"plain transport error",
			errors.New("dial tcp: connection refused"),
			new(*apperrors.NetworkError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyAPIError("videos.list", tt.err)
			require.Error(t, got)

			switch target := tt.target.(type) {
			case **apperrors.QuotaError:
				assert.True(t, errors.As(got, target))
			case **apperrors.APIKeyError:
				assert.True(t, errors.As(got, target))
			case **apperrors.NotFoundError:
				assert.True(t, errors.As(got, target))
			case **apperrors.NetworkError:
				assert.True(t, errors.As(got, target))
			default:
				t.Fatalf("unhandled target type %T", tt.target)
			}
		})
	}
}
