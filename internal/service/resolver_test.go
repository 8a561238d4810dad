package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/channeldash/channel-ingestion-go/internal/apperrors"
	"github.com/channeldash/channel-ingestion-go/internal/models"
)

// fakeAPI is a scriptable VideoAPI shared by the service tests.
type fakeAPI struct {
	handleToID map[string]string
	searchToID map[string]string
	uploadsID  string

	pages      []fakePage
	details    func(ids []string) ([]models.Video, error)
	detailErrs map[int]error

	handleCalls  int
	searchCalls  int
	uploadsCalls int
	pageCalls    int
	detailCalls  int
}

type fakePage struct {
	refs      []models.VideoRef
	nextToken string
}

func (f *fakeAPI) ChannelIDForHandle(_ context.Context, handle string) (string, error) {
	f.handleCalls++
	return f.handleToID[handle], nil
}

func (f *fakeAPI) SearchChannelID(_ context.Context, query string) (string, error) {
	f.searchCalls++
	return f.searchToID[query], nil
}

func (f *fakeAPI) UploadsPlaylistID(_ context.Context, channelID string) (string, error) {
	f.uploadsCalls++
	if f.uploadsID == "" {
		return "", &apperrors.NotFoundError{Resource: "channel", ID: channelID}
	}
	return f.uploadsID, nil
}

func (f *fakeAPI) PlaylistPage(_ context.Context, _, pageToken string, _ int64) ([]models.VideoRef, string, error) {
	idx := f.pageCalls
	f.pageCalls++
	if idx >= len(f.pages) {
		return nil, "", fmt.Errorf("unexpected page request %d (token %q)", idx, pageToken)
	}
	page := f.pages[idx]
	return page.refs, page.nextToken, nil
}

func (f *fakeAPI) VideoDetails(_ context.Context, ids []string) ([]models.Video, error) {
	idx := f.detailCalls
	f.detailCalls++
	if err, ok := f.detailErrs[idx]; ok {
		return nil, err
	}
	if f.details != nil {
		return f.details(ids)
	}
	videos := make([]models.Video, 0, len(ids))
	for _, id := range ids {
		videos = append(videos, models.Video{VideoID: id, Tags: []string{}})
	}
	return videos, nil
}

func makeRefs(n int) []models.VideoRef {
	refs := make([]models.VideoRef, n)
	for i := range refs {
		refs[i] = models.VideoRef{VideoID: fmt.Sprintf("vid%08d", i)}
	}
	return refs
}

func TestResolveChannelURL(t *testing.T) {
	api := &fakeAPI{uploadsID: "UUBJycsmduvYEL83R_U4JriQ"}
	r := NewChannelResolver(api)

	tests := []struct {
		name  string
		input string
	}{
		{"plain channel url", "https://www.youtube.com/channel/UCBJycsmduvYEL83R_U4JriQ"},
		{"channel url with trailing path", "https://youtube.com/channel/UCBJycsmduvYEL83R_U4JriQ/videos"},
		{"channel url with query", "https://youtube.com/channel/UCBJycsmduvYEL83R_U4JriQ?view=0"},
		{"channel url with fragment", "https://youtube.com/channel/UCBJycsmduvYEL83R_U4JriQ#about"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := r.Resolve(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, "UCBJycsmduvYEL83R_U4JriQ", ref.ChannelID)
			assert.Equal(t, "UUBJycsmduvYEL83R_U4JriQ", ref.UploadsPlaylistID)
		})
	}

	// Direct IDs never hit the handle or search endpoints.
	assert.Zero(t, api.handleCalls)
	assert.Zero(t, api.searchCalls)
	assert.Equal(t, len(tests), api.uploadsCalls)
}

func TestResolveHandle(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bare handle", "@mkbhd"},
		{"handle url", "https://www.youtube.com/@mkbhd"},
		{"handle url with trailing path", "https://youtube.com/@mkbhd/videos"},
		{"plain name treated as handle", "mkbhd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{
				handleToID: map[string]string{"mkbhd": "UCBJycsmduvYEL83R_U4JriQ"},
				uploadsID:  "UUBJycsmduvYEL83R_U4JriQ",
			}
			r := NewChannelResolver(api)

			ref, err := r.Resolve(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, "UCBJycsmduvYEL83R_U4JriQ", ref.ChannelID)
			assert.Equal(t, 1, api.handleCalls)
			assert.Zero(t, api.searchCalls)
		})
	}
}

func TestResolveFallsBackToSearch(t *testing.T) {
	api := &fakeAPI{
		handleToID: map[string]string{},
		searchToID: map[string]string{"obscure channel": "UCBJycsmduvYEL83R_U4JriQ"},
		uploadsID:  "UUBJycsmduvYEL83R_U4JriQ",
	}
	r := NewChannelResolver(api)

	ref, err := r.Resolve(context.Background(), "obscure channel")
	require.NoError(t, err)
	assert.Equal(t, "UCBJycsmduvYEL83R_U4JriQ", ref.ChannelID)
	assert.Equal(t, 1, api.handleCalls)
	assert.Equal(t, 1, api.searchCalls)
}

func TestResolveNotFound(t *testing.T) {
	api := &fakeAPI{handleToID: map[string]string{}, searchToID: map[string]string{}}
	r := NewChannelResolver(api)

	_, err := r.Resolve(context.Background(), "@doesnotexist")
	require.Error(t, err)

	var notFound *apperrors.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestResolveEmptyChannelURLSegment(t *testing.T) {
	api := &fakeAPI{uploadsID: "UUBJycsmduvYEL83R_U4JriQ"}
	r := NewChannelResolver(api)

	_, err := r.Resolve(context.Background(), "https://youtube.com/channel/")
	require.Error(t, err)

	var resolution *apperrors.ResolutionError
	assert.True(t, errors.As(err, &resolution))
}

func TestExtractPathSegment(t *testing.T) {
	tests := []struct {
		input  string
		marker string
		want   string
	}{
		{"https://youtube.com/channel/UC123/videos", "/channel/", "UC123"},
		{"https://youtube.com/channel/UC123?x=1", "/channel/", "UC123"},
		{"https://youtube.com/@handle#top", "/@", "handle"},
		{"https://youtube.com/@handle&y=2", "/@", "handle"},
		{"no marker here", "/channel/", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractPathSegment(tt.input, tt.marker), "input %q", tt.input)
	}
}
