// YouTube Data API v3 [Provider] implementation
//
// Response types follow https://developers.google.com/youtube/v3/docs
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/yto/internal/models"
	"github.com/desertthunder/yto/internal/shared"
	"golang.org/x/time/rate"
)

const defaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"

// youtubeThumbnail is one rendition of a video/playlist thumbnail.
type youtubeThumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type youtubeThumbnails struct {
	Default youtubeThumbnail `json:"default"`
	Medium  youtubeThumbnail `json:"medium"`
	High    youtubeThumbnail `json:"high"`
}

func (t youtubeThumbnails) best() string {
	switch {
	case t.High.URL != "":
		return t.High.URL
	case t.Medium.URL != "":
		return t.Medium.URL
	default:
		return t.Default.URL
	}
}

// YouTubePlaylist represents one item of a playlists.list response.
type YouTubePlaylist struct {
	ID      string `json:"id"`
	Snippet struct {
		Title       string            `json:"title"`
		Description string            `json:"description"`
		PublishedAt string            `json:"publishedAt"`
		Thumbnails  youtubeThumbnails `json:"thumbnails"`
	} `json:"snippet"`
	ContentDetails struct {
		ItemCount int `json:"itemCount"`
	} `json:"contentDetails"`
}

// YouTubePlaylistItem represents one item of a playlistItems.list response.
type YouTubePlaylistItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title                  string            `json:"title"`
		Description            string            `json:"description"`
		PublishedAt            string            `json:"publishedAt"`
		VideoOwnerChannelTitle string            `json:"videoOwnerChannelTitle"`
		Thumbnails             youtubeThumbnails `json:"thumbnails"`
		ResourceID             struct {
			VideoID string `json:"videoId"`
		} `json:"resourceId"`
	} `json:"snippet"`
}

// YouTubeVideo represents one item of a videos.list response; only the fields
// the items fetch enriches from (duration, tags) are mapped.
type YouTubeVideo struct {
	ID      string `json:"id"`
	Snippet struct {
		Tags []string `json:"tags"`
	} `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
}

type youtubeListResponse[T any] struct {
	Items         []T    `json:"items"`
	NextPageToken string `json:"nextPageToken"`
	PageInfo      struct {
		TotalResults int `json:"totalResults"`
	} `json:"pageInfo"`
}

// YouTubeService implements [Provider] against the YouTube Data API v3.
type YouTubeService struct {
	baseURL     string
	apiKey      string
	accessToken string
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// NewYouTubeService creates a YouTube provider. An empty baseURL selects the
// public API endpoint.
func NewYouTubeService(baseURL string) *YouTubeService {
	if baseURL == "" {
		baseURL = defaultYouTubeBaseURL
	}
	return &YouTubeService{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(8), 4),
	}
}

// Name returns the provider name.
func (y *YouTubeService) Name() string { return "YouTube" }

// Namespace returns the storage namespace for YouTube data.
func (y *YouTubeService) Namespace() string { return models.NamespaceGoogle }

// Authenticate accepts either credentials["api_key"] or
// credentials["access_token"]; a bearer token takes precedence when both are
// present.
func (y *YouTubeService) Authenticate(ctx context.Context, credentials map[string]string) error {
	y.apiKey = credentials["api_key"]
	y.accessToken = credentials["access_token"]
	if y.apiKey == "" && y.accessToken == "" {
		return shared.ErrMissingCredentials
	}
	return nil
}

func (y *YouTubeService) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	if err := y.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	if y.apiKey != "" {
		params.Set("key", y.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if y.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+y.accessToken)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: status %d", shared.ErrNotAuthenticated, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error.Message != "" {
			return fmt.Errorf("%w: %s", shared.ErrAPIRequest, errResp.Error.Message)
		}
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Playlists retrieves one page of the authenticated user's playlists.
func (y *YouTubeService) Playlists(ctx context.Context, pageToken string) (*PlaylistPage, error) {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("mine", "true")
	params.Set("maxResults", "50")
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	var resp youtubeListResponse[YouTubePlaylist]
	if err := y.doRequest(ctx, "/playlists", params, &resp); err != nil {
		return nil, err
	}

	page := &PlaylistPage{NextPageToken: resp.NextPageToken}
	for _, item := range resp.Items {
		page.Playlists = append(page.Playlists, mapYouTubePlaylist(item))
	}
	return page, nil
}

// PlaylistItems retrieves one page of a playlist's videos, enriched with
// durations and tags from a batched videos.list call.
func (y *YouTubeService) PlaylistItems(ctx context.Context, playlistID, pageToken string) (*VideoPage, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("playlistId", playlistID)
	params.Set("maxResults", "50")
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	var resp youtubeListResponse[YouTubePlaylistItem]
	if err := y.doRequest(ctx, "/playlistItems", params, &resp); err != nil {
		return nil, err
	}

	page := &VideoPage{NextPageToken: resp.NextPageToken}
	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		page.Videos = append(page.Videos, mapYouTubePlaylistItem(item))
		if id := item.Snippet.ResourceID.VideoID; id != "" {
			ids = append(ids, id)
		}
	}

	if len(ids) > 0 {
		if err := y.enrichVideos(ctx, page.Videos, ids); err != nil {
			// Durations and tags are cosmetic; the page is still usable.
			return page, nil
		}
	}
	return page, nil
}

// enrichVideos fills duration and tags from one videos.list call.
func (y *YouTubeService) enrichVideos(ctx context.Context, videos []models.Video, ids []string) error {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("id", strings.Join(ids, ","))

	var resp youtubeListResponse[YouTubeVideo]
	if err := y.doRequest(ctx, "/videos", params, &resp); err != nil {
		return err
	}

	details := make(map[string]YouTubeVideo, len(resp.Items))
	for _, v := range resp.Items {
		details[v.ID] = v
	}
	for i := range videos {
		if d, ok := details[videos[i].ID]; ok {
			videos[i].Duration = models.FormatPeriod(d.ContentDetails.Duration)
			videos[i].Tags = d.Snippet.Tags
		}
	}
	return nil
}

func mapYouTubePlaylist(item YouTubePlaylist) models.Playlist {
	return models.Playlist{
		ID:          item.ID,
		Title:       item.Snippet.Title,
		Description: item.Snippet.Description,
		PublishedAt: parseTimestamp(item.Snippet.PublishedAt),
	}
}

func mapYouTubePlaylistItem(item YouTubePlaylistItem) models.Video {
	videoID := item.Snippet.ResourceID.VideoID
	return models.Video{
		ID:          videoID,
		ItemID:      item.ID,
		Title:       item.Snippet.Title,
		Description: item.Snippet.Description,
		Thumbnail:   item.Snippet.Thumbnails.best(),
		Channel:     item.Snippet.VideoOwnerChannelTitle,
		PublishedAt: parseTimestamp(item.Snippet.PublishedAt),
		URL:         "https://www.youtube.com/watch?v=" + videoID,
	}
}

// parseTimestamp converts an RFC 3339 timestamp to epoch milliseconds, zero
// when absent or malformed.
func parseTimestamp(s string) int64 {
	if s == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}
