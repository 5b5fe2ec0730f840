// Spotify Web API [Provider] implementation
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/desertthunder/yto/internal/models"
	"github.com/desertthunder/yto/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	DurationMS   int             `json:"duration_ms"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
	Album struct {
		Name        string         `json:"name"`
		ReleaseDate string         `json:"release_date"`
		Images      []SpotifyImage `json:"images"`
	} `json:"album"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Images      []SpotifyImage `json:"images"`
	Tracks      struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

// spotifyPaging is Spotify's offset-based paging envelope. The `next` URL
// doubles as the continuation token.
type spotifyPaging[T any] struct {
	Items []T    `json:"items"`
	Next  string `json:"next"`
	Total int    `json:"total"`
}

type spotifyPlaylistTrack struct {
	AddedAt string       `json:"added_at"`
	Track   SpotifyTrack `json:"track"`
}

// SpotifyService implements [Provider] against the Spotify Web API.
type SpotifyService struct {
	baseURL    string
	oauth      *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewSpotifyService creates a Spotify provider from client credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID := credentials["client_id"]
	clientSecret := credentials["client_secret"]
	if clientID == "" || clientSecret == "" {
		return nil, shared.ErrMissingCredentials
	}

	return &SpotifyService{
		baseURL: spotifyBaseURL,
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  credentials["redirect_uri"],
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyAuthURL,
				TokenURL: spotifyTokenURL,
			},
			Scopes: []string{"playlist-read-private", "playlist-read-collaborative"},
		},
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(6), 3),
	}, nil
}

// Name returns the provider name.
func (s *SpotifyService) Name() string { return "Spotify" }

// Namespace returns the storage namespace for Spotify data.
func (s *SpotifyService) Namespace() string { return models.NamespaceSpotify }

// Authenticate installs an already-obtained access token
// (credentials["access_token"], optional "refresh_token" and "expires_at" as
// unix seconds). Token acquisition itself lives with the auth layer.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	accessToken := credentials["access_token"]
	if accessToken == "" {
		return shared.ErrMissingCredentials
	}

	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: credentials["refresh_token"],
		TokenType:    "Bearer",
	}
	if raw := credentials["expires_at"]; raw != "" {
		if seconds, err := strconv.ParseInt(raw, 10, 64); err == nil {
			token.Expiry = time.Unix(seconds, 0)
		}
	}

	s.token = token
	return nil
}

// AuthURL returns the authorization-code URL for an interactive login.
func (s *SpotifyService) AuthURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// OAuthConfig exposes the OAuth2 config for the callback exchange.
func (s *SpotifyService) OAuthConfig() *oauth2.Config {
	return s.oauth
}

func (s *SpotifyService) doRequest(ctx context.Context, fullURL string, result any) error {
	if s.token == nil || !s.token.Valid() {
		return shared.ErrNotAuthenticated
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	s.token.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: status 401", shared.ErrTokenExpired)
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

// Playlists retrieves one page of the user's playlists. The continuation
// token is Spotify's `next` URL verbatim.
func (s *SpotifyService) Playlists(ctx context.Context, pageToken string) (*PlaylistPage, error) {
	fullURL := pageToken
	if fullURL == "" {
		fullURL = s.baseURL + "/me/playlists?" + url.Values{"limit": {"50"}}.Encode()
	}

	var resp spotifyPaging[SpotifyPlaylist]
	if err := s.doRequest(ctx, fullURL, &resp); err != nil {
		return nil, err
	}

	page := &PlaylistPage{NextPageToken: resp.Next}
	for _, item := range resp.Items {
		page.Playlists = append(page.Playlists, mapSpotifyPlaylist(item))
	}
	return page, nil
}

// PlaylistItems retrieves one page of a playlist's tracks.
func (s *SpotifyService) PlaylistItems(ctx context.Context, playlistID, pageToken string) (*VideoPage, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	fullURL := pageToken
	if fullURL == "" {
		fullURL = fmt.Sprintf("%s/playlists/%s/tracks?%s", s.baseURL, playlistID,
			url.Values{"limit": {"50"}}.Encode())
	}

	var resp spotifyPaging[spotifyPlaylistTrack]
	if err := s.doRequest(ctx, fullURL, &resp); err != nil {
		return nil, err
	}

	page := &VideoPage{NextPageToken: resp.Next}
	for _, item := range resp.Items {
		page.Videos = append(page.Videos, mapSpotifyTrack(item))
	}
	return page, nil
}

func mapSpotifyPlaylist(item SpotifyPlaylist) models.Playlist {
	return models.Playlist{
		ID:          item.ID,
		Title:       item.Name,
		Description: item.Description,
	}
}

func mapSpotifyTrack(item spotifyPlaylistTrack) models.Video {
	track := item.Track

	artist := ""
	if len(track.Artists) > 0 {
		artist = track.Artists[0].Name
	}
	thumbnail := ""
	if len(track.Album.Images) > 0 {
		thumbnail = track.Album.Images[0].URL
	}

	return models.Video{
		ID:          track.ID,
		Title:       track.Name,
		Duration:    models.FormatClock(time.Duration(track.DurationMS) * time.Millisecond),
		Thumbnail:   thumbnail,
		Channel:     artist,
		PublishedAt: parseTimestamp(item.AddedAt),
		URL:         track.ExternalURLs.Spotify,
	}
}
