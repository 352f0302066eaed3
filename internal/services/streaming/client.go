package streaming

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"replay/internal/services"
)

// Provider-imposed hard caps on ids per request.
const (
	MaxTrackIDs   = 50
	MaxArtistIDs  = 50
	MaxFeatureIDs = 100
)

// Source defines the streaming-service operations consumed by the sync
// pipeline. The Client implements it against the real HTTP API.
type Source interface {
	RecentlyPlayed(ctx context.Context, limit int) ([]PlayedTrack, error)
	TracksMetadata(ctx context.Context, ids []string) ([]TrackMetadata, error)
	ArtistsMetadata(ctx context.Context, ids []string) ([]ArtistMetadata, error)
	AudioFeatures(ctx context.Context, ids []string) ([]*AudioFeatures, error)
}

// Client provides access to the streaming-service API.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

var _ Source = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates a streaming API client. Credentials are validated here, before
// any network call is made.
func New(accessToken, baseURL string, opts ...Option) (*Client, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, services.Wrap(services.ErrConfiguration, "streaming", "new client", "access token required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "streaming", "new client", "base url required", nil)
	}
	client := &Client{
		accessToken: accessToken,
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type recentlyPlayedResponse struct {
	Items []struct {
		PlayedAt time.Time `json:"played_at"`
		Track    struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Album   struct {
				Name string `json:"name"`
			} `json:"album"`
			Artists []ArtistRef `json:"artists"`
		} `json:"track"`
	} `json:"items"`
}

// RecentlyPlayed fetches up to limit most recent playback events, newest
// first.
func (c *Client) RecentlyPlayed(ctx context.Context, limit int) ([]PlayedTrack, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var payload recentlyPlayedResponse
	if err := c.getJSON(ctx, "/me/player/recently-played", params, "recently played", &payload); err != nil {
		return nil, err
	}

	tracks := make([]PlayedTrack, 0, len(payload.Items))
	for _, item := range payload.Items {
		primary := ""
		if len(item.Track.Artists) > 0 {
			primary = item.Track.Artists[0].Name
		}
		tracks = append(tracks, PlayedTrack{
			ID:       item.Track.ID,
			Title:    item.Track.Name,
			Artist:   primary,
			Album:    item.Track.Album.Name,
			PlayedAt: item.PlayedAt,
		})
	}
	return tracks, nil
}

// TracksMetadata fetches full metadata for up to MaxTrackIDs tracks. Entries
// the provider could not resolve are omitted from the result.
func (c *Client) TracksMetadata(ctx context.Context, ids []string) ([]TrackMetadata, error) {
	if err := checkIDs(ids, MaxTrackIDs); err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))

	var payload struct {
		Tracks []*TrackMetadata `json:"tracks"`
	}
	if err := c.getJSON(ctx, "/tracks", params, "tracks metadata", &payload); err != nil {
		return nil, err
	}

	tracks := make([]TrackMetadata, 0, len(payload.Tracks))
	for _, track := range payload.Tracks {
		if track != nil {
			tracks = append(tracks, *track)
		}
	}
	return tracks, nil
}

// ArtistsMetadata fetches artist-level metadata for up to MaxArtistIDs
// artists. Unresolvable entries are omitted.
func (c *Client) ArtistsMetadata(ctx context.Context, ids []string) ([]ArtistMetadata, error) {
	if err := checkIDs(ids, MaxArtistIDs); err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))

	var payload struct {
		Artists []*ArtistMetadata `json:"artists"`
	}
	if err := c.getJSON(ctx, "/artists", params, "artists metadata", &payload); err != nil {
		return nil, err
	}

	artists := make([]ArtistMetadata, 0, len(payload.Artists))
	for _, artist := range payload.Artists {
		if artist != nil {
			artists = append(artists, *artist)
		}
	}
	return artists, nil
}

// AudioFeatures fetches the legacy acoustic feature payloads for up to
// MaxFeatureIDs tracks. The provider returns null per unresolvable id, so the
// slice is positional and entries may be nil.
func (c *Client) AudioFeatures(ctx context.Context, ids []string) ([]*AudioFeatures, error) {
	if err := checkIDs(ids, MaxFeatureIDs); err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))

	var payload struct {
		AudioFeatures []*AudioFeatures `json:"audio_features"`
	}
	if err := c.getJSON(ctx, "/audio-features", params, "audio features", &payload); err != nil {
		return nil, err
	}
	return payload.AudioFeatures, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, operation string, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse streaming url: %w", err)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return services.Wrap(services.ErrTransient, "streaming", operation, fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrTransient, "streaming", operation,
			fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrTransient, "streaming", operation, "decode response", err)
	}
	return nil
}

func checkIDs(ids []string, max int) error {
	if len(ids) == 0 {
		return errors.New("at least one id required")
	}
	if len(ids) > max {
		return fmt.Errorf("too many ids: %d exceeds request cap %d", len(ids), max)
	}
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return errors.New("ids must not be blank")
		}
	}
	return nil
}
