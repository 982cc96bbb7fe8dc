// Blend backend client. Wire types follow the backend's JSON handlers.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/artistblend/abx/internal/models"
	"github.com/artistblend/abx/internal/shared"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the blend backend's default listen address.
const DefaultBaseURL = "http://127.0.0.1:8000"

// searchRate throttles artist lookups. Interactive typing is already
// debounced upstream; the limiter guards scripted callers.
var searchRate = rate.Limit(5)

type generateRequest struct {
	Artists []string `json:"artists"`
}

type generateResponse struct {
	Tracks []models.Track `json:"tracks"`
}

type artistItems struct {
	Items []models.Artist `json:"items"`
}

type searchResponse struct {
	Artists artistItems `json:"artists"`
}

type createRequest struct {
	Name     string   `json:"name"`
	TrackIDs []string `json:"trackIds"`
}

type createResponse struct {
	URL string `json:"url"`
}

// Client is a typed HTTP client for the blend backend.
//
// The token func is consulted per request so a login or logout in another
// component takes effect without rebuilding the client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      func() string
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewClient creates a backend client. An empty baseURL falls back to
// [DefaultBaseURL]; a nil token func means unauthenticated requests.
func NewClient(baseURL string, httpClient *http.Client, token func() string, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if token == nil {
		token = func() string { return "" }
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		token:      token,
		limiter:    rate.NewLimiter(searchRate, 2),
		logger:     logger,
	}
}

// BaseURL returns the backend base URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs a JSON request against the backend, decoding into result
// when it is non-nil. 401/403 map to [shared.ErrUnauthorized].
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %s %s returned %d", shared.ErrUnauthorized, method, path, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s returned %d", shared.ErrAPIRequest, method, path, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
		}
	}

	return nil
}

// Generate requests a blended track list for the given artists.
func (c *Client) Generate(ctx context.Context, artists []string) ([]models.Track, error) {
	if len(artists) == 0 {
		return nil, fmt.Errorf("%w: no artists provided", shared.ErrInvalidInput)
	}

	var resp generateResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/playlist/generate", generateRequest{Artists: artists}, &resp); err != nil {
		return nil, err
	}
	if resp.Tracks == nil {
		resp.Tracks = []models.Track{}
	}
	return resp.Tracks, nil
}

// SearchArtists looks up artist suggestions for a partial name.
// Calls are rate limited; the limiter wait respects ctx.
func (c *Client) SearchArtists(ctx context.Context, query string) ([]models.Artist, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("search throttled: %w", err)
	}

	var resp searchResponse
	path := "/api/search/artists?q=" + url.QueryEscape(query)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Artists.Items == nil {
		resp.Artists.Items = []models.Artist{}
	}
	return resp.Artists.Items, nil
}

// CreatePlaylist creates the playlist on Spotify through the backend and
// returns its URL. An empty name falls back to the default blend title.
func (c *Client) CreatePlaylist(ctx context.Context, name string, trackIDs []string) (string, error) {
	if name == "" {
		name = models.DefaultPlaylistTitle
	}
	if len(trackIDs) == 0 {
		return "", fmt.Errorf("%w: no tracks provided", shared.ErrInvalidInput)
	}

	var resp createResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/playlist/create", createRequest{Name: name, TrackIDs: trackIDs}, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// ListHistory fetches the server-side playlist history.
func (c *Client) ListHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	if err := c.doRequest(ctx, http.MethodGet, "/api/history", nil, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	return entries, nil
}

// SaveHistory stores an entry server-side and returns the stored record.
func (c *Client) SaveHistory(ctx context.Context, entry models.HistoryEntry) (models.HistoryEntry, error) {
	var stored models.HistoryEntry
	if err := c.doRequest(ctx, http.MethodPost, "/api/history", entry, &stored); err != nil {
		return models.HistoryEntry{}, err
	}
	return stored, nil
}

// DeleteHistory removes a history entry by id.
func (c *Client) DeleteHistory(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: missing entry id", shared.ErrInvalidInput)
	}
	return c.doRequest(ctx, http.MethodDelete, "/api/history/"+url.PathEscape(id), nil, nil)
}

// Probe reports whether the backend considers this client logged in.
// Any error, including transport failures, reads as "not verified".
func (c *Client) Probe(ctx context.Context) bool {
	err := c.doRequest(ctx, http.MethodGet, "/api/auth/me", nil, nil)
	if err != nil {
		c.logger.Debug("auth probe failed", "error", err)
		return false
	}
	return true
}

// Logout ends the backend session. Failures are logged and swallowed since
// local credentials are cleared regardless.
func (c *Client) Logout(ctx context.Context) {
	if err := c.doRequest(ctx, http.MethodPost, "/logout", nil, nil); err != nil {
		c.logger.Warn("backend logout failed", "error", err)
	}
}

// LoginURL returns the backend's Spotify login hand-off URL.
func (c *Client) LoginURL() string {
	return c.baseURL + "/login"
}

// DemoTracks returns the fixed sample track list substituted when generation
// is unavailable, so the rest of the flow stays usable offline.
func DemoTracks() []models.Track {
	return []models.Track{
		{ID: "demo-1", Name: "Blinding Lights", Artist: "The Weeknd", Album: "After Hours", Duration: "3:20"},
		{ID: "demo-2", Name: "Watermelon Sugar", Artist: "Harry Styles", Album: "Fine Line", Duration: "2:54"},
		{ID: "demo-3", Name: "Levitating", Artist: "Dua Lipa", Album: "Future Nostalgia", Duration: "3:23"},
		{ID: "demo-4", Name: "Good 4 U", Artist: "Olivia Rodrigo", Album: "SOUR", Duration: "2:58"},
		{ID: "demo-5", Name: "Anti-Hero", Artist: "Taylor Swift", Album: "Midnights", Duration: "3:20"},
	}
}
