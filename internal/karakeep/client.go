package karakeep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/keepsync/keepsync/internal/logger"
)

// ListFilters narrows the bookmark listing on the server side.
type ListFilters struct {
	ExcludeArchived bool
	OnlyFavorites   bool
}

// Client wraps the authenticated Karakeep REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     logger.Logger
}

func NewClient(baseURL, apiKey string, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 60 * time.Second},
		log:     log,
	}
}

// ListBookmarks fetches one page of the bookmark collection. Non-2xx
// responses are transport errors and abort the caller's pass.
func (c *Client) ListBookmarks(ctx context.Context, page, limit int, filters ListFilters) (*ListPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	if filters.ExcludeArchived {
		query.Set("archived", "false")
	}
	if filters.OnlyFavorites {
		query.Set("favourited", "true")
	}

	endpoint := c.baseURL + "/bookmarks?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building list request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing bookmarks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("listing bookmarks: unexpected status %d", resp.StatusCode)
	}

	var result ListPage
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding bookmark page: %w", err)
	}
	return &result, nil
}

// UpdateNote pushes a partial update of a single bookmark's note field.
// It never propagates errors past its boundary: any failure is logged and
// reported as false, so callers treat it as "no update happened".
func (c *Client) UpdateNote(ctx context.Context, bookmarkID, note string) bool {
	body, err := json.Marshal(map[string]string{"note": note})
	if err != nil {
		c.log.Errorf("encoding note update for %s: %v", bookmarkID, err)
		return false
	}

	endpoint := c.baseURL + "/bookmarks/" + url.PathEscape(bookmarkID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		c.log.Errorf("building note update for %s: %v", bookmarkID, err)
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Errorf("updating note for %s: %v", bookmarkID, err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Errorf("updating note for %s: unexpected status %d", bookmarkID, resp.StatusCode)
		return false
	}
	return true
}

// AssetURL returns the remote endpoint serving the raw bytes of an asset.
func (c *Client) AssetURL(assetID string) string {
	return c.baseURL + "/assets/" + url.PathEscape(assetID)
}

// FetchResource downloads raw bytes from rawURL. The bearer credential is
// attached only when the resource's origin matches the configured API origin,
// so the key is never leaked to third-party hosts.
func (c *Client) FetchResource(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building resource request: %w", err)
	}
	if c.sameOrigin(rawURL) {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}
	return data, nil
}

func (c *Client) sameOrigin(rawURL string) bool {
	target, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	return target.Scheme == base.Scheme && target.Host == base.Host
}
