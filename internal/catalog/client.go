package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the Met collection API root.
const DefaultBaseURL = "https://collectionapi.metmuseum.org/public/collection/v1"

// userAgent identifies requests to the collection API.
const userAgent = "artscroll/0.1 (+https://github.com/abelbrown/artscroll)"

// maxBodyBytes caps a single response body. The full ID search is ~5MB.
const maxBodyBytes = 32 << 20

var (
	// ErrNetwork covers transport failures, non-2xx statuses and undecodable bodies.
	ErrNetwork = errors.New("catalog: network error")
	// ErrEmptyResult is returned when the ID search yields zero identifiers.
	ErrEmptyResult = errors.New("catalog: empty result")
	// ErrNotFound is returned for a 404 on an object lookup.
	ErrNotFound = errors.New("catalog: object not found")
	// ErrNoImage is returned for records without any image reference.
	ErrNoImage = errors.New("catalog: object has no image")
	// ErrIneligible is returned for records that are not public domain.
	ErrIneligible = errors.New("catalog: object is not public domain")
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL           string
	SearchQuery       string        // empty means match everything
	RequestsPerSecond float64       // <= 0 disables limiting
	Timeout           time.Duration // per-request transport timeout
}

// Client talks to the collection API.
type Client struct {
	baseURL string
	query   string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &Client{
		baseURL: base,
		query:   opts.SearchQuery,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// searchResponse is the body of GET /search.
type searchResponse struct {
	Total     int      `json:"total"`
	ObjectIDs []ItemID `json:"objectIDs"`
}

// FetchIDPool returns every object ID that has images.
// Fails with ErrNetwork or ErrEmptyResult; callers degrade to an empty pool.
func (c *Client) FetchIDPool(ctx context.Context) ([]ItemID, error) {
	q := c.query
	if q == "" {
		// The API has no list-all endpoint; an empty quoted phrase matches everything.
		q = `""`
	}
	params := url.Values{}
	params.Set("q", q)
	params.Set("hasImages", "true")

	var resp searchResponse
	if err := c.getJSON(ctx, c.baseURL+"/search?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if len(resp.ObjectIDs) == 0 {
		return nil, ErrEmptyResult
	}
	return resp.ObjectIDs, nil
}

// Lookup fetches one object and validates it for display.
func (c *Client) Lookup(ctx context.Context, id ItemID) (Item, error) {
	var item Item
	if err := c.getJSON(ctx, c.baseURL+"/objects/"+id.String(), &item); err != nil {
		return Item{}, err
	}
	if !item.HasDisplayableImage() {
		return Item{}, fmt.Errorf("object %s: %w", id, ErrNoImage)
	}
	if !item.IsEligible() {
		return Item{}, fmt.Errorf("object %s: %w", id, ErrIneligible)
	}
	if item.ID == 0 {
		item.ID = id
	}
	return item, nil
}

// FetchItem is Lookup with every failure folded into nil.
// Transport failures and rejected content both mean "skip this id".
func (c *Client) FetchItem(ctx context.Context, id ItemID) *Item {
	item, err := c.Lookup(ctx, id)
	if err != nil {
		return nil
	}
	return &item
}

// getJSON performs a rate-limited GET and decodes the body into v.
func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", ErrNetwork, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", ErrNetwork, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: HTTP %d", ErrNetwork, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrNetwork, err)
	}
	return nil
}
