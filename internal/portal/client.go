package portal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"zvgcli/pkg/contracts/domain"
)

const (
	defaultBaseURL   = "https://www.zvg-portal.de"
	defaultUserAgent = "zvgcli/1.0"
	defaultTimeout   = 60 * time.Second

	// maxResponseBytes caps how much of a result page is read. State pages
	// run to a few megabytes; anything beyond this is not a result page.
	maxResponseBytes = 32 << 20

	// searchConcurrency bounds parallel state searches in SearchStates.
	searchConcurrency = 3
)

// ClientOptions configures a portal client. Zero values fall back to
// defaults suitable for production use.
type ClientOptions struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Logger            *slog.Logger
}

// Client performs searches against zvg-portal.de. All requests share one
// rate limiter, so a client is safe for concurrent use.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient builds a client from opts.
func NewClient(opts ClientOptions) *Client {
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 0.5
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// Search fetches every current listing for the given state. The portal
// renders all listings of a state into one page; entries that cannot be
// turned into a listing are logged and skipped, so one broken row never
// fails the whole search.
func (c *Client) Search(ctx context.Context, land Land) ([]domain.Listing, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	form := url.Values{
		"ged":      {"0"},
		"land_abk": {land.Code},
		"ger_name": {"-- Alle Amtsgerichte --"},
		"order_by": {"2"},
	}
	endpoint := c.baseURL + "/index.php?button=Termine+suchen"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", land.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search %s: unexpected status %d", land.Name, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	entries, err := parseResultPage(decodeBody(body))
	if err != nil {
		return nil, err
	}

	listings := make([]domain.Listing, 0, len(entries))
	for _, e := range entries {
		l, err := buildListing(e, land)
		if err != nil {
			c.logger.Warn("skipping portal entry",
				slog.String("land", land.Code),
				slog.String("error", err.Error()))
			continue
		}
		listings = append(listings, l)
	}

	c.logger.Info("portal search complete",
		slog.String("land", land.Code),
		slog.Int("entries", len(entries)),
		slog.Int("listings", len(listings)),
		slog.Duration("duration", time.Since(start)))
	return listings, nil
}

// SearchStates fans Search out over several states with bounded concurrency
// and returns the per-state results in input order.
func (c *Client) SearchStates(ctx context.Context, lands []Land) ([][]domain.Listing, error) {
	results := make([][]domain.Listing, len(lands))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(searchConcurrency)
	for i, land := range lands {
		g.Go(func() error {
			listings, err := c.Search(ctx, land)
			if err != nil {
				return err
			}
			results[i] = listings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
