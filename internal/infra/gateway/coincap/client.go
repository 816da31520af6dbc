package coincap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kislikjeka/coinwallet/pkg/logger"
)

const (
	defaultBaseURL        = "https://rest.coincap.io/v3"
	defaultRequestTimeout = 10 * time.Second
	defaultRateLimit      = 5 // requests per second
	rateLimitRetryAfter   = 60 * time.Second
)

// Config configures the CoinCap client. Zero values pick defaults.
type Config struct {
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
}

// Client is an HTTP client for the CoinCap v3 REST API
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *logger.Logger
}

// NewClient creates a new CoinCap API client
func NewClient(cfg Config, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		apiKey: cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: rate.NewLimiter(rate.Limit(limit), 1),
		logger:  log.WithComponent("coincap"),
	}
}

// SetBaseURL overrides the default base URL (useful for testing)
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

// SearchAssets lists assets matching search, paginated by limit and offset.
func (c *Client) SearchAssets(ctx context.Context, search string, limit, offset int) (*AssetsResponse, error) {
	params := url.Values{}
	params.Set("search", search)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var resp AssetsResponse
	if err := c.get(ctx, "/assets", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAsset fetches a single asset by slug.
func (c *Client) GetAsset(ctx context.Context, slug string) (*AssetResponse, error) {
	var resp AssetResponse
	if err := c.get(ctx, "/assets/"+url.PathEscape(slug), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAssetHistory fetches price history for slug. start and end are sent
// as epoch millis when set.
func (c *Client) GetAssetHistory(ctx context.Context, slug, interval string, start, end *time.Time) (*HistoryResponse, error) {
	params := url.Values{}
	params.Set("interval", interval)
	if start != nil {
		params.Set("start", strconv.FormatInt(start.UnixMilli(), 10))
	}
	if end != nil {
		params.Set("end", strconv.FormatInt(end.UnixMilli(), 10))
	}

	var resp HistoryResponse
	if err := c.get(ctx, "/assets/"+url.PathEscape(slug)+"/history", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPricesBySymbols fetches current prices for symbols in one call.
func (c *Client) GetPricesBySymbols(ctx context.Context, symbols []string) (*PriceBySymbolResponse, error) {
	escaped := make([]string, len(symbols))
	for i, s := range symbols {
		escaped[i] = url.PathEscape(s)
	}

	var resp PriceBySymbolResponse
	if err := c.get(ctx, "/price/bysymbol/"+strings.Join(escaped, ","), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// get performs an authenticated GET and decodes the JSON body into out.
// There is no retry; 429 surfaces as a RateLimitError.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	c.logger.Debug("API request", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		c.logger.Warn("rate limited by CoinCap", "path", path)
		return &RateLimitError{
			RetryAfter: retryAfter(resp.Header.Get("Retry-After")),
			Message:    "CoinCap API rate limit exceeded",
		}
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("API error", "path", path, "status_code", resp.StatusCode)
		return fmt.Errorf("CoinCap API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Debug("API response", "path", path, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func retryAfter(header string) time.Duration {
	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return rateLimitRetryAfter
}

// RateLimitError is returned when CoinCap responds 429
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s (retry after %s)", e.Message, e.RetryAfter)
}

// IsRateLimitError checks if an error is (or wraps) a CoinCap rate limit error
func IsRateLimitError(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}
