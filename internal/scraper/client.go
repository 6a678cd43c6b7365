package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"

	"github.com/tullogher/gaa-fixtures/internal/platform/logging"
	"github.com/tullogher/gaa-fixtures/internal/platform/resilience"
)

const (
	defaultBaseURL = "https://www.gaa.ie/api/fixtures"
	maxBodyBytes   = 4 << 20
)

var errUpstreamTransient = crerr.New("fixtures upstream transient failure")

type ClientConfig struct {
	HTTPClient    *http.Client
	BaseURL       string
	ClubID        int
	CountyBoardID int
	Timeout       time.Duration
	MaxRetries    int
	Logger        *logging.Logger
	Breaker       resilience.BreakerConfig
}

// Client fetches the fixtures listing page for one club from the county
// board site. Concurrent fetches for the same URL are coalesced.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	clubID        int
	countyBoardID int
	maxRetries    int
	logger        *logging.Logger
	breaker       *resilience.Breaker
	flight        singleflight.Group
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient:    httpClient,
		baseURL:       baseURL,
		clubID:        cfg.ClubID,
		countyBoardID: cfg.CountyBoardID,
		maxRetries:    max(cfg.MaxRetries, 0),
		logger:        logger,
		breaker:       resilience.NewBreaker(cfg.Breaker),
	}
}

// FetchFixturesPage returns the raw HTML of the club fixtures listing.
func (c *Client) FetchFixturesPage(ctx context.Context) ([]byte, error) {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "fixtures fetch rejected by breaker", "state", c.breaker.State().String())
		return nil, fmt.Errorf("fixtures source is temporarily unavailable: %w", err)
	}

	fullURL := c.pageURL()
	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if reqErr != nil && crerr.Is(reqErr, errUpstreamTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, nil
}

func (c *Client) pageURL() string {
	values := url.Values{}
	values.Set("club", strconv.Itoa(c.clubID))
	values.Set("county_board", strconv.Itoa(c.countyBoardID))
	return c.baseURL + "?" + values.Encode()
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "text/html")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errUpstreamTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errUpstreamTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: upstream status=%d", errUpstreamTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("upstream status=%d", resp.StatusCode)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("fixtures request failed")
	}
	c.logger.WarnContext(ctx, "fixtures fetch failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
