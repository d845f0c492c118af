// Package quotes fetches external quote records over HTTP. It has no
// data dependency on the ETL core; it shares only the logging and
// configuration plumbing.
package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/dvloznov/txn-etl/internal/logger"
)

// Quote is one record returned by the quote API.
type Quote struct {
	ID     int    `json:"id"`
	Quote  string `json:"quote"`
	Author string `json:"author"`
}

// APIError represents a failed API call.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("quote API returned status code %d", e.StatusCode)
	}
	return e.Message
}

// ClientOptions holds options for creating a Client.
type ClientOptions struct {
	BaseURL        string
	Timeout        time.Duration
	MaxAttempts    int
	RetryDelay     time.Duration
	RequestsPerSec int
}

// Client is an HTTP quote fetcher with rate limiting and a fixed-delay
// retry policy.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	baseURL     string
	maxAttempts int
	retryDelay  time.Duration
}

// NewClient creates a quote client. Zero options fall back to defaults:
// 10s timeout, 3 attempts, 1s delay, 5 requests per second.
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 5
	}

	return &Client{
		httpClient:  &http.Client{Timeout: opts.Timeout},
		limiter:     rate.NewLimiter(rate.Every(time.Second), opts.RequestsPerSec),
		baseURL:     opts.BaseURL,
		maxAttempts: opts.MaxAttempts,
		retryDelay:  opts.RetryDelay,
	}
}

// FetchQuote fetches a single quote, retrying failed calls up to the
// configured attempt count with a constant delay between attempts. The
// symbol is accepted for API-signature compatibility; the quote
// endpoint does not use it.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*Quote, error) {
	log := logger.FromContext(ctx)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var quote *Quote
	attempt := 0

	operation := func() error {
		attempt++
		q, err := c.fetchOnce(ctx)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Str("symbol", symbol).Msg("Quote fetch attempt failed")
			return err
		}
		quote = q
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryDelay), uint64(c.maxAttempts-1)),
		ctx,
	)

	if err := backoff.Retry(operation, policy); err != nil {
		log.Error().Err(err).Int("attempts", attempt).Msg("All quote fetch attempts failed")
		return nil, err
	}

	log.Info().Int("quote_id", quote.ID).Msg("Fetched quote")
	return quote, nil
}

// fetchOnce performs one HTTP call.
func (c *Client) fetchOnce(ctx context.Context) (*Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("building request: %v", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("client error: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	var quote Quote
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return nil, &APIError{Message: fmt.Sprintf("decoding response: %v", err)}
	}

	return &quote, nil
}

// FetchQuotes fetches one quote per symbol concurrently. Failures are
// logged and skipped; the successful quotes are returned in symbol
// order.
func (c *Client) FetchQuotes(ctx context.Context, symbols []string) []*Quote {
	log := logger.FromContext(ctx)

	results := make([]*Quote, len(symbols))
	var wg sync.WaitGroup

	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()

			quote, err := c.FetchQuote(ctx, symbol)
			if err != nil {
				log.Error().Err(err).Str("symbol", symbol).Msg("Failed to fetch quote")
				return
			}
			results[i] = quote
		}(i, symbol)
	}

	wg.Wait()

	quotes := make([]*Quote, 0, len(symbols))
	for _, q := range results {
		if q != nil {
			quotes = append(quotes, q)
		}
	}
	return quotes
}
