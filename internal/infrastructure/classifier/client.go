package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/certwatch/backend/internal/domain"
)

// Client talks to the external skin-device classification service. Errors
// surface as wrapped ErrClassifierFailure; the judge layer converts them to
// the failed sentinel so a single record can never abort a batch.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a classifier client. The limiter is a courtesy toward
// the service, not a correctness mechanism.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	// classifier allows ~2 requests/sec sustained
	limiter := rate.NewLimiter(rate.Limit(2), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: limiter,
	}
}

// SetDebug enables per-request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Classify sends one record description and returns the verdict
func (c *Client) Classify(ctx context.Context, req domain.ClassifyRequest) (*domain.ClassifyResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", domain.ErrClassifierFailure, err)
	}

	endpoint := fmt.Sprintf("%s/v1/classify", c.baseURL)

	// Retry up to 3 times for transient failures
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrClassifierFailure, err)
		}

		resp, err := c.doRequest(ctx, endpoint, payload)
		if err != nil {
			if c.debug {
				log.Printf("[CLASSIFIER] request error (attempt %d): %v", attempt, err)
			}
			lastErr = err
			if !sleepCtx(ctx, exponentialBackoff(attempt)) {
				return nil, fmt.Errorf("%w: %v", domain.ErrClassifierFailure, ctx.Err())
			}
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			if c.debug {
				log.Printf("[CLASSIFIER] status %d (attempt %d): %s", resp.StatusCode, attempt, string(body))
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrClassifierFailure, resp.StatusCode)
			// client errors other than throttling will not heal on retry
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return nil, lastErr
			}
			if !sleepCtx(ctx, exponentialBackoff(attempt)) {
				return nil, fmt.Errorf("%w: %v", domain.ErrClassifierFailure, ctx.Err())
			}
			continue
		}

		var verdict domain.ClassifyResponse
		if err := json.Unmarshal(body, &verdict); err != nil {
			return nil, fmt.Errorf("%w: decode response: %v", domain.ErrClassifierFailure, err)
		}
		if verdict.Confidence < 0 || verdict.Confidence > 1 {
			return nil, fmt.Errorf("%w: confidence %f out of range", domain.ErrClassifierFailure, verdict.Confidence)
		}

		if c.debug {
			log.Printf("[CLASSIFIER] %q related=%v confidence=%.2f", req.DeviceName, verdict.IsRelated, verdict.Confidence)
		}
		return &verdict, nil
	}

	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, endpoint string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrClassifierFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "CertWatch/1.0")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrClassifierFailure, err)
	}
	return resp, nil
}

// exponentialBackoff doubles from 500ms per attempt
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1)) * 500 * time.Millisecond
}

// sleepCtx waits for d unless the context ends first
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
