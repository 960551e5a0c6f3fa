package placekey

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/apartment-accesscode/internal/config"
)

// Client talks to the Placekey API. It owns a rate limiter and a retry
// policy so callers never have to think about 429 responses; all calls
// take a context and honour its cancellation between retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
	retryDelay time.Duration
	limiter    *rate.Limiter
}

// NewClient builds a client from settings. The API key must be present;
// use Settings.Validate(true) before calling.
func NewClient(settings *config.Settings) (*Client, error) {
	if settings.PlacekeyAPIKey == "" {
		return nil, &EnrichmentError{Message: "API key is not configured"}
	}

	return &Client{
		httpClient: &http.Client{Timeout: settings.RequestTimeout},
		baseURL:    settings.PlacekeyBaseURL,
		apiKey:     settings.PlacekeyAPIKey,
		maxRetries: settings.MaxRetries,
		retryDelay: settings.RetryDelay,
		limiter:    rate.NewLimiter(rate.Limit(settings.RatePerSecond), settings.RateBurst),
	}, nil
}

// apiResponse is the wire shape of a single placekey answer
type apiResponse struct {
	QueryID        string   `json:"query_id,omitempty"`
	Placekey       string   `json:"placekey,omitempty"`
	MatchedAddress string   `json:"matched_address,omitempty"`
	Confidence     string   `json:"confidence,omitempty"`
	Precision      string   `json:"location_precision,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	ErrorMessage   string   `json:"error,omitempty"`
}

type batchAPIResponse struct {
	Results []apiResponse `json:"results"`
}

// Lookup resolves a single address to a placekey. API failures come back
// as a Success=false result rather than an error; only context
// cancellation and programming errors surface as errors.
func (c *Client) Lookup(ctx context.Context, query AddressQuery) (EnrichmentResult, error) {
	if err := query.Validate(); err != nil {
		return EnrichmentResult{Success: false, Error: err.Error()}, nil
	}

	body, err := json.Marshal(map[string]AddressQuery{"query": query})
	if err != nil {
		return EnrichmentResult{}, fmt.Errorf("encoding placekey query: %w", err)
	}

	raw, err := c.post(ctx, "placekeys", body)
	if err != nil {
		if ctx.Err() != nil {
			return EnrichmentResult{}, ctx.Err()
		}
		return EnrichmentResult{Success: false, Error: err.Error()}, nil
	}

	var resp apiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return EnrichmentResult{Success: false, Error: fmt.Sprintf("decoding response: %v", err)}, nil
	}
	return resultFromAPI(resp), nil
}

// LookupBatch resolves several addresses in one request. Each query gets
// a positional query_id so the returned slice lines up with the input
// even when the service reorders its answers.
func (c *Client) LookupBatch(ctx context.Context, queries []AddressQuery) ([]EnrichmentResult, error) {
	if len(queries) == 0 {
		return nil, nil
	}

	results := make([]EnrichmentResult, len(queries))
	tagged := make([]AddressQuery, 0, len(queries))
	for i := range queries {
		q := queries[i]
		q.QueryID = strconv.Itoa(i)
		if err := q.Validate(); err != nil {
			results[i] = EnrichmentResult{Success: false, Error: err.Error(), QueryID: q.QueryID}
			continue
		}
		tagged = append(tagged, q)
	}
	if len(tagged) == 0 {
		return results, nil
	}

	body, err := json.Marshal(map[string][]AddressQuery{"queries": tagged})
	if err != nil {
		return nil, fmt.Errorf("encoding placekey batch: %w", err)
	}

	raw, err := c.post(ctx, "placekeys", body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		for i := range results {
			if results[i].Error == "" {
				results[i] = EnrichmentResult{Success: false, Error: err.Error()}
			}
		}
		return results, nil
	}

	var resp batchAPIResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decoding placekey batch response: %w", err)
	}

	for _, r := range resp.Results {
		idx, convErr := strconv.Atoi(r.QueryID)
		if convErr != nil || idx < 0 || idx >= len(results) {
			continue
		}
		results[idx] = resultFromAPI(r)
	}
	return results, nil
}

// HealthCheck verifies connectivity and credentials with a known-good
// address
func (c *Client) HealthCheck(ctx context.Context) bool {
	result, err := c.Lookup(ctx, AddressQuery{
		StreetAddress:  "1 Hacker Way",
		City:           "Menlo Park",
		Region:         "CA",
		PostalCode:     "94025",
		ISOCountryCode: "US",
	})
	return err == nil && result.Success
}

// post sends one request with rate limiting and bounded retries. A 429
// backs off as retryDelay * 2^attempt; other non-200 statuses fail
// immediately with a non-retryable EnrichmentError.
func (c *Client) post(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, endpoint)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("building placekey request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("apikey", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = &EnrichmentError{Message: "request failed", Retryable: true, Err: err}
			if waitErr := c.backoff(ctx, attempt); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		payload, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				return nil, fmt.Errorf("reading placekey response: %w", readErr)
			}
			return payload, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = &EnrichmentError{StatusCode: resp.StatusCode, Message: "rate limited", Retryable: true}
			if waitErr := c.backoff(ctx, attempt); waitErr != nil {
				return nil, waitErr
			}
		default:
			return nil, &EnrichmentError{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("unexpected status: %s", bytes.TrimSpace(payload)),
			}
		}
	}

	if lastErr == nil {
		lastErr = &EnrichmentError{Message: "retries exhausted", Retryable: true}
	}
	return nil, lastErr
}

// backoff sleeps retryDelay * 2^attempt, or returns early when the
// context is cancelled
func (c *Client) backoff(ctx context.Context, attempt int) error {
	delay := c.retryDelay * time.Duration(1<<uint(attempt))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

func resultFromAPI(r apiResponse) EnrichmentResult {
	result := EnrichmentResult{
		Placekey:       r.Placekey,
		MatchedAddress: r.MatchedAddress,
		Confidence:     r.Confidence,
		Precision:      ParseLocationPrecision(r.Precision),
		QueryID:        r.QueryID,
	}

	if r.Placekey == "" {
		result.Error = r.ErrorMessage
		if result.Error == "" {
			result.Error = "no placekey returned"
		}
		return result
	}

	result.Success = true
	if r.Latitude != nil && r.Longitude != nil {
		result.Coordinates = &Coordinates{Latitude: *r.Latitude, Longitude: *r.Longitude}
	}
	return result
}
