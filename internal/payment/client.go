package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// rejectionError is a 4xx answer from the gateway. The request got through
// and was refused, so it must not count toward opening the breaker.
type rejectionError struct {
	status int
	body   []byte
}

func (e *rejectionError) Error() string {
	return fmt.Sprintf("gateway rejected request: %d: %s", e.status, e.body)
}

// gatewayClient is the HTTP transport both backends share. Calls run
// through a circuit breaker so a misbehaving gateway sheds load instead of
// tying up every checkout until timeout.
type gatewayClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func newGatewayClient(name, baseURL, apiKey string) *gatewayClient {
	settings := gobreaker.Settings{
		Name:     name,
		Interval: time.Minute,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var rejection *rejectionError
			return err == nil || errors.As(err, &rejection)
		},
	}
	return &gatewayClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

// post sends a JSON request and returns the response body. idempotencyKey,
// when set, is forwarded so a retried call returns the original resource.
func (c *gatewayClient) post(ctx context.Context, path, idempotencyKey string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode gateway request: %w", err)
	}

	return c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		if idempotencyKey != "" {
			req.Header.Set("Idempotency-Key", idempotencyKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("gateway returned %d", resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return nil, &rejectionError{status: resp.StatusCode, body: data}
		}
		return data, nil
	})
}
