// Package registry wraps the upstream HTTP registries (project, facility,
// user, product, boundary) behind cache-aside clients.
//
// Error taxonomy: a transport failure, timeout or 5xx surfaces as
// sentinel.ErrUnavailable; an upstream that explicitly reports the entity as
// absent surfaces as sentinel.ErrNotFound. The two are never conflated —
// transformers fall back the same way but log and count them separately.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"enricher/pkg/platform/circuit"
	"enricher/pkg/platform/sentinel"
)

// ServiceClient is the shared HTTP layer under every registry client. Calls
// run through a per-host circuit breaker; an open breaker short-circuits to
// ErrUnavailable without touching the network.
type ServiceClient struct {
	http    *http.Client
	auth    *TokenSource
	timeout time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	breakers map[string]*circuit.Breaker
}

// NewServiceClient builds the shared client. timeout bounds each upstream
// call; exceeding it is ErrUnavailable for that call only.
func NewServiceClient(timeout time.Duration, auth *TokenSource, logger *slog.Logger) *ServiceClient {
	return &ServiceClient{
		http:     &http.Client{},
		auth:     auth,
		timeout:  timeout,
		logger:   logger,
		breakers: make(map[string]*circuit.Breaker),
	}
}

// NewRequestInfo builds the request-context envelope the registries require.
func (c *ServiceClient) NewRequestInfo() (RequestInfo, error) {
	token, err := c.auth.Token()
	if err != nil {
		return RequestInfo{}, err
	}
	return RequestInfo{
		APIID:     "enricher",
		Ver:       "1.0",
		Ts:        time.Now().UnixMilli(),
		MsgID:     uuid.NewString(),
		AuthToken: token,
		UserInfo:  UserInfo{UUID: servicePrincipal},
	}, nil
}

// Post issues a JSON POST to host+path with the given query string, decoding
// the 2xx response into out.
func (c *ServiceClient) Post(ctx context.Context, host, path string, query url.Values, body, out any) error {
	breaker := c.breaker(host)
	if breaker.IsOpen() {
		return fmt.Errorf("circuit open for %s: %w", host, sentinel.ErrUnavailable)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request for %s%s: %w", host, path, err)
	}

	target := host + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request for %s: %w", target, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.recordFailure(breaker, host)
		return fmt.Errorf("call %s: %v: %w", target, err, sentinel.ErrUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		breaker.RecordSuccess()
		return fmt.Errorf("%s: %w", target, sentinel.ErrNotFound)
	case resp.StatusCode >= 400:
		c.recordFailure(breaker, host)
		return fmt.Errorf("call %s: status %d: %w", target, resp.StatusCode, sentinel.ErrUnavailable)
	}

	if _, change := breaker.RecordSuccess(); change.Closed {
		c.logger.Info("circuit closed", "host", host)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", target, err)
	}
	return nil
}

func (c *ServiceClient) breaker(host string) *circuit.Breaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.breakers[host]
	if !ok {
		b = circuit.New(host, circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2))
		c.breakers[host] = b
	}
	return b
}

func (c *ServiceClient) recordFailure(breaker *circuit.Breaker, host string) {
	if _, change := breaker.RecordFailure(); change.Opened {
		c.logger.Warn("circuit opened", "host", host)
	}
}

// searchQuery builds the standard pagination + tenant query string.
func searchQuery(tenantID string, limit int) url.Values {
	q := url.Values{}
	q.Set("tenantId", tenantID)
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", "0")
	return q
}
