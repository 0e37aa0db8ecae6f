// Package probe implements bounded-time checks for the dashboard's
// dependent services: the API process, the MCP bridge process, and the
// topology data endpoints.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultAPIBaseURL is where the dashboard API process listens.
	DefaultAPIBaseURL = "http://127.0.0.1:11111"

	// DefaultBridgeURL is where the MCP bridge process listens.
	DefaultBridgeURL = "http://127.0.0.1:9001"
)

// Required top-level keys for the topology payloads. A 2xx response missing
// any of them is a shape failure, not a success.
var (
	topologyRawKeys   = []string{"gateways", "switches", "aps", "clients", "links"}
	topologySceneKeys = []string{"nodes", "links", "triageHints"}
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the probe client.
type ClientConfig struct {
	// APIBaseURL is the dashboard API base URL (defaults to DefaultAPIBaseURL).
	APIBaseURL string

	// BridgeURL is the MCP bridge base URL (defaults to DefaultBridgeURL).
	BridgeURL string

	// HTTPClient is the HTTP client to use. If nil, a client with Timeout
	// is created.
	HTTPClient HTTPDoer

	// Timeout for individual probe requests (default: 30s). The monitor
	// additionally bounds each probe with its own context deadline.
	Timeout time.Duration
}

// Client probes the dashboard's dependent services over HTTP.
type Client struct {
	apiBaseURL string
	bridgeURL  string
	httpClient HTTPDoer
}

// NewClient creates a probe client.
func NewClient(cfg ClientConfig) *Client {
	apiBaseURL := cfg.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = DefaultAPIBaseURL
	}
	bridgeURL := cfg.BridgeURL
	if bridgeURL == "" {
		bridgeURL = DefaultBridgeURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		apiBaseURL: strings.TrimSuffix(apiBaseURL, "/"),
		bridgeURL:  strings.TrimSuffix(bridgeURL, "/"),
		httpClient: httpClient,
	}
}

// CheckAPI probes the root application endpoint: success iff 2xx.
func (c *Client) CheckAPI(ctx context.Context) error {
	endpoint := c.apiBaseURL + "/"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.expectOK(req, endpoint)
}

// CheckBridge probes the bridge process with a no-op tool-listing call:
// success iff 2xx.
func (c *Client) CheckBridge(ctx context.Context) error {
	endpoint := c.bridgeURL + "/"
	payload := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.expectOK(req, endpoint)
}

// CheckTopologyRaw probes the raw topology endpoint and validates that the
// decoded payload carries all required device collections.
func (c *Client) CheckTopologyRaw(ctx context.Context) error {
	return c.checkShape(ctx, c.apiBaseURL+"/api/topology", topologyRawKeys)
}

// CheckTopologyScene probes the scene topology endpoint and validates the
// render-ready payload shape.
func (c *Client) CheckTopologyScene(ctx context.Context) error {
	return c.checkShape(ctx, c.apiBaseURL+"/api/topology/scene", topologySceneKeys)
}

// expectOK executes the request and requires a 2xx response.
func (c *Client) expectOK(req *http.Request, endpoint string) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classify(endpoint, err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}
	return nil
}

// checkShape fetches the endpoint and verifies every required top-level key
// is present in the decoded JSON object.
func (c *Client) checkShape(ctx context.Context, endpoint string, requiredKeys []string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classify(endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode response from %s: %w", endpoint, err)
	}

	var missing []string
	for _, key := range requiredKeys {
		if _, ok := payload[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &ShapeError{Endpoint: endpoint, MissingKeys: missing}
	}
	return nil
}
