package msa

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"mclc/internal/auth"
)

// Endpoints are the provider URLs the chain talks to. Tests point them at
// httptest servers; production code uses DefaultEndpoints.
type Endpoints struct {
	DeviceCodeURL string
	TokenURL      string
	XBLAuthURL    string
	XSTSAuthURL   string
	MCLoginURL    string
	MCProfileURL  string
}

// DefaultEndpoints returns the production Microsoft, Xbox, and Minecraft
// service URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		DeviceCodeURL: "https://login.microsoftonline.com/consumers/oauth2/v2.0/devicecode",
		TokenURL:      "https://login.microsoftonline.com/consumers/oauth2/v2.0/token",
		XBLAuthURL:    "https://user.auth.xboxlive.com/user/authenticate",
		XSTSAuthURL:   "https://xsts.auth.xboxlive.com/xsts/authorize",
		MCLoginURL:    "https://api.minecraftservices.com/authentication/login_with_xbox",
		MCProfileURL:  "https://api.minecraftservices.com/minecraft/profile",
	}
}

// DefaultHTTPTimeout is the default timeout for HTTP requests.
const DefaultHTTPTimeout = 30 * time.Second

// minPollInterval is the floor applied to the interval the device-code
// endpoint hands back.
const minPollInterval = 1 * time.Second

// Client drives the Microsoft authentication chain.
type Client struct {
	clientID   string
	httpClient *http.Client
	endpoints  Endpoints
	pollFloor  time.Duration
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. Tests use this to route
// requests to httptest servers.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithEndpoints overrides the provider URLs.
func WithEndpoints(e Endpoints) Option {
	return func(c *Client) {
		c.endpoints = e
	}
}

// NewClient creates a Client for the given Azure application (client) ID.
func NewClient(clientID string, opts ...Option) *Client {
	c := &Client{
		clientID:  clientID,
		endpoints: DefaultEndpoints(),
		pollFloor: minPollInterval,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}

	return c
}

// postForm issues a form-encoded POST and returns the status code and body.
// Transport failures come back as *auth.TransportError.
func (c *Client) postForm(ctx context.Context, stage, endpoint string, form string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form))
	if err != nil {
		return 0, nil, &auth.TransportError{Stage: stage, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(stage, req)
}

// postJSON issues a JSON POST with a pre-encoded body.
func (c *Client) postJSON(ctx context.Context, stage, endpoint string, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(body)))
	if err != nil {
		return 0, nil, &auth.TransportError{Stage: stage, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(stage, req)
}

func (c *Client) do(stage string, req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &auth.TransportError{Stage: stage, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &auth.TransportError{Stage: stage, Err: err}
	}

	return resp.StatusCode, body, nil
}

func is2xx(status int) bool {
	return status >= 200 && status < 300
}
