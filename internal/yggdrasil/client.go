package yggdrasil

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"mclc/internal/auth"
	"mclc/pkg/logging"
)

// apiLocationHeader is the ALI discovery header a Yggdrasil-compatible
// server may answer with to redirect clients to its canonical API root.
const apiLocationHeader = "X-Authlib-Injector-API-Location"

// DefaultHTTPTimeout is the default timeout for HTTP requests.
const DefaultHTTPTimeout = 30 * time.Second

// Client talks to one Yggdrasil-compatible API root.
type Client struct {
	apiURL     string
	httpClient *http.Client
	selector   ProfileSelector
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

// WithProfileSelector sets the strategy for resolving an ambiguous
// multi-profile authentication response. The default fails if ambiguous.
func WithProfileSelector(selector ProfileSelector) Option {
	return func(c *Client) {
		c.selector = selector
	}
}

// NewClient creates a Client for the given API root. Trailing slashes on
// apiURL are stripped.
func NewClient(apiURL string, opts ...Option) *Client {
	c := &Client{
		apiURL:   strings.TrimRight(apiURL, "/"),
		selector: FailIfAmbiguous{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}

	return c
}

// APIURL returns the API root the client was created with.
func (c *Client) APIURL() string {
	return c.apiURL
}

// ResolveAPIURL normalizes a user-supplied server address and performs one
// ALI discovery hop: a https:// scheme is assumed when none is given, and if
// the server's response carries a non-empty X-Authlib-Injector-API-Location
// header that resolves to a different absolute URL, that URL is adopted as
// the canonical API root. Discovery failures at the HTTP level keep the
// original URL; only transport failures are errors.
func ResolveAPIURL(ctx context.Context, rawURL string, opts ...Option) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(rawURL), "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	c := NewClient(base, opts...)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base, nil)
	if err != nil {
		return "", &auth.TransportError{Stage: "ali_discovery", Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &auth.TransportError{Stage: "ali_discovery", Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return base, nil
	}

	ali := resp.Header.Get(apiLocationHeader)
	if ali == "" {
		return base, nil
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", base, err)
	}
	ref, err := url.Parse(ali)
	if err != nil {
		return "", &auth.MalformedResponseError{
			Stage:  "ali_discovery",
			Reason: fmt.Sprintf("invalid %s header %q", apiLocationHeader, ali),
		}
	}

	resolved := strings.TrimRight(baseURL.ResolveReference(ref).String(), "/")
	if resolved != base {
		logging.Info("Yggdrasil", "API location indicated: %s", resolved)
		return resolved, nil
	}
	return base, nil
}

// APIMetadata is the server's self-description, re-fetched per flow.
type APIMetadata struct {
	Meta               *ServerMeta `json:"meta,omitempty"`
	SkinDomains        []string    `json:"skinDomains,omitempty"`
	SignaturePublicKey string      `json:"signaturePublickey,omitempty"`

	// raw is the exact body the server sent, kept so the prefetched blob
	// preserves fields this struct does not model.
	raw []byte
}

// ServerMeta is the optional meta block inside APIMetadata.
type ServerMeta struct {
	ServerName            string `json:"serverName,omitempty"`
	ImplementationName    string `json:"implementationName,omitempty"`
	ImplementationVersion string `json:"implementationVersion,omitempty"`
}

// APIMetadata fetches the metadata document at the API root.
func (c *Client) APIMetadata(ctx context.Context) (*APIMetadata, error) {
	status, body, err := c.get(ctx, "metadata", c.apiURL+"/")
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &auth.ProviderError{Stage: "metadata", Status: status, Body: string(body)}
	}

	var meta APIMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, &auth.MalformedResponseError{Stage: "metadata", Reason: err.Error()}
	}
	meta.raw = body
	return &meta, nil
}

// PrefetchedMetadata returns the metadata document base64-encoded, the form
// the authlib-injector agent consumes via -Dauthlibinjector.yggdrasil.prefetched.
func (c *Client) PrefetchedMetadata(ctx context.Context) (string, error) {
	meta, err := c.APIMetadata(ctx)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(meta.raw), nil
}

// Profile is one game profile on a Yggdrasil account.
type Profile struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Properties []Property `json:"properties,omitempty"`
}

// Property is a signed or unsigned name/value pair.
type Property struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Signature string `json:"signature,omitempty"`
}

// User is the account-level user block returned when requestUser is set.
type User struct {
	ID         string     `json:"id"`
	Properties []Property `json:"properties"`
}

// AuthResult is the outcome of a successful authenticate or refresh call.
type AuthResult struct {
	AccessToken     string
	ClientToken     string
	SelectedProfile Profile
	User            *User
}

// APIError is the structured error body a Yggdrasil server returns on
// non-2xx responses: {"error", "errorMessage", "cause"}.
type APIError struct {
	Status  int
	Code    string
	Message string
	Cause   string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Cause != "" {
		return fmt.Sprintf("yggdrasil: %s: %s (cause: %s)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("yggdrasil: %s: %s", e.Code, e.Message)
}

type agentInfo struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

type authenticateRequest struct {
	Agent       agentInfo `json:"agent"`
	Username    string    `json:"username"`
	Password    string    `json:"password"`
	ClientToken string    `json:"clientToken"`
	RequestUser bool      `json:"requestUser"`
}

type refreshRequest struct {
	AccessToken     string   `json:"accessToken"`
	ClientToken     string   `json:"clientToken,omitempty"`
	RequestUser     bool     `json:"requestUser"`
	SelectedProfile *Profile `json:"selectedProfile,omitempty"`
}

type tokenPairRequest struct {
	AccessToken string `json:"accessToken"`
	ClientToken string `json:"clientToken,omitempty"`
}

type authResponse struct {
	AccessToken       string    `json:"accessToken"`
	ClientToken       string    `json:"clientToken"`
	AvailableProfiles []Profile `json:"availableProfiles"`
	SelectedProfile   *Profile  `json:"selectedProfile"`
	User              *User     `json:"user"`
}

// newClientToken generates a fresh 32-character lowercase-hex client token.
func newClientToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Authenticate performs password authentication. A fresh random client
// token is generated per call. When the server leaves the profile choice
// open, the configured ProfileSelector resolves it; a single available
// profile is auto-selected and zero profiles is a fatal error.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	resp, err := c.postAuth(ctx, "authenticate", "/authserver/authenticate", authenticateRequest{
		Agent:       agentInfo{Name: "Minecraft", Version: 1},
		Username:    username,
		Password:    password,
		ClientToken: newClientToken(),
		RequestUser: true,
	})
	if err != nil {
		return nil, err
	}

	var selected Profile
	switch {
	case resp.SelectedProfile != nil:
		selected = *resp.SelectedProfile
	case len(resp.AvailableProfiles) == 0:
		return nil, auth.ErrNoProfiles
	case len(resp.AvailableProfiles) == 1:
		selected = resp.AvailableProfiles[0]
	default:
		selected, err = c.selector.SelectProfile(resp.AvailableProfiles)
		if err != nil {
			return nil, err
		}
	}

	logging.Info("Yggdrasil", "authenticated %s, selected profile %s", username, selected.Name)
	return &AuthResult{
		AccessToken:     resp.AccessToken,
		ClientToken:     resp.ClientToken,
		SelectedProfile: selected,
		User:            resp.User,
	}, nil
}

// Refresh exchanges a token pair for a fresh one. All other account fields
// are carried over unchanged by the caller.
func (c *Client) Refresh(ctx context.Context, accessToken, clientToken string, selected *Profile) (*AuthResult, error) {
	resp, err := c.postAuth(ctx, "refresh", "/authserver/refresh", refreshRequest{
		AccessToken:     accessToken,
		ClientToken:     clientToken,
		RequestUser:     true,
		SelectedProfile: selected,
	})
	if err != nil {
		return nil, err
	}

	result := &AuthResult{
		AccessToken: resp.AccessToken,
		ClientToken: resp.ClientToken,
		User:        resp.User,
	}
	if resp.SelectedProfile != nil {
		result.SelectedProfile = *resp.SelectedProfile
	}

	logging.Info("Yggdrasil", "token refreshed")
	return result, nil
}

// Validate reports whether the token pair is still usable. Every failure
// mode, transport failures included, collapses to false; it is a yes/no
// gate before deciding to re-authenticate, never an error source.
func (c *Client) Validate(ctx context.Context, accessToken, clientToken string) bool {
	return c.postTokenPair(ctx, "/authserver/validate", accessToken, clientToken)
}

// Invalidate revokes the token pair. Same suppression-of-errors policy as
// Validate.
func (c *Client) Invalidate(ctx context.Context, accessToken, clientToken string) bool {
	return c.postTokenPair(ctx, "/authserver/invalidate", accessToken, clientToken)
}

func (c *Client) postAuth(ctx context.Context, stage, path string, payload interface{}) (*authResponse, error) {
	status, body, err := c.postJSON(ctx, stage, c.apiURL+path, payload)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, parseAPIError(stage, status, body)
	}

	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &auth.MalformedResponseError{Stage: stage, Reason: err.Error()}
	}
	return &resp, nil
}

func (c *Client) postTokenPair(ctx context.Context, path, accessToken, clientToken string) bool {
	status, _, err := c.postJSON(ctx, "token_check", c.apiURL+path, tokenPairRequest{
		AccessToken: accessToken,
		ClientToken: clientToken,
	})
	if err != nil {
		logging.Debug("Yggdrasil", "token check failed: %v", err)
		return false
	}
	return status >= 200 && status < 300
}

// parseAPIError prefers the provider's structured error body over the raw
// status/body pair.
func parseAPIError(stage string, status int, body []byte) error {
	var apiErr struct {
		Error        string `json:"error"`
		ErrorMessage string `json:"errorMessage"`
		Cause        string `json:"cause"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		return &APIError{
			Status:  status,
			Code:    apiErr.Error,
			Message: apiErr.ErrorMessage,
			Cause:   apiErr.Cause,
		}
	}
	return &auth.ProviderError{Stage: stage, Status: status, Body: string(body)}
}

func (c *Client) postJSON(ctx context.Context, stage, endpoint string, payload interface{}) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return 0, nil, &auth.TransportError{Stage: stage, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(stage, req)
}

func (c *Client) get(ctx context.Context, stage, endpoint string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, &auth.TransportError{Stage: stage, Err: err}
	}
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
