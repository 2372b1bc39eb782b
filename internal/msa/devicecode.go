package msa

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/oauth2"

	"mclc/internal/auth"
	"mclc/pkg/logging"
)

// deviceCodeScope is the fixed scope requested for the device-code grant.
const deviceCodeScope = "XboxLive.signin offline_access"

// DeviceCodeState is the outcome of the device-code request. It is consumed
// only by Poll and never persisted.
type DeviceCodeState struct {
	DeviceCode      string
	UserCode        string
	VerificationURI string
	// ExpiresAt is the absolute deadline after which the code is dead.
	ExpiresAt time.Time
	// Interval is how long to wait between token polls.
	Interval time.Duration
	// Message is the provider's ready-made "go to <uri> and enter <code>" text.
	Message string
}

// TokenSet is the Microsoft token response produced once polling succeeds.
type TokenSet struct {
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Token converts the set to an oauth2.Token for downstream plumbing.
func (t *TokenSet) Token() *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
	}
	if t.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return token
}

type deviceCodeResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int64  `json:"expires_in"`
	Interval        int64  `json:"interval"`
	Message         string `json:"message"`
}

// Known error codes from the token endpoint while the user has not finished
// authorizing. Kept in one place so new codes get added here only.
const (
	codeAuthorizationPending = "authorization_pending"
	codeSlowDown             = "slow_down"
	codeExpiredToken         = "expired_token"
)

// errStillPending marks poll outcomes that mean "keep waiting". If the poll
// window closes while this is the latest outcome, the flow reports
// auth.ErrTimeout.
var errStillPending = errors.New("authorization pending")

// BeginDeviceCode requests a device code for the configured client ID.
func (c *Client) BeginDeviceCode(ctx context.Context) (*DeviceCodeState, error) {
	form := url.Values{
		"client_id": {c.clientID},
		"scope":     {deviceCodeScope},
	}

	status, body, err := c.postForm(ctx, "device_code", c.endpoints.DeviceCodeURL, form.Encode())
	if err != nil {
		return nil, err
	}
	if !is2xx(status) {
		return nil, &auth.ProviderError{Stage: "device_code", Status: status, Body: string(body)}
	}

	var resp deviceCodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &auth.MalformedResponseError{Stage: "device_code", Reason: err.Error()}
	}

	interval := time.Duration(resp.Interval) * time.Second
	if interval < c.pollFloor {
		interval = c.pollFloor
	}

	logging.Debug("DeviceCode", "device code issued, expires in %ds, poll interval %s", resp.ExpiresIn, interval)

	return &DeviceCodeState{
		DeviceCode:      resp.DeviceCode,
		UserCode:        resp.UserCode,
		VerificationURI: resp.VerificationURI,
		ExpiresAt:       time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
		Interval:        interval,
		Message:         resp.Message,
	}, nil
}

// PollDeviceCode polls the token endpoint until the user authorizes, the
// code expires, or ctx is cancelled. The loop sleeps state.Interval between
// attempts and never outlives state.ExpiresAt.
func (c *Client) PollDeviceCode(ctx context.Context, state *DeviceCodeState) (*TokenSet, error) {
	window := time.Until(state.ExpiresAt)
	if window <= 0 {
		return nil, auth.ErrTimeout
	}

	form := url.Values{
		"grant_type":  {"urn:ietf:params:oauth:grant-type:device_code"},
		"device_code": {state.DeviceCode},
		"client_id":   {c.clientID},
	}
	encoded := form.Encode()

	var tokens TokenSet
	backoff := retry.WithMaxDuration(window, retry.NewConstant(state.Interval))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		status, body, err := c.postForm(ctx, "token_poll", c.endpoints.TokenURL, encoded)
		if err != nil {
			return err
		}

		if is2xx(status) {
			if err := json.Unmarshal(body, &tokens); err != nil {
				return &auth.MalformedResponseError{Stage: "token_poll", Reason: err.Error()}
			}
			return nil
		}

		if status == http.StatusBadRequest {
			var errResp struct {
				Error string `json:"error"`
			}
			if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
				switch errResp.Error {
				case codeAuthorizationPending:
					logging.Debug("DeviceCode", "waiting for user to authorize")
					return retry.RetryableError(errStillPending)
				case codeSlowDown:
					// The interval is kept as-is; the provider still gets one
					// request per interval, which it tolerates.
					logging.Debug("DeviceCode", "provider requested slower polling")
					return retry.RetryableError(errStillPending)
				case codeExpiredToken:
					return auth.ErrExpired
				default:
					return &auth.ProviderError{Stage: "token_poll", Status: status, Body: string(body)}
				}
			}
		}

		return &auth.ProviderError{Stage: "token_poll", Status: status, Body: string(body)}
	})

	if err != nil {
		if errors.Is(err, errStillPending) {
			// The window closed with the authorization still pending.
			return nil, auth.ErrTimeout
		}
		return nil, err
	}

	logging.Info("DeviceCode", "Microsoft account login successful")
	return &tokens, nil
}
