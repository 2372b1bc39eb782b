package msa

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"mclc/internal/auth"
	"mclc/pkg/logging"
)

// LoginResult is the Minecraft-services login response.
type LoginResult struct {
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Profile is the Minecraft player profile. ID is the undashed 32-character
// hex id; it is the source of truth for the final UUID and display name.
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LoginWithXbox exchanges an XSTS token for a Minecraft access token.
func (c *Client) LoginWithXbox(ctx context.Context, xstsToken, userHash string) (*LoginResult, error) {
	body, err := json.Marshal(map[string]string{
		"identityToken": "XBL3.0 x=" + userHash + ";" + xstsToken,
	})
	if err != nil {
		return nil, err
	}

	status, respBody, err := c.postJSON(ctx, "mc_login", c.endpoints.MCLoginURL, body)
	if err != nil {
		return nil, err
	}
	if !is2xx(status) {
		return nil, &auth.ProviderError{Stage: "mc_login", Status: status, Body: string(respBody)}
	}

	var result LoginResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &auth.MalformedResponseError{Stage: "mc_login", Reason: err.Error()}
	}

	logging.Debug("Minecraft", "logged into Minecraft services")
	return &result, nil
}

// FetchProfile fetches the player profile with a bearer-authorized GET.
func (c *Client) FetchProfile(ctx context.Context, mcAccessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints.MCProfileURL, nil)
	if err != nil {
		return nil, &auth.TransportError{Stage: "mc_profile", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+mcAccessToken)

	status, respBody, err := c.do("mc_profile", req)
	if err != nil {
		return nil, err
	}
	if !is2xx(status) {
		return nil, &auth.ProviderError{Stage: "mc_profile", Status: status, Body: string(respBody)}
	}

	var profile Profile
	if err := json.Unmarshal(respBody, &profile); err != nil {
		return nil, &auth.MalformedResponseError{Stage: "mc_profile", Reason: err.Error()}
	}

	logging.Debug("Minecraft", "retrieved profile for %s", profile.Name)
	return &profile, nil
}

// NewSession assembles the normalized session from a login result and
// profile. The profile id must be exactly 32 hex characters.
func NewSession(login *LoginResult, profile *Profile) (*auth.Session, error) {
	uuid, err := auth.FormatUUID(profile.ID)
	if err != nil {
		return nil, err
	}

	session := &auth.Session{
		AccessToken: login.AccessToken,
		UUID:        uuid,
		Username:    profile.Name,
	}
	if login.ExpiresIn > 0 {
		session.ExpiresAt = time.Now().Add(time.Duration(login.ExpiresIn) * time.Second)
	}
	return session, nil
}
