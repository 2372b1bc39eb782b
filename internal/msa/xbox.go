package msa

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"mclc/internal/auth"
	"mclc/pkg/logging"
)

// XboxToken is one hop of the Xbox token chain. Two instances flow through:
// first the Xbox Live token, then the XSTS token.
type XboxToken struct {
	Token    string
	UserHash string
}

// xstsDenialCodes maps the known XErr values an XSTS 403 body can carry to
// denial reasons. New codes get added here only.
var xstsDenialCodes = map[string]auth.DenialReason{
	"2148916233": auth.DenialNoXboxAccount,
	"2148916238": auth.DenialChildAccountNeedsFamily,
	"2148916235": auth.DenialRegionBanned,
}

type xblRequest struct {
	Properties   xblProperties `json:"Properties"`
	RelyingParty string        `json:"RelyingParty"`
	TokenType    string        `json:"TokenType"`
}

type xblProperties struct {
	AuthMethod string `json:"AuthMethod"`
	SiteName   string `json:"SiteName"`
	RpsTicket  string `json:"RpsTicket"`
}

type xstsRequest struct {
	Properties   xstsProperties `json:"Properties"`
	RelyingParty string         `json:"RelyingParty"`
	TokenType    string         `json:"TokenType"`
}

type xstsProperties struct {
	SandboxID  string   `json:"SandboxId"`
	UserTokens []string `json:"UserTokens"`
}

type xboxResponse struct {
	Token         string `json:"Token"`
	DisplayClaims struct {
		Xui []struct {
			Uhs string `json:"uhs"`
		} `json:"xui"`
	} `json:"DisplayClaims"`
}

// ExchangeXBL exchanges a Microsoft access token for an Xbox Live token.
func (c *Client) ExchangeXBL(ctx context.Context, msToken *oauth2.Token) (*XboxToken, error) {
	body, err := json.Marshal(xblRequest{
		Properties: xblProperties{
			AuthMethod: "RPS",
			SiteName:   "user.auth.xboxlive.com",
			RpsTicket:  "d=" + msToken.AccessToken,
		},
		RelyingParty: "http://auth.xboxlive.com",
		TokenType:    "JWT",
	})
	if err != nil {
		return nil, err
	}

	status, respBody, err := c.postJSON(ctx, "xbl", c.endpoints.XBLAuthURL, body)
	if err != nil {
		return nil, err
	}
	if !is2xx(status) {
		return nil, &auth.ProviderError{Stage: "xbl", Status: status, Body: string(respBody)}
	}

	token, err := parseXboxResponse("xbl", respBody)
	if err != nil {
		return nil, err
	}

	logging.Debug("Xbox", "XBL token acquired")
	return token, nil
}

// ExchangeXSTS exchanges an Xbox Live token for an XSTS token. A 403 whose
// body carries one of the known XErr codes surfaces as *auth.DeniedError.
func (c *Client) ExchangeXSTS(ctx context.Context, xblToken string) (*XboxToken, error) {
	body, err := json.Marshal(xstsRequest{
		Properties: xstsProperties{
			SandboxID:  "RETAIL",
			UserTokens: []string{xblToken},
		},
		RelyingParty: "rp://api.minecraftservices.com/",
		TokenType:    "JWT",
	})
	if err != nil {
		return nil, err
	}

	status, respBody, err := c.postJSON(ctx, "xsts", c.endpoints.XSTSAuthURL, body)
	if err != nil {
		return nil, err
	}
	if !is2xx(status) {
		if status == http.StatusForbidden {
			for code, reason := range xstsDenialCodes {
				if strings.Contains(string(respBody), code) {
					return nil, &auth.DeniedError{Reason: reason, Code: code}
				}
			}
		}
		return nil, &auth.ProviderError{Stage: "xsts", Status: status, Body: string(respBody)}
	}

	token, err := parseXboxResponse("xsts", respBody)
	if err != nil {
		return nil, err
	}

	logging.Debug("Xbox", "XSTS token acquired")
	return token, nil
}

func parseXboxResponse(stage string, body []byte) (*XboxToken, error) {
	var resp xboxResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &auth.MalformedResponseError{Stage: stage, Reason: err.Error()}
	}
	if len(resp.DisplayClaims.Xui) == 0 {
		return nil, &auth.MalformedResponseError{Stage: stage, Reason: "response missing user hash"}
	}

	return &XboxToken{
		Token:    resp.Token,
		UserHash: resp.DisplayClaims.Xui[0].Uhs,
	}, nil
}
