package msa

import (
	"context"

	"mclc/internal/auth"
)

// CompleteLogin runs the chain from a successful device-code token set to a
// Session: XBL exchange, XSTS exchange, Minecraft login, profile fetch.
// Callers that want to show the device-code prompt themselves use
// BeginDeviceCode/PollDeviceCode first and then hand the result here.
func (c *Client) CompleteLogin(ctx context.Context, tokens *TokenSet) (*auth.Session, error) {
	xbl, err := c.ExchangeXBL(ctx, tokens.Token())
	if err != nil {
		return nil, err
	}

	xsts, err := c.ExchangeXSTS(ctx, xbl.Token)
	if err != nil {
		return nil, err
	}

	// The user hash travels from the XBL response; the XSTS response repeats
	// it but the identity token wants the original.
	login, err := c.LoginWithXbox(ctx, xsts.Token, xbl.UserHash)
	if err != nil {
		return nil, err
	}

	profile, err := c.FetchProfile(ctx, login.AccessToken)
	if err != nil {
		return nil, err
	}

	return NewSession(login, profile)
}

// Login runs the full chain including the device-code flow. It blocks until
// the user authorizes in their browser or the flow fails.
func (c *Client) Login(ctx context.Context) (*auth.Session, error) {
	state, err := c.BeginDeviceCode(ctx)
	if err != nil {
		return nil, err
	}

	tokens, err := c.PollDeviceCode(ctx, state)
	if err != nil {
		return nil, err
	}

	return c.CompleteLogin(ctx, tokens)
}
