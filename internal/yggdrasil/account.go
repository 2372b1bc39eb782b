package yggdrasil

import (
	"encoding/json"
	"fmt"

	"mclc/internal/accounts"
	"mclc/internal/auth"
)

// AccountFromAuth builds the persistable account record from a successful
// authenticate call. All undashed 32-hex ids are converted to dashed form
// here so the store only ever sees canonical UUIDs.
func AccountFromAuth(apiURL, serverName, identifier string, result *AuthResult) (*accounts.Account, error) {
	if result.User == nil {
		// requestUser:true was sent, so a conforming server always includes it.
		return nil, &auth.MalformedResponseError{Stage: "authenticate", Reason: "user info not available"}
	}

	props := result.User.Properties
	if props == nil {
		props = []Property{}
	}
	serialized, err := json.Marshal(props)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize user properties: %w", err)
	}

	return &accounts.Account{
		APIURL:         accounts.NormalizeAPIURL(apiURL),
		ServerName:     serverName,
		Identifier:     identifier,
		UUID:           auth.DashUUID(result.SelectedProfile.ID),
		Name:           result.SelectedProfile.Name,
		AccessToken:    result.AccessToken,
		ClientToken:    result.ClientToken,
		UserID:         auth.DashUUID(result.User.ID),
		UserProperties: string(serialized),
	}, nil
}
