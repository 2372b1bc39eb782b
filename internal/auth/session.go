package auth

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Session is the normalized credential handed to the launch component.
// UUID is always in the dashed 8-4-4-4-12 form regardless of which provider
// produced it.
type Session struct {
	AccessToken string `json:"access_token"`
	UUID        string `json:"uuid"`
	Username    string `json:"username"`
	// ExpiresAt is when the access token stops working. A zero value means
	// the provider did not report a lifetime.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Token converts the session to an oauth2.Token for expiry bookkeeping.
func (s *Session) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: s.AccessToken,
		TokenType:   "Bearer",
		Expiry:      s.ExpiresAt,
	}
}

// Valid reports whether the session's token is present and not expired.
// Sessions without a recorded lifetime count as valid.
func (s *Session) Valid() bool {
	return s.Token().Valid()
}

// undashedUUIDLength is the length of the profile ids both providers return.
const undashedUUIDLength = 32

// FormatUUID converts a 32-character undashed hex id to the dashed
// 8-4-4-4-12 form. Anything else, including an already-dashed UUID, is
// rejected with a MalformedResponseError.
func FormatUUID(id string) (string, error) {
	if len(id) != undashedUUIDLength || !isHex(id) {
		return "", &MalformedResponseError{
			Stage:  "profile",
			Reason: fmt.Sprintf("profile id %q is not a 32-character hex string", id),
		}
	}
	return strings.Join([]string{
		id[0:8],
		id[8:12],
		id[12:16],
		id[16:20],
		id[20:32],
	}, "-"), nil
}

// DashUUID is the lenient variant used for Yggdrasil ids: a 32-character hex
// id is dashed, anything else (including ids that already carry dashes) is
// returned unchanged.
func DashUUID(id string) string {
	dashed, err := FormatUUID(id)
	if err != nil {
		return id
	}
	return dashed
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
