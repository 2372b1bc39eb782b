package yggdrasil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mclc/internal/auth"
)

func TestAccountFromAuth(t *testing.T) {
	result := &AuthResult{
		AccessToken: "acc-tok",
		ClientToken: "cli-tok",
		SelectedProfile: Profile{
			ID:   "0123456789abcdef0123456789abcdef",
			Name: "Steve",
		},
		User: &User{
			ID: "fedcba9876543210fedcba9876543210",
			Properties: []Property{
				{Name: "preferredLanguage", Value: "en"},
			},
		},
	}

	account, err := AccountFromAuth("https://auth.example.com/api/yggdrasil/", "Example Server", "steve@example.com", result)
	require.NoError(t, err)

	assert.Equal(t, "https://auth.example.com/api/yggdrasil", account.APIURL)
	assert.Equal(t, "Example Server", account.ServerName)
	assert.Equal(t, "steve@example.com", account.Identifier)
	assert.Equal(t, "01234567-89ab-cdef-0123-456789abcdef", account.UUID)
	assert.Equal(t, "Steve", account.Name)
	assert.Equal(t, "acc-tok", account.AccessToken)
	assert.Equal(t, "cli-tok", account.ClientToken)
	assert.Equal(t, "fedcba98-7654-3210-fedc-ba9876543210", account.UserID)
	assert.JSONEq(t, `[{"name":"preferredLanguage","value":"en"}]`, account.UserProperties)
}

func TestAccountFromAuth_NilPropertiesBecomeEmptyArray(t *testing.T) {
	result := &AuthResult{
		AccessToken:     "acc-tok",
		ClientToken:     "cli-tok",
		SelectedProfile: Profile{ID: "0123456789abcdef0123456789abcdef", Name: "Steve"},
		User:            &User{ID: "fedcba9876543210fedcba9876543210"},
	}

	account, err := AccountFromAuth("https://auth.example.com", "", "steve", result)
	require.NoError(t, err)
	assert.Equal(t, "[]", account.UserProperties)
}

func TestAccountFromAuth_MissingUser(t *testing.T) {
	result := &AuthResult{
		AccessToken:     "acc-tok",
		SelectedProfile: Profile{ID: "0123456789abcdef0123456789abcdef", Name: "Steve"},
	}

	_, err := AccountFromAuth("https://auth.example.com", "", "steve", result)
	var malformed *auth.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "authenticate", malformed.Stage)
}

func TestFailIfAmbiguous(t *testing.T) {
	_, err := FailIfAmbiguous{}.SelectProfile([]Profile{
		{Name: "First"},
		{Name: "Second"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "First")
	assert.Contains(t, err.Error(), "Second")
}
