package msa

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mclc/internal/auth"
)

func TestLoginWithXbox(t *testing.T) {
	t.Run("builds the XBL3.0 identity token", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/mclogin", r.URL.Path)

			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "XBL3.0 x=hash-1;xsts-tok", req["identityToken"])

			writeJSON(w, http.StatusOK, map[string]interface{}{
				"username":     "internal-name",
				"access_token": "mc-tok",
				"token_type":   "Bearer",
				"expires_in":   86400,
			})
		}))

		result, err := client.LoginWithXbox(context.Background(), "xsts-tok", "hash-1")
		require.NoError(t, err)
		assert.Equal(t, "mc-tok", result.AccessToken)
	})

	t.Run("non-2xx is a provider error", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no entitlement", http.StatusForbidden)
		}))

		_, err := client.LoginWithXbox(context.Background(), "xsts-tok", "hash-1")
		var provider *auth.ProviderError
		assert.ErrorAs(t, err, &provider)
	})
}

func TestFetchProfile(t *testing.T) {
	t.Run("sends bearer token", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/profile", r.URL.Path)
			assert.Equal(t, "Bearer mc-tok", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]string{
				"id":   "0123456789abcdef0123456789abcdef",
				"name": "Steve",
			})
		}))

		profile, err := client.FetchProfile(context.Background(), "mc-tok")
		require.NoError(t, err)
		assert.Equal(t, "Steve", profile.Name)
	})

	t.Run("non-2xx is a provider error", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no profile", http.StatusNotFound)
		}))

		_, err := client.FetchProfile(context.Background(), "mc-tok")
		var provider *auth.ProviderError
		assert.ErrorAs(t, err, &provider)
	})
}

func TestNewSession(t *testing.T) {
	t.Run("uses the profile for uuid and name", func(t *testing.T) {
		session, err := NewSession(
			&LoginResult{AccessToken: "mc-tok"},
			&Profile{ID: "0123456789abcdef0123456789abcdef", Name: "Steve"},
		)
		require.NoError(t, err)
		assert.Equal(t, &auth.Session{
			AccessToken: "mc-tok",
			UUID:        "01234567-89ab-cdef-0123-456789abcdef",
			Username:    "Steve",
		}, session)
	})

	t.Run("records the token lifetime", func(t *testing.T) {
		session, err := NewSession(
			&LoginResult{AccessToken: "mc-tok", ExpiresIn: 86400},
			&Profile{ID: "0123456789abcdef0123456789abcdef", Name: "Steve"},
		)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), session.ExpiresAt, time.Minute)
		assert.True(t, session.Valid())
	})

	t.Run("bad profile id is malformed", func(t *testing.T) {
		_, err := NewSession(&LoginResult{AccessToken: "t"}, &Profile{ID: "short", Name: "Steve"})
		var malformed *auth.MalformedResponseError
		assert.ErrorAs(t, err, &malformed)
	})
}

// TestFullLogin walks the whole chain against mocked endpoints: device code,
// one pending poll, token, XBL, XSTS, Minecraft login, profile.
func TestFullLogin(t *testing.T) {
	var polls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/devicecode", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"device_code":      "d1",
			"user_code":        "ABC-DEF",
			"verification_uri": "https://x",
			"expires_in":       900,
			"interval":         0, // floored to 1s by Begin; overridden below
			"message":          "go to https://x and enter ABC-DEF",
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&polls, 1) == 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "authorization_pending"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"token_type":   "Bearer",
			"expires_in":   3600,
			"scope":        "XboxLive.signin",
			"access_token": "msa-tok",
		})
	})
	mux.HandleFunc("/xbl", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, xboxSuccessBody("xbl-tok", "hash-1"))
	})
	mux.HandleFunc("/xsts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, xboxSuccessBody("xsts-tok", "hash-1"))
	})
	mux.HandleFunc("/mclogin", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"username":     "abc",
			"access_token": "mc-tok",
		})
	})
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"id":   "0123456789abcdef0123456789abcdef",
			"name": "Steve",
		})
	})

	client, _ := newTestClient(t, mux)

	state, err := client.BeginDeviceCode(context.Background())
	require.NoError(t, err)
	state.Interval = 10 * time.Millisecond // keep the test fast

	tokens, err := client.PollDeviceCode(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, "msa-tok", tokens.AccessToken)

	session, err := client.CompleteLogin(context.Background(), tokens)
	require.NoError(t, err)

	assert.Equal(t, &auth.Session{
		AccessToken: "mc-tok",
		UUID:        "01234567-89ab-cdef-0123-456789abcdef",
		Username:    "Steve",
	}, session)
	assert.EqualValues(t, 2, atomic.LoadInt32(&polls))
}

// TestChainAbortsOnStageFailure injects a failure at the XSTS stage and
// asserts the later stages never run.
func TestChainAbortsOnStageFailure(t *testing.T) {
	var mcCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/xbl", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, xboxSuccessBody("xbl-tok", "hash-1"))
	})
	mux.HandleFunc("/xsts", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/mclogin", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&mcCalls, 1)
	})
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&mcCalls, 1)
	})

	client, _ := newTestClient(t, mux)

	_, err := client.CompleteLogin(context.Background(), &TokenSet{AccessToken: "msa-tok"})
	var provider *auth.ProviderError
	require.ErrorAs(t, err, &provider)
	assert.Equal(t, "xsts", provider.Stage)
	assert.Zero(t, atomic.LoadInt32(&mcCalls))
}
