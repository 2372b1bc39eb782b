package accounts

import (
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Persistence for store tests.
type memStore struct {
	data    []byte
	loadErr error
	saveErr error
}

func (m *memStore) Load() ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data, nil
}

func (m *memStore) Save(data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = data
	return nil
}

func testAccount(identifier, apiURL, accessToken string) Account {
	return Account{
		APIURL:         apiURL,
		Identifier:     identifier,
		UUID:           "01234567-89ab-cdef-0123-456789abcdef",
		Name:           "Steve",
		AccessToken:    accessToken,
		ClientToken:    "ct-1",
		UserID:         "11234567-89ab-cdef-0123-456789abcdef",
		UserProperties: "[]",
	}
}

func TestStoreLoadEmpty(t *testing.T) {
	store := NewStore(&memStore{})

	accounts, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestStoreUpsertAppends(t *testing.T) {
	store := NewStore(&memStore{})

	require.NoError(t, store.Upsert(testAccount("a@x.com", "https://one.example.com", "t1")))
	require.NoError(t, store.Upsert(testAccount("b@x.com", "https://two.example.com", "t2")))

	accounts, err := store.Load()
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	// Insertion order is preserved.
	assert.Equal(t, "a@x.com", accounts[0].Identifier)
	assert.Equal(t, "b@x.com", accounts[1].Identifier)
}

func TestStoreUpsertReplacesSameKey(t *testing.T) {
	store := NewStore(&memStore{})

	require.NoError(t, store.Upsert(testAccount("a@x.com", "https://auth.example.com", "old-token")))
	// Same identity, trailing slash on the URL, new tokens.
	updated := testAccount("a@x.com", "https://auth.example.com/", "new-token")
	updated.ClientToken = "ct-2"
	require.NoError(t, store.Upsert(updated))

	accounts, err := store.Load()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "new-token", accounts[0].AccessToken)
	assert.Equal(t, "ct-2", accounts[0].ClientToken)
}

func TestStoreFind(t *testing.T) {
	store := NewStore(&memStore{})
	require.NoError(t, store.Upsert(testAccount("a@x.com", "https://auth.example.com", "t1")))

	t.Run("trailing slash is ignored", func(t *testing.T) {
		found, err := store.Find("a@x.com", "https://auth.example.com/")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "t1", found.AccessToken)
	})

	t.Run("identifier is case-sensitive", func(t *testing.T) {
		found, err := store.Find("A@X.COM", "https://auth.example.com")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("different url does not match", func(t *testing.T) {
		found, err := store.Find("a@x.com", "https://other.example.com")
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestStoreRemove(t *testing.T) {
	store := NewStore(&memStore{})
	require.NoError(t, store.Upsert(testAccount("a@x.com", "https://auth.example.com", "t1")))

	removed, err := store.Remove("a@x.com", "https://auth.example.com/")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Remove("a@x.com", "https://auth.example.com")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestStoreLoadCorrupt(t *testing.T) {
	store := NewStore(&memStore{data: []byte("not json")})

	_, err := store.Load()
	assert.Error(t, err)
}

func TestStorePropagatesBackendErrors(t *testing.T) {
	boom := errors.New("disk full")

	_, err := NewStore(&memStore{loadErr: boom}).Load()
	assert.ErrorIs(t, err, boom)

	err = NewStore(&memStore{saveErr: boom}).Upsert(testAccount("a@x.com", "u", "t"))
	assert.ErrorIs(t, err, boom)
}

func TestAccountDisplayName(t *testing.T) {
	a := testAccount("a@x.com", "https://auth.example.com", "t")
	assert.Equal(t, "Steve (https://auth.example.com)", a.DisplayName())

	a.ServerName = "My Server"
	assert.Equal(t, "Steve (My Server)", a.DisplayName())
}

func TestFileStore(t *testing.T) {
	t.Run("missing file loads as nil", func(t *testing.T) {
		fs := NewFileStore(t.TempDir())
		data, err := fs.Load()
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("round trip", func(t *testing.T) {
		fs := NewFileStore(t.TempDir())
		require.NoError(t, fs.Save([]byte(`[{"identifier":"a"}]`)))

		data, err := fs.Load()
		require.NoError(t, err)
		assert.JSONEq(t, `[{"identifier":"a"}]`, string(data))

		info, err := os.Stat(fs.Path())
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("store over file backend writes pretty JSON", func(t *testing.T) {
		fs := NewFileStore(t.TempDir())
		store := NewStore(fs)
		require.NoError(t, store.Upsert(testAccount("a@x.com", "https://auth.example.com", "t1")))

		data, err := os.ReadFile(fs.Path())
		require.NoError(t, err)
		assert.Contains(t, string(data), "\n  ")

		var parsed []Account
		require.NoError(t, json.Unmarshal(data, &parsed))
		require.Len(t, parsed, 1)
		assert.Equal(t, "a@x.com", parsed[0].Identifier)
	})
}
