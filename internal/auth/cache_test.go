package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadSession(t *testing.T) {
	dir := t.TempDir()
	session := &Session{
		AccessToken: "mc-tok",
		UUID:        "01234567-89ab-cdef-0123-456789abcdef",
		Username:    "Steve",
		ExpiresAt:   time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, SaveSession(dir, session))

	loaded, err := LoadSession(dir)
	require.NoError(t, err)
	assert.Equal(t, session, loaded)
}

func TestLoadSessionMissing(t *testing.T) {
	_, err := LoadSession(t.TempDir())
	assert.ErrorIs(t, err, ErrAuthNotFound)
}

func TestLoadSessionCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(SessionCachePath(dir), []byte("not json"), 0600))

	_, err := LoadSession(dir)
	assert.ErrorIs(t, err, ErrAuthNotFound)
}

func TestLoadSessionEmptyFields(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SaveSession(dir, &Session{Username: "Steve"}))

	_, err := LoadSession(dir)
	assert.ErrorIs(t, err, ErrAuthNotFound)
}

func TestClearSession(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SaveSession(dir, &Session{
		AccessToken: "tok", UUID: "u", Username: "n",
	}))

	require.NoError(t, ClearSession(dir))
	_, err := os.Stat(filepath.Join(dir, sessionCacheFile))
	assert.True(t, os.IsNotExist(err))

	// Clearing again is fine.
	assert.NoError(t, ClearSession(dir))
}
