package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"mclc/pkg/logging"
)

// sessionCacheFile is the name of the single-session cache written by the
// Microsoft login flow.
const sessionCacheFile = "auth_cache.json"

// SessionCachePath returns the path of the session cache inside dir.
func SessionCachePath(dir string) string {
	return filepath.Join(dir, sessionCacheFile)
}

// SaveSession persists the session as pretty-printed JSON in dir.
// The file is written with owner-only permissions; tokens are never logged.
func SaveSession(dir string, session *Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	path := SessionCachePath(dir)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session cache: %w", err)
	}

	logging.Info("Session", "session for %s cached at %s", session.Username, path)
	return nil
}

// LoadSession reads the cached session from dir. A missing file, an
// unparsable file, or a session with any empty field yields ErrAuthNotFound.
func LoadSession(dir string) (*Session, error) {
	data, err := os.ReadFile(SessionCachePath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrAuthNotFound
		}
		return nil, fmt.Errorf("failed to read session cache: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		logging.Warn("Session", "session cache is corrupt: %v", err)
		return nil, ErrAuthNotFound
	}
	if session.AccessToken == "" || session.UUID == "" || session.Username == "" {
		return nil, ErrAuthNotFound
	}

	return &session, nil
}

// ClearSession removes the cached session. Removing an absent cache is not
// an error.
func ClearSession(dir string) error {
	err := os.Remove(SessionCachePath(dir))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
