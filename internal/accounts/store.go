package accounts

import (
	"encoding/json"
	"fmt"
	"strings"

	"mclc/pkg/logging"
)

// Account is one persisted Yggdrasil login.
type Account struct {
	// APIURL is the resolved Yggdrasil API root.
	APIURL string `json:"api_url"`
	// ServerName is the server's self-reported name, when metadata carried one.
	ServerName string `json:"server_name,omitempty"`
	// Identifier is the email or username the user logged in with.
	Identifier string `json:"identifier"`
	// UUID is the selected profile's id in dashed form.
	UUID string `json:"uuid"`
	// Name is the selected profile's display name.
	Name string `json:"name"`

	AccessToken string `json:"access_token"`
	ClientToken string `json:"client_token"`

	// UserID is the account-level user id in dashed form.
	UserID string `json:"user_id"`
	// UserProperties is the user's property list, serialized as JSON.
	UserProperties string `json:"user_properties"`
}

// DisplayName renders "Name (ServerName)", falling back to the API URL when
// the server did not report a name.
func (a *Account) DisplayName() string {
	if a.ServerName != "" {
		return fmt.Sprintf("%s (%s)", a.Name, a.ServerName)
	}
	return fmt.Sprintf("%s (%s)", a.Name, a.APIURL)
}

// NormalizeAPIURL strips trailing slashes; both sides of every key
// comparison go through it.
func NormalizeAPIURL(apiURL string) string {
	return strings.TrimRight(apiURL, "/")
}

func sameKey(a *Account, identifier, apiURL string) bool {
	return a.Identifier == identifier && NormalizeAPIURL(a.APIURL) == NormalizeAPIURL(apiURL)
}

// Persistence is the byte-level backend the store writes through. The
// default implementation is FileStore; tests substitute an in-memory one.
type Persistence interface {
	// Load returns the raw persisted collection. An absent collection is
	// (nil, nil), not an error.
	Load() ([]byte, error)
	// Save replaces the persisted collection.
	Save(data []byte) error
}

// Store deduplicates and persists Account records.
type Store struct {
	backend Persistence
}

// NewStore creates a Store over the given backend.
func NewStore(backend Persistence) *Store {
	return &Store{backend: backend}
}

// Load reads the full ordered collection. An absent backend file yields an
// empty slice.
func (s *Store) Load() ([]Account, error) {
	data, err := s.backend.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	if len(data) == 0 {
		return []Account{}, nil
	}

	var accounts []Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse accounts: %w", err)
	}
	return accounts, nil
}

// Upsert replaces any record with the same (identifier, normalized API URL)
// key and appends the new record, rewriting the whole collection.
func (s *Store) Upsert(account Account) error {
	accounts, err := s.Load()
	if err != nil {
		return err
	}

	kept := accounts[:0]
	for _, a := range accounts {
		if !sameKey(&a, account.Identifier, account.APIURL) {
			kept = append(kept, a)
		}
	}
	kept = append(kept, account)

	if err := s.save(kept); err != nil {
		return err
	}

	logging.Info("Store", "saved account %s for %s", account.Identifier, NormalizeAPIURL(account.APIURL))
	return nil
}

// Find returns the record matching identifier (case-sensitive) and API URL
// (trailing slashes ignored), or nil when absent.
func (s *Store) Find(identifier, apiURL string) (*Account, error) {
	accounts, err := s.Load()
	if err != nil {
		return nil, err
	}

	for i := range accounts {
		if sameKey(&accounts[i], identifier, apiURL) {
			return &accounts[i], nil
		}
	}
	return nil, nil
}

// Remove deletes the record with the given key. It reports whether a record
// was removed.
func (s *Store) Remove(identifier, apiURL string) (bool, error) {
	accounts, err := s.Load()
	if err != nil {
		return false, err
	}

	kept := accounts[:0]
	removed := false
	for _, a := range accounts {
		if sameKey(&a, identifier, apiURL) {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	if !removed {
		return false, nil
	}

	return true, s.save(kept)
}

func (s *Store) save(accounts []Account) error {
	data, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal accounts: %w", err)
	}
	if err := s.backend.Save(data); err != nil {
		return fmt.Errorf("failed to persist accounts: %w", err)
	}
	return nil
}
