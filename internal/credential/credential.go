package credential

import "errors"

// Well-known storage keys. The bearer token and the promotional banner
// flag share the storage mechanism but live under separate keys.
const (
	KeyToken           = "session-token"
	KeyBannerDismissed = "banner-dismissed"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("credential not found")

// Store is the persisted-credential interface. The production
// implementation is backed by the system keyring; tests substitute an
// in-memory fake so they never touch ambient storage.
type Store interface {
	// Get retrieves the value stored under key. Returns ErrNotFound
	// when the key has never been set or was deleted.
	Get(key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(key string, value string) error

	// Delete removes the value under key. Deleting an absent key is
	// not an error.
	Delete(key string) error
}

// MemoryStore is an in-memory Store for tests and ephemeral sessions.
type MemoryStore struct {
	values map[string]string
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get retrieves a value from the in-memory map.
func (m *MemoryStore) Get(key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores a value in the in-memory map.
func (m *MemoryStore) Set(key string, value string) error {
	m.values[key] = value
	return nil
}

// Delete removes a value from the in-memory map.
func (m *MemoryStore) Delete(key string) error {
	delete(m.values, key)
	return nil
}
