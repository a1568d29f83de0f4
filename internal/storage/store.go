package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// FileStore is a small JSON-backed key/value store used for state that must
// survive restarts, such as configured price alerts and their settings. All
// values are kept as raw JSON so callers own their own schemas.
type FileStore struct {
	filePath string
	items    map[string]json.RawMessage
	mu       sync.RWMutex
}

func NewFileStore(filePath string) *FileStore {
	return &FileStore{
		filePath: filePath,
		items:    make(map[string]json.RawMessage),
	}
}

// Load reads the backing file into memory. A missing or empty file is not an
// error; the store simply starts empty.
func (fs *FileStore) Load() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, err := os.Stat(fs.filePath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(fs.filePath)
	if err != nil {
		return fmt.Errorf("failed to read store file: %v", err)
	}

	if len(data) == 0 {
		return nil
	}

	items := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("failed to unmarshal store: %v", err)
	}

	fs.items = items
	return nil
}

// Save writes the full store back to disk.
func (fs *FileStore) Save() error {
	fs.mu.RLock()
	data, err := json.MarshalIndent(fs.items, "", "  ")
	fs.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal store: %v", err)
	}

	if err := os.WriteFile(fs.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write store file: %v", err)
	}

	return nil
}

// Get unmarshals the value at key into out. It reports whether the key was
// present; a present-but-corrupt value returns an error.
func (fs *FileStore) Get(key string, out interface{}) (bool, error) {
	fs.mu.RLock()
	raw, exists := fs.items[key]
	fs.mu.RUnlock()

	if !exists {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("failed to unmarshal %q: %v", key, err)
	}
	return true, nil
}

// Put stores the value at key and persists the store.
func (fs *FileStore) Put(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %q: %v", key, err)
	}

	fs.mu.Lock()
	fs.items[key] = raw
	fs.mu.Unlock()

	return fs.Save()
}

// Delete removes a key and persists the store. Deleting a missing key is a
// no-op.
func (fs *FileStore) Delete(key string) error {
	fs.mu.Lock()
	_, exists := fs.items[key]
	delete(fs.items, key)
	fs.mu.Unlock()

	if !exists {
		return nil
	}
	return fs.Save()
}

// Keys returns the stored keys in no particular order.
func (fs *FileStore) Keys() []string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	keys := make([]string, 0, len(fs.items))
	for key := range fs.items {
		keys = append(keys, key)
	}
	return keys
}
