// ABOUTME: File-backed token store in the XDG config directory
// ABOUTME: Writes session.json with owner-only permissions

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the token in <configDir>/session.json
type FileStore struct {
	configDir string
	mu        sync.Mutex
}

var _ TokenStore = (*FileStore)(nil)

type sessionData struct {
	Token string `json:"token"`
}

// NewFileStore creates a FileStore rooted at configDir
func NewFileStore(configDir string) *FileStore {
	return &FileStore{configDir: configDir}
}

// Path returns the location of the session file
func (fs *FileStore) Path() string {
	return filepath.Join(fs.configDir, "session.json")
}

// Load reads the token from disk.
// A missing or corrupt file reads as no token.
func (fs *FileStore) Load() (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(fs.Path())
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read session file: %w", err)
	}

	var sd sessionData
	if err := json.Unmarshal(data, &sd); err != nil {
		// Invalid JSON, start fresh
		return "", nil
	}
	return sd.Token, nil
}

// Save writes the token to disk, replacing any previous one
func (fs *FileStore) Save(token string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.configDir == "" {
		return errors.New("no config directory available")
	}
	if err := os.MkdirAll(fs.configDir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(sessionData{Token: token}, "", "  ")
	if err != nil {
		return err
	}

	// write-then-rename so a crash never leaves a truncated file
	tmp, err := os.CreateTemp(fs.configDir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod session file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fs.Path()); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Clear removes the session file
func (fs *FileStore) Clear() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	err := os.Remove(fs.Path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
