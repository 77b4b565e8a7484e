// ABOUTME: Persistence of the session token across process restarts
// ABOUTME: Defines the TokenStore contract and the fixed storage key

package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// TokenKey is the fixed name the session token is stored under
const TokenKey = "token"

// Backend names accepted by Open
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// TokenStore persists a single opaque token string.
// Load returns "" with a nil error when nothing is stored.
// Clear is idempotent.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// DefaultConfigDir returns the default config directory following XDG Base Directory conventions
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "library")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "library")
}

// Open returns the TokenStore for the named backend rooted at configDir
func Open(backend, configDir string) (TokenStore, error) {
	switch backend {
	case "", BackendFile:
		return NewFileStore(configDir), nil
	case BackendSQLite:
		return NewSQLiteStore(filepath.Join(configDir, "library.db"))
	default:
		return nil, fmt.Errorf("unknown token store %q (expected %s or %s)", backend, BackendFile, BackendSQLite)
	}
}
