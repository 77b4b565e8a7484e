// ABOUTME: Remembers book import files the admin used recently
// ABOUTME: Stores their paths in recent_imports.json inside the config directory

package recentimports

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// MaxRecent is the number of paths kept
const MaxRecent = 5

// FileName is the file the list is kept in
const FileName = "recent_imports.json"

// Recent is the most-recent-first list of import file paths
type Recent struct {
	configDir string

	mu    sync.Mutex
	paths []string
}

type recentData struct {
	Paths []string `json:"paths"`
}

// New creates a Recent list stored in configDir
func New(configDir string) *Recent {
	return &Recent{configDir: configDir}
}

func (r *Recent) file() string {
	return filepath.Join(r.configDir, FileName)
}

// Load reads the list from disk, dropping paths that no longer exist.
// A missing or corrupt file reads as an empty list.
func (r *Recent) Load() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked()
}

func (r *Recent) loadLocked() ([]string, error) {
	r.paths = []string{}

	data, err := os.ReadFile(r.file())
	if errors.Is(err, fs.ErrNotExist) {
		return r.copyLocked(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", FileName, err)
	}

	var stored recentData
	if err := json.Unmarshal(data, &stored); err != nil {
		return r.copyLocked(), nil
	}
	for _, p := range stored.Paths {
		if _, err := os.Stat(p); err == nil {
			r.paths = append(r.paths, p)
		}
	}
	return r.copyLocked(), nil
}

// Add moves path to the front of the list and saves it
func (r *Recent) Add(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.paths == nil {
		if _, err := r.loadLocked(); err != nil {
			r.paths = []string{}
		}
	}

	next := make([]string, 0, len(r.paths)+1)
	next = append(next, path)
	for _, p := range r.paths {
		if p != path {
			next = append(next, p)
		}
	}
	if len(next) > MaxRecent {
		next = next[:MaxRecent]
	}
	r.paths = next

	if err := os.MkdirAll(r.configDir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(recentData{Paths: next}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.file(), data, 0600)
}

// List returns the current list, loading it on first use
func (r *Recent) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.paths == nil {
		if paths, err := r.loadLocked(); err == nil {
			return paths
		}
		return nil
	}
	return r.copyLocked()
}

func (r *Recent) copyLocked() []string {
	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}
