// ABOUTME: Decodes bulk import files for the catalog
// ABOUTME: Accepts a bare JSON array of books or an object with a "books" array

package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/minilibrary/library/internal/client"
)

// DecodeImport reads book inputs from r
func DecodeImport(r io.Reader) ([]client.BookInput, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("import file is empty")
	}

	var books []client.BookInput
	if data[0] == '[' {
		if err := json.Unmarshal(data, &books); err != nil {
			return nil, fmt.Errorf("parse import: %w", err)
		}
		return books, nil
	}

	var wrapped struct {
		Books []client.BookInput `json:"books"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse import: %w", err)
	}
	if wrapped.Books == nil {
		return nil, fmt.Errorf("import file has no \"books\" array")
	}
	return wrapped.Books, nil
}

// LoadImportFile decodes the import file at path
func LoadImportFile(path string) ([]client.BookInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()
	return DecodeImport(f)
}
