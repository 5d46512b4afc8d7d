// Package store persists generated artifacts as flat JSON array files.
// Files are fully rewritten on every save; there is no append or merge.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"socialcast/internal/logger"
)

// Save writes v to path as indented JSON, creating parent directories as
// needed and overwriting any existing file.
func Save(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logger.Info("Saved data", "path", path)
	return nil
}

// Load reads the JSON file at path into v.
func Load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
