package lua

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// sanitizeFilename rejects anything that could escape the patterns
// directory and requires the .lua extension.
func sanitizeFilename(name string) (string, error) {
	if !strings.HasSuffix(name, ".lua") {
		return "", fmt.Errorf("filename must end with .lua")
	}
	base := filepath.Base(name)
	if base == "" || base == ".lua" || strings.Contains(base, "..") {
		return "", fmt.Errorf("invalid filename")
	}
	return base, nil
}

// GetPatternPath resolves a pattern name to a path inside the patterns
// directory, creating the directory on first use.
func (e *Engine) GetPatternPath(name string) (string, error) {
	base, err := sanitizeFilename(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(e.patternsDir, 0755); err != nil {
		return "", fmt.Errorf("patterns directory: %w", err)
	}
	return filepath.Join(e.patternsDir, base), nil
}

// GetPatternCode returns the source of a stored pattern.
func (e *Engine) GetPatternCode(name string) (string, error) {
	path, err := e.GetPatternPath(name)
	if err != nil {
		return "", err
	}
	code, err := os.ReadFile(path)
	return string(code), err
}

// SavePatternCode stores Lua source under the given pattern name.
func (e *Engine) SavePatternCode(name, code string) error {
	path, err := e.GetPatternPath(name)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(code), 0644)
}

// DeletePattern removes a stored pattern.
func (e *Engine) DeletePattern(name string) error {
	path, err := e.GetPatternPath(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// GetPatternList returns the .lua files in the patterns directory. A
// missing directory is an empty list, not an error.
func (e *Engine) GetPatternList() ([]string, error) {
	entries, err := os.ReadDir(e.patternsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".lua" {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
