// Package preset loads and plays frame-based animations stored as JSON
// files in the presets directory.
package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/display"
)

// DefaultFrameDuration is used for frames that carry no duration, and for
// legacy preset files that are a bare list of grids.
const DefaultFrameDuration = 200 * time.Millisecond

// Frame is one animation step: a grid and how long to hold it.
type Frame struct {
	Grid       [][]int `json:"grid"`
	DurationMs int     `json:"duration_ms"`
}

// Duration returns the frame hold time, falling back to the default.
func (f Frame) Duration() time.Duration {
	if f.DurationMs <= 0 {
		return DefaultFrameDuration
	}
	return time.Duration(f.DurationMs) * time.Millisecond
}

// Preset is a named animation.
type Preset struct {
	Name   string  `json:"name,omitempty"`
	Loop   bool    `json:"loop,omitempty"`
	Frames []Frame `json:"frames"`
}

// Load reads a preset file. Two layouts are accepted: the current object
// form {"frames": [{"grid": ..., "duration_ms": ...}]} and the legacy
// form, a bare JSON array of grids.
func Load(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("preset: failed to read %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var p Preset
	if err := json.Unmarshal(data, &p); err == nil && len(p.Frames) > 0 {
		if p.Name == "" {
			p.Name = name
		}
		if err := p.validate(); err != nil {
			return nil, err
		}
		return &p, nil
	}

	// Legacy layout: a list of grids played at the default frame rate.
	var grids [][][]int
	if err := json.Unmarshal(data, &grids); err != nil {
		return nil, fmt.Errorf("preset: %s is not a valid preset file: %w", path, err)
	}
	p = Preset{Name: name, Loop: true}
	for _, g := range grids {
		p.Frames = append(p.Frames, Frame{Grid: g})
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Preset) validate() error {
	if len(p.Frames) == 0 {
		return fmt.Errorf("preset: %s has no frames", p.Name)
	}
	for i, f := range p.Frames {
		if !display.IsValidGrid(f.Grid, display.Width, display.Height) {
			return fmt.Errorf("preset: %s frame %d is not a %dx%d grid", p.Name, i, display.Width, display.Height)
		}
	}
	return nil
}

// List returns the preset names available in dir, sorted.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("preset: failed to list %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Path resolves a preset name to its file path inside dir. Separators are
// rejected so callers cannot escape the presets directory.
func Path(dir, name string) (string, error) {
	if strings.ContainsAny(name, `/\`) || name == "" || name == ".." {
		return "", fmt.Errorf("preset: invalid name %q", name)
	}
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	return filepath.Join(dir, name), nil
}
