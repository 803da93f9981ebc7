package preset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/display"
)

func blankCells() [][]int {
	cells := make([][]int, display.Width)
	for x := range cells {
		cells[x] = make([]int, display.Height)
	}
	return cells
}

func writePreset(t *testing.T, dir, name string, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestLoadModernFormat(t *testing.T) {
	dir := t.TempDir()
	path := writePreset(t, dir, "blink.json", map[string]interface{}{
		"loop": true,
		"frames": []map[string]interface{}{
			{"grid": blankCells(), "duration_ms": 100},
			{"grid": blankCells()},
		},
	})

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "blink", p.Name)
	assert.True(t, p.Loop)
	require.Len(t, p.Frames, 2)
	assert.Equal(t, 100*time.Millisecond, p.Frames[0].Duration())
	// Missing duration falls back to the default.
	assert.Equal(t, DefaultFrameDuration, p.Frames[1].Duration())
}

func TestLoadLegacyGridList(t *testing.T) {
	dir := t.TempDir()
	path := writePreset(t, dir, "old.json", [][][]int{blankCells(), blankCells(), blankCells()})

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "old", p.Name)
	assert.True(t, p.Loop)
	require.Len(t, p.Frames, 3)
	for _, f := range p.Frames {
		assert.Equal(t, DefaultFrameDuration, f.Duration())
	}
}

func TestLoadRejectsBadGrid(t *testing.T) {
	dir := t.TempDir()
	path := writePreset(t, dir, "bad.json", map[string]interface{}{
		"frames": []map[string]interface{}{
			{"grid": [][]int{{1, 0}}},
		},
	})

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junk.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestListSortedJSONOnly(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "zebra.json", [][][]int{blankCells()})
	writePreset(t, dir, "aardvark.json", [][][]int{blankCells()})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0644))

	names, err := List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"aardvark", "zebra"}, names)
}

func TestListMissingDir(t *testing.T) {
	names, err := List(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestPathRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"", "..", "a/b", `a\b`, "../escape"} {
		_, err := Path(dir, name)
		assert.Error(t, err, "name %q", name)
	}

	p, err := Path(dir, "wave")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "wave.json"), p)

	p, err = Path(dir, "wave.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "wave.json"), p)
}
