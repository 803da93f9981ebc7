package preset

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoServer(t *testing.T, files map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	var srv *httptest.Server
	mux.HandleFunc("/contents", func(w http.ResponseWriter, r *http.Request) {
		var entries []repoEntry
		for name, content := range files {
			entries = append(entries, repoEntry{
				Name:        name,
				Type:        "file",
				SHA:         blobSHA([]byte(content)),
				DownloadURL: srv.URL + "/raw/" + name,
			})
		}
		json.NewEncoder(w).Encode(entries)
	})
	mux.HandleFunc("/raw/", func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Base(r.URL.Path)
		content, ok := files[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(content))
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestInstallDownloadsPresets(t *testing.T) {
	files := map[string]string{
		"wave.json":  `[[]]`,
		"pulse.json": `{"frames": []}`,
	}
	srv := newRepoServer(t, files)
	dir := t.TempDir()

	in := NewInstaller(dir)
	in.URL = srv.URL + "/contents"

	res, err := in.Install()
	require.NoError(t, err)
	assert.Len(t, res.Installed, 2)
	assert.Empty(t, res.Skipped)
	assert.Empty(t, res.Failed)

	data, err := os.ReadFile(filepath.Join(dir, "wave.json"))
	require.NoError(t, err)
	assert.Equal(t, files["wave.json"], string(data))
}

func TestInstallSkipsUpToDate(t *testing.T) {
	files := map[string]string{"wave.json": `[[]]`}
	srv := newRepoServer(t, files)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wave.json"), []byte(files["wave.json"]), 0644))

	in := NewInstaller(dir)
	in.URL = srv.URL + "/contents"

	res, err := in.Install()
	require.NoError(t, err)
	assert.Empty(t, res.Installed)
	assert.Equal(t, []string{"wave.json"}, res.Skipped)
}

func TestInstallOverwriteForcesDownload(t *testing.T) {
	files := map[string]string{"wave.json": `[[]]`}
	srv := newRepoServer(t, files)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wave.json"), []byte(files["wave.json"]), 0644))

	in := NewInstaller(dir)
	in.URL = srv.URL + "/contents"
	in.Overwrite = true

	res, err := in.Install()
	require.NoError(t, err)
	assert.Equal(t, []string{"wave.json"}, res.Installed)
}

func TestInstallIgnoresNonJSONEntries(t *testing.T) {
	srv := newRepoServer(t, map[string]string{"notes.txt": "hi"})
	dir := t.TempDir()

	in := NewInstaller(dir)
	in.URL = srv.URL + "/contents"

	res, err := in.Install()
	require.NoError(t, err)
	assert.Empty(t, res.Installed)
}

func TestBlobSHAMatchesGit(t *testing.T) {
	// git hash-object for "hello\n".
	assert.Equal(t, "ce013625030ba8dba906f756967f9e9ca394464a", blobSHA([]byte("hello\n")))
}

func TestInstallListError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer srv.Close()

	in := NewInstaller(t.TempDir())
	in.URL = srv.URL

	_, err := in.Install()
	assert.Error(t, err)
}
