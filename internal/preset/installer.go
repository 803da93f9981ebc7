package preset

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultRepoURL points at the directory of bundled preset files in the
// project repository, via the GitHub contents API.
const DefaultRepoURL = "https://api.github.com/repos/Inspyre-Softworks/led-matrix-battery/contents/presets"

// Installer downloads preset files from a GitHub contents API directory
// into a local presets directory.
type Installer struct {
	URL       string
	Dir       string
	Overwrite bool
	Client    *http.Client
}

func NewInstaller(dir string) *Installer {
	return &Installer{
		URL:    DefaultRepoURL,
		Dir:    dir,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

type repoEntry struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	SHA         string `json:"sha"`
	DownloadURL string `json:"download_url"`
}

// Result summarizes one Install run.
type Result struct {
	Installed []string
	Skipped   []string
	Failed    []string
}

// Install fetches the preset listing and writes each .json file into the
// target directory. Files whose git blob checksum already matches the
// local copy are skipped unless Overwrite is set.
func (in *Installer) Install() (*Result, error) {
	if err := os.MkdirAll(in.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("preset: failed to create %s: %w", in.Dir, err)
	}

	entries, err := in.list()
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, e := range entries {
		if e.Type != "file" || !strings.HasSuffix(e.Name, ".json") {
			continue
		}
		dest := filepath.Join(in.Dir, e.Name)
		if !in.Overwrite && localBlobSHA(dest) == e.SHA {
			log.Printf("[Preset] %s is up to date, skipping", e.Name)
			res.Skipped = append(res.Skipped, e.Name)
			continue
		}
		if err := in.download(e, dest); err != nil {
			log.Printf("[Preset] Failed to install %s: %v", e.Name, err)
			res.Failed = append(res.Failed, e.Name)
			continue
		}
		log.Printf("[Preset] Installed %s", e.Name)
		res.Installed = append(res.Installed, e.Name)
	}
	return res, nil
}

func (in *Installer) list() ([]repoEntry, error) {
	resp, err := in.Client.Get(in.URL)
	if err != nil {
		return nil, fmt.Errorf("preset: failed to fetch preset list: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("preset: preset list returned %s", resp.Status)
	}
	var entries []repoEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("preset: failed to decode preset list: %w", err)
	}
	return entries, nil
}

func (in *Installer) download(e repoEntry, dest string) error {
	if e.DownloadURL == "" {
		return fmt.Errorf("no download URL for %s", e.Name)
	}
	resp, err := in.Client.Get(e.DownloadURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download returned %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if e.SHA != "" && blobSHA(data) != e.SHA {
		return fmt.Errorf("checksum mismatch for %s", e.Name)
	}
	return os.WriteFile(dest, data, 0o644)
}

// blobSHA computes the git blob object checksum for data, matching the
// sha field the contents API reports.
func blobSHA(data []byte) string {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00", len(data))
	h.Write(data)
	return fmt.Sprintf("%x", h.Sum(nil))
}

func localBlobSHA(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return blobSHA(data)
}
