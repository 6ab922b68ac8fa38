package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one rendered scene in the output manifest.
type ManifestEntry struct {
	Name    string `json:"name"`
	Scene   string `json:"scene"`
	Image   string `json:"image,omitempty"`
	Rows    int    `json:"rows"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Millis  int64  `json:"millis"`
}

// WriteManifest writes the per-job outcome of a run as JSON.
func WriteManifest(path string, jobs []Job, results []Result) error {
	entries := make([]ManifestEntry, len(jobs))
	for i, j := range jobs {
		r := results[i]
		entries[i] = ManifestEntry{
			Name:    j.Name,
			Scene:   j.Scene,
			Image:   r.Image,
			Rows:    r.Rows,
			Success: r.Success,
			Error:   r.Error,
			Millis:  r.Duration.Milliseconds(),
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
