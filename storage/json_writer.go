package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hotel-scraper/models"
	"hotel-scraper/utils"
)

// timestampFormat is embedded in every result filename.
const timestampFormat = "20060102_150405"

// Timestamp returns the filename timestamp for the current time.
func Timestamp() string {
	return time.Now().Format(timestampFormat)
}

// WriteJSON marshals v with two-space indentation and writes it to path,
// creating the parent directory if needed.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// LatestMatch returns the newest file (by modification time) matching the
// glob pattern, or false when nothing matches.
func LatestMatch(pattern string) (string, bool) {
	files, err := filepath.Glob(pattern)
	if err != nil || len(files) == 0 {
		return "", false
	}

	var latest string
	var latestMod time.Time
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = file
			latestMod = info.ModTime()
		}
	}
	if latest == "" {
		return "", false
	}
	return latest, true
}

// LatestResultFile finds the newest consolidated report in dir, falling
// back to the newest per-site raw file when no consolidated report exists.
func LatestResultFile(dir string) (string, bool) {
	if file, ok := LatestMatch(filepath.Join(dir, "scraper_dados_*.json")); ok {
		return file, true
	}
	return LatestMatch(filepath.Join(dir, "*_dados_*.json"))
}

// ResultWriter persists per-site raw scraping results as timestamped JSON
// files in the results directory.
type ResultWriter struct {
	dir    string
	logger *utils.Logger
}

// NewResultWriter creates a ResultWriter rooted at dir.
func NewResultWriter(dir string, logger *utils.Logger) *ResultWriter {
	return &ResultWriter{dir: dir, logger: logger}
}

// Dir returns the results directory.
func (w *ResultWriter) Dir() string { return w.dir }

// WriteRawResults writes one site's raw records wrapped in the standard
// metadata envelope and returns the file path.
func (w *ResultWriter) WriteRawResults(site string, records []any) (string, error) {
	if records == nil {
		records = []any{}
	}
	envelope := map[string]any{
		"metadata": models.RawFileMetadata{
			Site:                site,
			TotalHotels:         len(records),
			ExtractionTimestamp: time.Now().Format(time.RFC3339),
			ScraperVersion:      models.SystemVersion,
		},
		"hoteis": records,
	}

	path := filepath.Join(w.dir, fmt.Sprintf("%s_dados_%s.json", site, Timestamp()))
	if err := WriteJSON(path, envelope); err != nil {
		return "", err
	}

	w.logger.Info("Raw results written: %s (%d hotels)", path, len(records))
	return path, nil
}
