package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"hotel-scraper/models"
	"hotel-scraper/utils"
)

// CSVWriter handles exporting normalized hotels to a CSV file
type CSVWriter struct {
	filePath string
	logger   *utils.Logger
}

// NewCSVWriter creates a new CSVWriter
func NewCSVWriter(filePath string, logger *utils.Logger) *CSVWriter {
	return &CSVWriter{filePath: filePath, logger: logger}
}

// WriteHotels writes a slice of normalized hotels to the CSV file
func (w *CSVWriter) WriteHotels(hotels []models.NormalizedHotel) error {
	// Ensure output directory exists
	dir := filepath.Dir(w.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(w.filePath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"site", "hotel_id", "hotel_name", "rating", "max_rating",
		"review_count", "url", "source", "data_source", "extraction_timestamp",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write rows
	for _, h := range hotels {
		row := []string{
			h.Site,
			h.HotelID,
			h.HotelName,
			strconv.FormatFloat(h.Rating, 'f', -1, 64),
			strconv.FormatFloat(h.MaxRating, 'f', -1, 64),
			strconv.Itoa(h.ReviewCount),
			h.URL,
			h.Source,
			h.DataSource,
			h.ExtractionTimestamp,
		}
		if err := writer.Write(row); err != nil {
			w.logger.Error("Failed to write CSV row for '%s': %v", h.HotelName, err)
		}
	}

	w.logger.Info("Hotels written to: %s (%d rows)", w.filePath, len(hotels))
	return nil
}
