package services

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"hotel-scraper/models"
	"hotel-scraper/storage"
	"hotel-scraper/utils"
)

// Consolidator turns per-site raw result files into one normalized,
// aggregated report. It performs no network I/O and keeps no state between
// invocations; everything flows through the results directory.
type Consolidator struct {
	resultsDir string
	logger     *utils.Logger
}

// NewConsolidator creates a Consolidator reading from and writing to
// resultsDir.
func NewConsolidator(resultsDir string, logger *utils.Logger) *Consolidator {
	return &Consolidator{resultsDir: resultsDir, logger: logger}
}

// LoadSiteData loads the newest raw results file for a site. A nil return
// means no usable data exists for the site, which is an expected condition,
// not a fault: the site is simply skipped.
func (c *Consolidator) LoadSiteData(site string) *models.RawSiteFile {
	pattern := filepath.Join(c.resultsDir, site+"_dados_*.json")
	latest, ok := storage.LatestMatch(pattern)
	if !ok {
		c.logger.Warn("No raw file found for %s", site)
		return nil
	}

	data, err := os.ReadFile(latest)
	if err != nil {
		c.logger.Error("Failed to read %s: %v", latest, err)
		return nil
	}

	var siteFile models.RawSiteFile
	if err := json.Unmarshal(data, &siteFile); err != nil {
		c.logger.Error("Failed to parse %s: %v", latest, err)
		return nil
	}

	c.logger.Info("%s: %s", site, latest)
	return &siteFile
}

// normalizeHotel decodes one raw record as the site's variant type and maps
// it into the invariant shape. Records that fail to decode normalize to a
// record of defaults rather than an error.
func normalizeHotel(raw json.RawMessage, site string) models.NormalizedHotel {
	switch site {
	case models.SiteTripAdvisor:
		var r models.TripAdvisorRaw
		_ = json.Unmarshal(raw, &r)
		return r.Normalize()
	case models.SiteBooking:
		var r models.BookingRaw
		_ = json.Unmarshal(raw, &r)
		return r.Normalize()
	case models.SiteGoogle:
		var r models.GoogleRaw
		_ = json.Unmarshal(raw, &r)
		return r.Normalize()
	case models.SiteDecolar:
		var r models.DecolarRaw
		_ = json.Unmarshal(raw, &r)
		return r.Normalize()
	}
	return models.NormalizedHotel{Site: site, AdditionalInfo: map[string]any{}}
}

// Aggregate computes count, review sum, and mean rating (two decimal
// places) over normalized hotels. An empty input yields zeroes, never a
// division fault.
func Aggregate(hotels []models.NormalizedHotel) models.RatingStats {
	stats := models.RatingStats{Count: len(hotels)}
	if len(hotels) == 0 {
		return stats
	}

	var sum float64
	for _, h := range hotels {
		stats.TotalReviews += h.ReviewCount
		sum += h.Rating
	}
	stats.AverageRating = round2(sum / float64(len(hotels)))
	return stats
}

// NormalizeSiteData normalizes every hotel in a raw site file and wraps
// them in a site report with static site info and extraction stats.
func (c *Consolidator) NormalizeSiteData(siteFile *models.RawSiteFile, site string) models.SiteReport {
	hotels := make([]models.NormalizedHotel, 0, len(siteFile.Hotels))
	for _, raw := range siteFile.Hotels {
		hotels = append(hotels, normalizeHotel(raw, site))
	}

	stats := Aggregate(hotels)
	return models.SiteReport{
		SiteInfo: models.SiteInfos[site],
		Metadata: models.SiteReportMetadata{
			TotalHotels:         len(hotels),
			ExtractionTimestamp: siteFile.Metadata.ExtractionTimestamp,
			ScraperVersion:      siteFile.Metadata.ScraperVersion,
			ExtractionStats: models.ExtractionStats{
				Succeeded:     len(hotels),
				TotalReviews:  stats.TotalReviews,
				AverageRating: stats.AverageRating,
			},
		},
		Hotels: hotels,
	}
}

// BuildConsolidatedReport assembles the cross-site report from whatever raw
// files are present. Sites without data are skipped silently; the global
// mean is computed over the concatenation of all per-hotel ratings, not
// over per-site means.
func (c *Consolidator) BuildConsolidatedReport() *models.ConsolidatedReport {
	report := &models.ConsolidatedReport{
		Metadata: models.ConsolidatedMetadata{
			ConsolidationTimestamp: time.Now().Format(time.RFC3339),
			SystemVersion:          models.SystemVersion,
		},
		Sites: map[string]models.SiteReport{},
	}

	var allRatings []float64
	totalHotels := 0
	totalReviews := 0

	for _, site := range models.SiteOrder {
		c.logger.Info("Processing %s...", site)

		siteFile := c.LoadSiteData(site)
		if siteFile == nil {
			continue
		}

		siteReport := c.NormalizeSiteData(siteFile, site)
		report.Sites[site] = siteReport

		totalHotels += len(siteReport.Hotels)
		for _, h := range siteReport.Hotels {
			totalReviews += h.ReviewCount
			allRatings = append(allRatings, h.Rating)
		}
		c.logger.Info("  %d hotels normalized", len(siteReport.Hotels))
	}

	report.Metadata.TotalSites = len(report.Sites)
	report.Metadata.TotalHotels = totalHotels
	report.Metadata.TotalReviews = totalReviews
	if len(allRatings) > 0 {
		var sum float64
		for _, r := range allRatings {
			sum += r
		}
		report.Metadata.GlobalAverageRating = round2(sum / float64(len(allRatings)))
	}

	return report
}

// GenerateConsolidatedReport builds the consolidated report and writes it
// to a new timestamped file. Only the write can fail; absent sites never
// abort the run.
func (c *Consolidator) GenerateConsolidatedReport() (*models.ConsolidatedReport, string, error) {
	report := c.BuildConsolidatedReport()

	path := filepath.Join(c.resultsDir, fmt.Sprintf("scraper_dados_%s.json", storage.Timestamp()))
	if err := storage.WriteJSON(path, report); err != nil {
		c.logger.Error("Failed to write consolidated report: %v", err)
		return nil, "", err
	}

	c.logger.Info("Consolidated report written: %s", path)
	c.logger.Info("  sites: %d | hotels: %d | reviews: %d | mean rating: %.2f",
		report.Metadata.TotalSites, report.Metadata.TotalHotels,
		report.Metadata.TotalReviews, report.Metadata.GlobalAverageRating)
	return report, path, nil
}

// UpdateIndividualJSONs writes one normalized file per site that has raw
// data, returning the written paths keyed by site.
func (c *Consolidator) UpdateIndividualJSONs() map[string]string {
	updated := map[string]string{}

	for _, site := range models.SiteOrder {
		siteFile := c.LoadSiteData(site)
		if siteFile == nil {
			continue
		}

		siteReport := c.NormalizeSiteData(siteFile, site)
		path := filepath.Join(c.resultsDir, fmt.Sprintf("%s_normalizado_%s.json", site, storage.Timestamp()))
		if err := storage.WriteJSON(path, siteReport); err != nil {
			c.logger.Error("Failed to write normalized file for %s: %v", site, err)
			continue
		}
		updated[site] = path
	}

	return updated
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
