package models

import (
	"strings"
)

// Canonical site keys. The order of SiteOrder is the processing order used
// by the orchestrator and the consolidator.
const (
	SiteTripAdvisor = "tripadvisor"
	SiteBooking     = "booking"
	SiteGoogle      = "google"
	SiteDecolar     = "decolar"
)

// SiteOrder lists every supported site in its fixed processing order.
var SiteOrder = []string{SiteTripAdvisor, SiteBooking, SiteGoogle, SiteDecolar}

// SystemVersion is embedded in every file this system writes.
const SystemVersion = "2.0.0-multi-site"

// IsValidSite reports whether key names one of the supported sites.
func IsValidSite(key string) bool {
	for _, s := range SiteOrder {
		if s == key {
			return true
		}
	}
	return false
}

// SiteInfo holds static descriptive metadata about a source site.
type SiteInfo struct {
	Name             string `json:"nome"`
	RatingScale      string `json:"rating_scale"`
	ExtractionMethod string `json:"extraction_method"`
	Description      string `json:"description"`
}

// SiteInfos maps each site key to its static metadata.
var SiteInfos = map[string]SiteInfo{
	SiteTripAdvisor: {
		Name:             "TripAdvisor",
		RatingScale:      "1-5",
		ExtractionMethod: "GraphQL API",
		Description:      "Maior plataforma de reviews de turismo do mundo",
	},
	SiteBooking: {
		Name:             "Booking.com",
		RatingScale:      "1-10",
		ExtractionMethod: "HTML Parsing + Anti-block",
		Description:      "Líder mundial em reservas de hospedagem",
	},
	SiteGoogle: {
		Name:             "Google Places",
		RatingScale:      "1-5",
		ExtractionMethod: "Official Places API",
		Description:      "API oficial do Google com dados em tempo real",
	},
	SiteDecolar: {
		Name:             "Decolar",
		RatingScale:      "1-10",
		ExtractionMethod: "HTML Parsing + Fallback",
		Description:      "Maior OTA da América Latina",
	},
}

// NormalizedHotel is the invariant record shape every site's raw data is
// mapped into. All fields are always present in the JSON output; numeric
// fields are numbers, never strings.
type NormalizedHotel struct {
	HotelID             string         `json:"hotel_id"`
	HotelName           string         `json:"hotel_name"`
	Rating              float64        `json:"rating"`
	ReviewCount         int            `json:"review_count"`
	MaxRating           float64        `json:"max_rating"`
	URL                 string         `json:"url"`
	Source              string         `json:"source"`
	DataSource          string         `json:"data_source"`
	ExtractionTimestamp string         `json:"extraction_timestamp"`
	Site                string         `json:"site"`
	AdditionalInfo      map[string]any `json:"additional_info"`
}

// RatingStats aggregates a set of normalized hotels.
type RatingStats struct {
	Count         int
	TotalReviews  int
	AverageRating float64
}

// ExtractionStats summarizes one site's extraction inside a site report.
type ExtractionStats struct {
	Succeeded     int     `json:"sucesso"`
	TotalReviews  int     `json:"total_avaliacoes"`
	AverageRating float64 `json:"rating_medio"`
}

// SiteReportMetadata carries per-site counts plus the stats computed over
// the site's normalized hotels.
type SiteReportMetadata struct {
	TotalHotels         int             `json:"total_hoteis"`
	ExtractionTimestamp string          `json:"timestamp_extracao"`
	ScraperVersion      string          `json:"versao_scraper"`
	ExtractionStats     ExtractionStats `json:"extraction_stats"`
}

// SiteReport is one site's normalized slice of the consolidated output.
type SiteReport struct {
	SiteInfo SiteInfo           `json:"site_info"`
	Metadata SiteReportMetadata `json:"metadata"`
	Hotels   []NormalizedHotel  `json:"hoteis"`
}

// ConsolidatedMetadata carries the cross-site aggregates.
type ConsolidatedMetadata struct {
	ConsolidationTimestamp string  `json:"timestamp_consolidacao"`
	SystemVersion          string  `json:"versao_sistema"`
	TotalSites             int     `json:"total_sites"`
	TotalHotels            int     `json:"total_hoteis"`
	TotalReviews           int     `json:"total_avaliacoes"`
	GlobalAverageRating    float64 `json:"rating_medio_geral"`
}

// ConsolidatedReport is the final cross-site output file shape.
type ConsolidatedReport struct {
	Metadata ConsolidatedMetadata  `json:"metadata"`
	Sites    map[string]SiteReport `json:"sites"`
}

// AllHotels flattens every site's normalized hotels in site order.
func (r *ConsolidatedReport) AllHotels() []NormalizedHotel {
	var hotels []NormalizedHotel
	for _, site := range SiteOrder {
		report, ok := r.Sites[site]
		if !ok {
			continue
		}
		hotels = append(hotels, report.Hotels...)
	}
	return hotels
}

// GenerateHotelID derives a stable identifier from a hotel display name.
// The transliteration is intentionally limited to ç and ã; other accented
// characters pass through unchanged.
func GenerateHotelID(name string) string {
	id := strings.ToLower(name)
	id = strings.ReplaceAll(id, " ", "_")
	id = strings.ReplaceAll(id, "hotel_", "")
	id = strings.ReplaceAll(id, "ç", "c")
	id = strings.ReplaceAll(id, "ã", "a")
	return id
}
