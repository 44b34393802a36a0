package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexFloat decodes a JSON number, a numeric string ("9.2" or "9,2"), or
// null. Anything unparseable decodes to zero; missing numeric data is a
// defaulting case, never an error.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexFloat(v)
	return nil
}

// FlexInt decodes a JSON integer, a float (truncated), or a numeric string.
// Unparseable input decodes to zero.
type FlexInt int

func (i *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*i = 0
		return nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*i = FlexInt(v)
		return nil
	}
	if v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		*i = FlexInt(v)
		return nil
	}
	*i = 0
	return nil
}

// RawFileMetadata is the metadata block of a per-site raw results file.
type RawFileMetadata struct {
	Site                string `json:"site"`
	TotalHotels         int    `json:"total_hoteis"`
	ExtractionTimestamp string `json:"timestamp_extracao"`
	ScraperVersion      string `json:"versao_scraper"`
}

// RawSiteFile is a per-site raw results file. Hotel records stay undecoded
// until the site is known, since every site has its own field names.
type RawSiteFile struct {
	Metadata RawFileMetadata   `json:"metadata"`
	Hotels   []json.RawMessage `json:"hoteis"`
}

// TripAdvisorRaw is a raw hotel record produced by the TripAdvisor adapter.
type TripAdvisorRaw struct {
	HotelID             string    `json:"hotel_id"`
	HotelName           string    `json:"hotel_name"`
	HotelURL            string    `json:"hotel_url"`
	Rating              FlexFloat `json:"rating"`
	ReviewCount         FlexInt   `json:"review_count"`
	Source              string    `json:"source"`
	DataSource          string    `json:"data_source"`
	ExtractionTimestamp string    `json:"extraction_timestamp"`
	Reviews             []any     `json:"reviews"`
}

// Normalize maps a TripAdvisor record into the invariant shape. Scale is 5.
func (r TripAdvisorRaw) Normalize() NormalizedHotel {
	reviews := r.Reviews
	if reviews == nil {
		reviews = []any{}
	}
	return NormalizedHotel{
		HotelID:             r.HotelID,
		HotelName:           r.HotelName,
		Rating:              float64(r.Rating),
		ReviewCount:         clampReviews(int(r.ReviewCount)),
		MaxRating:           5.0,
		URL:                 r.HotelURL,
		Source:              r.Source,
		DataSource:          r.DataSource,
		ExtractionTimestamp: r.ExtractionTimestamp,
		Site:                SiteTripAdvisor,
		AdditionalInfo:      map[string]any{"reviews": reviews},
	}
}

// BookingRaw is a raw hotel record produced by the Booking.com adapter.
// The review count lives under "reviews" and max_rating is part of the
// record itself (defaulting to 10 when absent).
type BookingRaw struct {
	HotelName string     `json:"hotel_name"`
	Rating    FlexFloat  `json:"rating"`
	Reviews   FlexInt    `json:"reviews"`
	MaxRating *FlexFloat `json:"max_rating"`
	URL       string     `json:"url"`
	Timestamp string     `json:"timestamp"`
	Source    string     `json:"source"`
	Site      string     `json:"site"`
}

// Normalize maps a Booking record into the invariant shape. The hotel id is
// synthesized from the name since Booking records carry none.
func (r BookingRaw) Normalize() NormalizedHotel {
	maxRating := 10.0
	if r.MaxRating != nil {
		maxRating = float64(*r.MaxRating)
	}
	return NormalizedHotel{
		HotelID:             GenerateHotelID(r.HotelName),
		HotelName:           r.HotelName,
		Rating:              float64(r.Rating),
		ReviewCount:         clampReviews(int(r.Reviews)),
		MaxRating:           maxRating,
		URL:                 r.URL,
		Source:              r.Source,
		DataSource:          "html_parsing",
		ExtractionTimestamp: r.Timestamp,
		Site:                SiteBooking,
		AdditionalInfo:      map[string]any{},
	}
}

// GoogleRaw is a raw hotel record produced by the Google Places adapter.
type GoogleRaw struct {
	HotelID             string     `json:"hotel_id"`
	HotelName           string     `json:"hotel_name"`
	HotelSearchTerm     string     `json:"hotel_search_term"`
	Rating              FlexFloat  `json:"rating"`
	ReviewCount         FlexInt    `json:"review_count"`
	MaxRating           *FlexFloat `json:"max_rating"`
	GoogleURL           string     `json:"google_url"`
	Source              string     `json:"source"`
	DataSource          string     `json:"data_source"`
	ExtractionTimestamp string     `json:"extraction_timestamp"`
	Site                string     `json:"site"`
}

// Normalize maps a Google Places record into the invariant shape. Scale is 5.
func (r GoogleRaw) Normalize() NormalizedHotel {
	maxRating := 5.0
	if r.MaxRating != nil {
		maxRating = float64(*r.MaxRating)
	}
	return NormalizedHotel{
		HotelID:             r.HotelID,
		HotelName:           r.HotelName,
		Rating:              float64(r.Rating),
		ReviewCount:         clampReviews(int(r.ReviewCount)),
		MaxRating:           maxRating,
		URL:                 r.GoogleURL,
		Source:              r.Source,
		DataSource:          r.DataSource,
		ExtractionTimestamp: r.ExtractionTimestamp,
		Site:                SiteGoogle,
		AdditionalInfo:      map[string]any{"hotel_search_term": r.HotelSearchTerm},
	}
}

// DecolarRaw is a raw hotel record produced by the Decolar adapter.
type DecolarRaw struct {
	HotelID             string    `json:"hotel_id"`
	HotelName           string    `json:"hotel_name"`
	HotelURL            string    `json:"hotel_url"`
	Rating              FlexFloat `json:"rating"`
	ReviewCount         FlexInt   `json:"review_count"`
	Source              string    `json:"source"`
	DataSource          string    `json:"data_source"`
	ExtractionTimestamp string    `json:"extraction_timestamp"`
	Reviews             []any     `json:"reviews"`
}

// Normalize maps a Decolar record into the invariant shape. Scale is 10.
func (r DecolarRaw) Normalize() NormalizedHotel {
	reviews := r.Reviews
	if reviews == nil {
		reviews = []any{}
	}
	return NormalizedHotel{
		HotelID:             r.HotelID,
		HotelName:           r.HotelName,
		Rating:              float64(r.Rating),
		ReviewCount:         clampReviews(int(r.ReviewCount)),
		MaxRating:           10.0,
		URL:                 r.HotelURL,
		Source:              r.Source,
		DataSource:          r.DataSource,
		ExtractionTimestamp: r.ExtractionTimestamp,
		Site:                SiteDecolar,
		AdditionalInfo:      map[string]any{"reviews": reviews},
	}
}

func clampReviews(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
