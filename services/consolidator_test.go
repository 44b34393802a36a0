package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hotel-scraper/models"
	"hotel-scraper/storage"
	"hotel-scraper/utils"
)

func writeRawFile(t *testing.T, dir, site, timestamp string, records ...any) string {
	t.Helper()
	if records == nil {
		records = []any{}
	}
	envelope := map[string]any{
		"metadata": models.RawFileMetadata{
			Site:                site,
			TotalHotels:         len(records),
			ExtractionTimestamp: "2025-01-15T10:00:00",
			ScraperVersion:      models.SystemVersion,
		},
		"hoteis": records,
	}
	path := filepath.Join(dir, site+"_dados_"+timestamp+".json")
	require.NoError(t, storage.WriteJSON(path, envelope))
	return path
}

func TestAggregateEmpty(t *testing.T) {
	stats := Aggregate(nil)
	require.Equal(t, 0, stats.Count)
	require.Equal(t, 0, stats.TotalReviews)
	require.Zero(t, stats.AverageRating)
}

func TestAggregateRoundsToTwoDecimals(t *testing.T) {
	stats := Aggregate([]models.NormalizedHotel{
		{Rating: 4.5, ReviewCount: 100},
		{Rating: 4.6, ReviewCount: 200},
		{Rating: 4.5, ReviewCount: 50},
	})
	require.Equal(t, 3, stats.Count)
	require.Equal(t, 350, stats.TotalReviews)
	require.InDelta(t, 4.53, stats.AverageRating, 1e-9)
}

func TestLoadSiteDataMissingFile(t *testing.T) {
	c := NewConsolidator(t.TempDir(), utils.NewLogger())
	require.Nil(t, c.LoadSiteData(models.SiteBooking))
}

func TestLoadSiteDataCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "booking_dados_20250115_100000.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	c := NewConsolidator(dir, utils.NewLogger())
	require.Nil(t, c.LoadSiteData(models.SiteBooking))
}

func TestLoadSiteDataPicksNewest(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeRawFile(t, dir, models.SiteGoogle, "20250114_100000",
		models.GoogleRaw{HotelName: "Hotel Velho"})
	newPath := writeRawFile(t, dir, models.SiteGoogle, "20250115_100000",
		models.GoogleRaw{HotelName: "Hotel Novo"})

	older := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(oldPath, older, older))
	now := time.Now()
	require.NoError(t, os.Chtimes(newPath, now, now))

	c := NewConsolidator(dir, utils.NewLogger())
	file := c.LoadSiteData(models.SiteGoogle)
	require.NotNil(t, file)
	require.Len(t, file.Hotels, 1)

	var raw models.GoogleRaw
	require.NoError(t, json.Unmarshal(file.Hotels[0], &raw))
	require.Equal(t, "Hotel Novo", raw.HotelName)
}

func TestGenerateConsolidatedReport(t *testing.T) {
	dir := t.TempDir()
	writeRawFile(t, dir, models.SiteTripAdvisor, "20250115_100000",
		models.TripAdvisorRaw{
			HotelID:     "praia_dourada",
			HotelName:   "Hotel Praia Dourada",
			Rating:      4.5,
			ReviewCount: 89,
			Source:      "tripadvisor_realtime",
			DataSource:  "graphql_api",
		})
	writeRawFile(t, dir, models.SiteBooking, "20250115_100000",
		models.BookingRaw{
			HotelName: "Hotel Praia Dourada",
			Rating:    9.1,
			Reviews:   1200,
			Source:    "booking_realtime",
		})

	c := NewConsolidator(dir, utils.NewLogger())
	report, path, err := c.GenerateConsolidatedReport()
	require.NoError(t, err)
	require.FileExists(t, path)

	require.Equal(t, 2, report.Metadata.TotalSites)
	require.Equal(t, 2, report.Metadata.TotalHotels)
	require.Equal(t, 1289, report.Metadata.TotalReviews)
	require.InDelta(t, 6.8, report.Metadata.GlobalAverageRating, 1e-9)
	require.Equal(t, models.SystemVersion, report.Metadata.SystemVersion)

	require.Contains(t, report.Sites, models.SiteTripAdvisor)
	require.Contains(t, report.Sites, models.SiteBooking)
	require.NotContains(t, report.Sites, models.SiteGoogle)
	require.NotContains(t, report.Sites, models.SiteDecolar)

	booking := report.Sites[models.SiteBooking]
	require.Equal(t, "Booking.com", booking.SiteInfo.Name)
	require.Equal(t, 1, booking.Metadata.ExtractionStats.Succeeded)
	require.Equal(t, 1200, booking.Metadata.ExtractionStats.TotalReviews)
	require.InDelta(t, 9.1, booking.Metadata.ExtractionStats.AverageRating, 1e-9)
}

// Every normalized record must expose the same key set no matter which site
// produced it.
func TestNormalizedRecordsShareKeySet(t *testing.T) {
	dir := t.TempDir()
	writeRawFile(t, dir, models.SiteTripAdvisor, "20250115_100000",
		models.TripAdvisorRaw{HotelID: "a", HotelName: "Hotel A", Rating: 4.2, ReviewCount: 10})
	writeRawFile(t, dir, models.SiteBooking, "20250115_100000",
		models.BookingRaw{HotelName: "Hotel B", Rating: 8.8, Reviews: 20})
	writeRawFile(t, dir, models.SiteGoogle, "20250115_100000",
		models.GoogleRaw{HotelID: "c", HotelName: "Hotel C", Rating: 4.7, ReviewCount: 30})
	writeRawFile(t, dir, models.SiteDecolar, "20250115_100000",
		models.DecolarRaw{HotelID: "d", HotelName: "Hotel D", Rating: 9.0, ReviewCount: 40})

	c := NewConsolidator(dir, utils.NewLogger())
	report := c.BuildConsolidatedReport()
	require.Len(t, report.Sites, 4)

	wantKeys := []string{
		"hotel_id", "hotel_name", "rating", "review_count", "max_rating",
		"url", "source", "data_source", "extraction_timestamp", "site",
		"additional_info",
	}

	for site, siteReport := range report.Sites {
		for _, hotel := range siteReport.Hotels {
			data, err := json.Marshal(hotel)
			require.NoError(t, err)

			var asMap map[string]any
			require.NoError(t, json.Unmarshal(data, &asMap))
			require.Len(t, asMap, len(wantKeys), "site %s", site)
			for _, key := range wantKeys {
				require.Contains(t, asMap, key, "site %s", site)
			}
		}
	}
}

func TestConsolidatedReportStableAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	writeRawFile(t, dir, models.SiteDecolar, "20250115_100000",
		models.DecolarRaw{HotelID: "d", HotelName: "Hotel D", Rating: 9.0, ReviewCount: 40})

	c := NewConsolidator(dir, utils.NewLogger())
	first := c.BuildConsolidatedReport()
	second := c.BuildConsolidatedReport()

	require.Equal(t, first.Sites, second.Sites)
	require.Equal(t, first.Metadata.TotalHotels, second.Metadata.TotalHotels)
	require.Equal(t, first.Metadata.GlobalAverageRating, second.Metadata.GlobalAverageRating)
}

func TestUpdateIndividualJSONs(t *testing.T) {
	dir := t.TempDir()
	writeRawFile(t, dir, models.SiteGoogle, "20250115_100000",
		models.GoogleRaw{HotelID: "c", HotelName: "Hotel C", Rating: 4.7, ReviewCount: 30})

	c := NewConsolidator(dir, utils.NewLogger())
	updated := c.UpdateIndividualJSONs()
	require.Len(t, updated, 1)
	require.Contains(t, updated, models.SiteGoogle)
	require.FileExists(t, updated[models.SiteGoogle])

	data, err := os.ReadFile(updated[models.SiteGoogle])
	require.NoError(t, err)

	var siteReport models.SiteReport
	require.NoError(t, json.Unmarshal(data, &siteReport))
	require.Equal(t, "Google Places", siteReport.SiteInfo.Name)
	require.Len(t, siteReport.Hotels, 1)
}
