package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hotel-scraper/models"
	"hotel-scraper/utils"
)

func touch(t *testing.T, path string, age time.Duration) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0644))
	mtime := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestLatestMatchPicksNewest(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "booking_dados_20250101_100000.json")
	newer := filepath.Join(dir, "booking_dados_20250102_100000.json")
	touch(t, old, 2*time.Hour)
	touch(t, newer, time.Hour)

	got, ok := LatestMatch(filepath.Join(dir, "booking_dados_*.json"))
	require.True(t, ok)
	require.Equal(t, newer, got)
}

func TestLatestMatchNoFiles(t *testing.T) {
	_, ok := LatestMatch(filepath.Join(t.TempDir(), "booking_dados_*.json"))
	require.False(t, ok)
}

func TestLatestResultFilePrefersConsolidated(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "booking_dados_20250102_100000.json")
	consolidated := filepath.Join(dir, "scraper_dados_20250101_100000.json")
	touch(t, raw, time.Hour)
	touch(t, consolidated, 2*time.Hour)

	got, ok := LatestResultFile(dir)
	require.True(t, ok)
	require.Equal(t, consolidated, got, "consolidated report wins even when a raw file is newer")
}

func TestLatestResultFileFallsBackToRaw(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "google_dados_20250102_100000.json")
	touch(t, raw, time.Hour)

	got, ok := LatestResultFile(dir)
	require.True(t, ok)
	require.Equal(t, raw, got)
}

func TestWriteRawResultsEnvelope(t *testing.T) {
	dir := t.TempDir()
	writer := NewResultWriter(dir, utils.NewLogger())

	records := []any{
		models.TripAdvisorRaw{HotelID: "praia_dourada", HotelName: "Hotel Praia Dourada", Rating: 4.5},
	}
	path, err := writer.WriteRawResults(models.SiteTripAdvisor, records)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var file models.RawSiteFile
	require.NoError(t, json.Unmarshal(data, &file))
	require.Equal(t, models.SiteTripAdvisor, file.Metadata.Site)
	require.Equal(t, 1, file.Metadata.TotalHotels)
	require.Equal(t, models.SystemVersion, file.Metadata.ScraperVersion)
	require.Len(t, file.Hotels, 1)
}

func TestWriteRawResultsNilRecords(t *testing.T) {
	dir := t.TempDir()
	writer := NewResultWriter(dir, utils.NewLogger())

	path, err := writer.WriteRawResults(models.SiteBooking, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var file models.RawSiteFile
	require.NoError(t, json.Unmarshal(data, &file))
	require.NotNil(t, file.Hotels)
	require.Empty(t, file.Hotels)
}

func TestCSVWriterWritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export", "hotels.csv")
	writer := NewCSVWriter(path, utils.NewLogger())

	hotels := []models.NormalizedHotel{
		{Site: "booking", HotelID: "praia_dourada", HotelName: "Hotel Praia Dourada", Rating: 8.7, MaxRating: 10, ReviewCount: 1200},
	}
	require.NoError(t, writer.WriteHotels(hotels))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "site,hotel_id,hotel_name")
	require.Contains(t, string(data), "booking,praia_dourada,Hotel Praia Dourada,8.7,10,1200")
}
