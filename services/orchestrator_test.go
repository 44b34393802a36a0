package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"hotel-scraper/config"
	"hotel-scraper/models"
	"hotel-scraper/scraper"
	"hotel-scraper/utils"
)

type stubScraper struct {
	site       string
	records    []any
	calls      int
	lastHotels map[string]string
}

func (s *stubScraper) Site() string { return s.site }

func (s *stubScraper) ScrapeMultipleHotels(hotels map[string]string) []any {
	s.calls++
	s.lastHotels = hotels
	return s.records
}

func testConfig(t *testing.T, extra string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	content := "BOOKING_PRAIA_DOURADA=https://www.booking.com/hotel/br/praia-dourada.html\n" +
		"TRIPADVISOR_PRAIA_DOURADA=https://www.tripadvisor.com.br/Hotel_Review-g644400-d123-Reviews.html\n" +
		"SITE_PAUSE_MS=0\n" + extra
	path := filepath.Join(dir, "config.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := config.Load(path)
	cfg.ResultsDir = filepath.Join(dir, "resultados")
	return cfg
}

func bookingStub() *stubScraper {
	return &stubScraper{
		site: models.SiteBooking,
		records: []any{
			models.BookingRaw{HotelName: "Hotel Praia Dourada", Rating: 9.1, Reviews: 1200, Source: "booking_realtime"},
		},
	}
}

func TestScrapeSiteWritesRawFile(t *testing.T) {
	cfg := testConfig(t, "")
	stub := bookingStub()
	orch := NewOrchestrator(cfg, utils.NewLogger(), map[string]scraper.Scraper{models.SiteBooking: stub}, nil)

	path, err := orch.ScrapeSite(models.SiteBooking)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.Equal(t, 1, stub.calls)
}

func TestScrapeSiteUnknown(t *testing.T) {
	cfg := testConfig(t, "")
	orch := NewOrchestrator(cfg, utils.NewLogger(), map[string]scraper.Scraper{}, nil)

	_, err := orch.ScrapeSite("expedia")
	require.Error(t, err)
}

func TestScrapeSiteNoHotelsConfigured(t *testing.T) {
	cfg := testConfig(t, "")
	stub := &stubScraper{site: models.SiteDecolar}
	orch := NewOrchestrator(cfg, utils.NewLogger(), map[string]scraper.Scraper{models.SiteDecolar: stub}, nil)

	_, err := orch.ScrapeSite(models.SiteDecolar)
	require.Error(t, err)
	require.Zero(t, stub.calls)
}

func TestRunJobProducesConsolidatedReport(t *testing.T) {
	cfg := testConfig(t, "")
	orch := NewOrchestrator(cfg, utils.NewLogger(),
		map[string]scraper.Scraper{models.SiteBooking: bookingStub()}, nil)

	path, report, err := orch.RunJob([]string{models.SiteBooking})
	require.NoError(t, err)
	require.FileExists(t, path)
	require.Equal(t, 1, report.Metadata.TotalSites)
	require.Equal(t, 1, report.Metadata.TotalHotels)
	require.Equal(t, 1200, report.Metadata.TotalReviews)
}

func TestRunJobRejectsInvalidSite(t *testing.T) {
	cfg := testConfig(t, "")
	orch := NewOrchestrator(cfg, utils.NewLogger(), map[string]scraper.Scraper{}, nil)

	_, _, err := orch.RunJob([]string{"expedia"})
	require.Error(t, err)
}

func TestRunJobCleansUpRawFiles(t *testing.T) {
	cfg := testConfig(t, "CLEANUP_RAW=true\n")
	orch := NewOrchestrator(cfg, utils.NewLogger(),
		map[string]scraper.Scraper{models.SiteBooking: bookingStub()}, nil)

	path, _, err := orch.RunJob([]string{models.SiteBooking})
	require.NoError(t, err)
	require.FileExists(t, path)

	matches, err := filepath.Glob(filepath.Join(cfg.ResultsDir, "booking_dados_*.json"))
	require.NoError(t, err)
	require.Empty(t, matches, "raw files must be removed after consolidation")
}

func TestScrapeAllSitesRunsInFixedOrder(t *testing.T) {
	cfg := testConfig(t, "")

	orch := NewOrchestrator(cfg, utils.NewLogger(), map[string]scraper.Scraper{
		models.SiteTripAdvisor: &stubScraper{site: models.SiteTripAdvisor},
		models.SiteBooking:     &stubScraper{site: models.SiteBooking},
	}, nil)

	// request in reverse order; the run must follow the fixed order
	written := orch.ScrapeAllSites([]string{models.SiteBooking, models.SiteTripAdvisor})
	require.Len(t, written, 2)
	require.Contains(t, filepath.Base(written[0]), "tripadvisor_dados_")
	require.Contains(t, filepath.Base(written[1]), "booking_dados_")
}

func TestScrapeSiteSkipsDuplicateURLs(t *testing.T) {
	cfg := testConfig(t, "BOOKING_PRAIA_DOURADA_COPIA=https://www.booking.com/hotel/br/praia-dourada.html\n")
	stub := bookingStub()
	orch := NewOrchestrator(cfg, utils.NewLogger(), map[string]scraper.Scraper{models.SiteBooking: stub}, nil)

	_, err := orch.ScrapeSite(models.SiteBooking)
	require.NoError(t, err)
	require.Len(t, stub.lastHotels, 1, "two keys sharing a URL must dispatch once")
}

func TestStatusReportsSiteData(t *testing.T) {
	cfg := testConfig(t, "")
	orch := NewOrchestrator(cfg, utils.NewLogger(),
		map[string]scraper.Scraper{models.SiteBooking: bookingStub()}, nil)

	_, err := orch.ScrapeSite(models.SiteBooking)
	require.NoError(t, err)

	status := orch.Status()
	sites := status["sites"].(map[string]bool)
	require.True(t, sites[models.SiteBooking])
	require.False(t, sites[models.SiteGoogle])
}
