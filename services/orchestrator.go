package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hotel-scraper/config"
	"hotel-scraper/models"
	"hotel-scraper/scraper"
	"hotel-scraper/storage"
	"hotel-scraper/utils"
)

// Orchestrator dispatches scraping runs across sites, hands results to the
// consolidator, and optionally persists ratings to a sink.
type Orchestrator struct {
	cfg      *config.Config
	logger   *utils.Logger
	scrapers map[string]scraper.Scraper
	writer   *storage.ResultWriter
	sink     storage.RatingSink
	tracker  *utils.URLTracker
}

// NewOrchestrator wires the orchestrator with the full adapter set. sink
// may be nil when no database is configured.
func NewOrchestrator(cfg *config.Config, logger *utils.Logger, scrapers map[string]scraper.Scraper, sink storage.RatingSink) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		logger:   logger,
		scrapers: scrapers,
		writer:   storage.NewResultWriter(cfg.ResultsDir, logger),
		sink:     sink,
		tracker:  utils.NewURLTracker(),
	}
}

// ScrapeSite runs one site's adapter over its configured hotels and writes
// the raw results file. An unknown site or a site with no configured hotels
// is an error; individual hotel failures are not (the adapter falls back).
func (o *Orchestrator) ScrapeSite(site string) (string, error) {
	s, ok := o.scrapers[site]
	if !ok {
		return "", fmt.Errorf("unknown site: %s", site)
	}

	hotels := o.cfg.HotelsForSite(site)
	for name, url := range hotels {
		if !o.tracker.Add(url) {
			o.logger.Warn("Skipping %s: URL already dispatched this run", name)
			delete(hotels, name)
		}
	}
	if len(hotels) == 0 {
		return "", fmt.Errorf("no hotels configured for %s", site)
	}

	o.logger.Info("Scraping %s (%d hotels)...", site, len(hotels))
	records := s.ScrapeMultipleHotels(hotels)

	path, err := o.writer.WriteRawResults(site, records)
	if err != nil {
		return "", fmt.Errorf("writing %s results: %w", site, err)
	}
	return path, nil
}

// ScrapeAllSites runs every requested site in the fixed order, pausing
// between sites. A failing site is logged and skipped; the run continues.
func (o *Orchestrator) ScrapeAllSites(sites []string) []string {
	ordered := orderSites(sites)

	var written []string
	for i, site := range ordered {
		path, err := o.ScrapeSite(site)
		if err != nil {
			o.logger.Error("%s failed: %v", site, err)
		} else {
			written = append(written, path)
		}

		if i < len(ordered)-1 && o.cfg.SitePauseMs > 0 {
			o.logger.Debug("Pausing %dms before next site", o.cfg.SitePauseMs)
			time.Sleep(time.Duration(o.cfg.SitePauseMs) * time.Millisecond)
		}
	}
	return written
}

// RunJob executes a full pipeline: scrape the requested sites, consolidate,
// persist to the sink when configured, and clean up raw files when enabled.
// It returns the consolidated report path and the report itself.
func (o *Orchestrator) RunJob(sites []string) (string, *models.ConsolidatedReport, error) {
	if len(sites) == 0 {
		sites = models.SiteOrder
	}
	for _, site := range sites {
		if !models.IsValidSite(site) {
			return "", nil, fmt.Errorf("invalid site: %s", site)
		}
	}

	o.tracker = utils.NewURLTracker()
	written := o.ScrapeAllSites(sites)
	if len(written) == 0 {
		return "", nil, fmt.Errorf("no site produced results")
	}

	consolidator := NewConsolidator(o.cfg.ResultsDir, o.logger)
	report, path, err := consolidator.GenerateConsolidatedReport()
	if err != nil {
		return "", nil, err
	}

	if o.sink != nil {
		if err := o.sink.SaveRatings(report.AllHotels()); err != nil {
			o.logger.Error("Failed to persist ratings: %v", err)
		}
	}

	if o.cfg.CleanupRaw {
		o.cleanupRawFiles(written)
	}

	return path, report, nil
}

// Consolidate rebuilds the consolidated report from whatever raw files are
// already on disk, without scraping.
func (o *Orchestrator) Consolidate() (string, error) {
	consolidator := NewConsolidator(o.cfg.ResultsDir, o.logger)
	_, path, err := consolidator.GenerateConsolidatedReport()
	return path, err
}

// Status reports which sites have raw data on disk and the newest
// consolidated report, if any.
func (o *Orchestrator) Status() map[string]any {
	status := map[string]any{}

	sites := map[string]bool{}
	for _, site := range models.SiteOrder {
		pattern := filepath.Join(o.cfg.ResultsDir, site+"_dados_*.json")
		_, ok := storage.LatestMatch(pattern)
		sites[site] = ok
	}
	status["sites"] = sites

	if latest, ok := storage.LatestResultFile(o.cfg.ResultsDir); ok {
		status["latest_report"] = latest
	}
	status["results_dir"] = o.cfg.ResultsDir
	return status
}

func (o *Orchestrator) cleanupRawFiles(paths []string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil {
			o.logger.Warn("Failed to remove %s: %v", path, err)
			continue
		}
		o.logger.Debug("Removed raw file %s", path)
	}
}

// orderSites filters and sorts the requested sites into the fixed run
// order, dropping duplicates.
func orderSites(sites []string) []string {
	requested := map[string]bool{}
	for _, s := range sites {
		requested[s] = true
	}

	var ordered []string
	for _, site := range models.SiteOrder {
		if requested[site] {
			ordered = append(ordered, site)
		}
	}
	return ordered
}
