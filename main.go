package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"hotel-scraper/api"
	"hotel-scraper/config"
	"hotel-scraper/models"
	"hotel-scraper/scraper"
	"hotel-scraper/scraper/booking"
	"hotel-scraper/scraper/decolar"
	"hotel-scraper/scraper/google"
	"hotel-scraper/scraper/tripadvisor"
	"hotel-scraper/services"
	"hotel-scraper/storage"
	"hotel-scraper/utils"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "hotel-scraper",
		Short: "Multi-site hotel rating scraper and consolidator",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.env", "path to config file")

	root.AddCommand(newScrapeCmd())
	root.AddCommand(newConsolidateCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and wires the orchestrator with the full
// adapter set. The rating sink is attached only when a database URL is
// configured; a sink failure degrades to file-only output.
func bootstrap() (*config.Config, *utils.Logger, *services.Orchestrator) {
	logger := utils.NewLogger()
	cfg := config.Load(configPath)

	scrapers := map[string]scraper.Scraper{
		models.SiteTripAdvisor: tripadvisor.New(cfg, logger),
		models.SiteBooking:     booking.New(cfg, logger),
		models.SiteGoogle:      google.New(cfg, logger),
		models.SiteDecolar:     decolar.New(cfg, logger),
	}

	var sink storage.RatingSink
	if cfg.DatabaseURL != "" {
		pgWriter, err := storage.NewPostgresWriter(cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("Cannot connect to PostgreSQL: %v", err)
		} else if err := pgWriter.CreateTable(); err != nil {
			logger.Error("Failed to create ratings table: %v", err)
			pgWriter.Close()
		} else {
			sink = pgWriter
		}
	}

	return cfg, logger, services.NewOrchestrator(cfg, logger, scrapers, sink)
}

func newScrapeCmd() *cobra.Command {
	var site string
	var sites string

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape configured hotels and generate the consolidated report",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, orch := bootstrap()

			var selected []string
			switch {
			case site != "":
				selected = []string{site}
			case sites != "":
				selected = strings.Split(sites, ",")
				for i := range selected {
					selected[i] = strings.TrimSpace(selected[i])
				}
			}

			_, report, err := orch.RunJob(selected)
			if err != nil {
				return err
			}

			services.PrintConsolidatedReport(report)
			logger.Info("Scraping run finished")
			return nil
		},
	}

	cmd.Flags().StringVar(&site, "site", "", "scrape a single site")
	cmd.Flags().StringVar(&sites, "sites", "", "comma-separated list of sites")
	return cmd
}

func newConsolidateCmd() *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Rebuild the consolidated report from existing raw files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, _ := bootstrap()

			consolidator := services.NewConsolidator(cfg.ResultsDir, logger)
			report, path, err := consolidator.GenerateConsolidatedReport()
			if err != nil {
				return err
			}
			consolidator.UpdateIndividualJSONs()

			if csvPath != "" {
				csvWriter := storage.NewCSVWriter(csvPath, logger)
				if err := csvWriter.WriteHotels(report.AllHotels()); err != nil {
					logger.Error("CSV export failed: %v", err)
				}
			}

			services.PrintConsolidatedReport(report)
			logger.Info("Report: %s", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "also export normalized hotels to this CSV file")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which sites have data and the latest report",
		Run: func(cmd *cobra.Command, args []string) {
			_, logger, orch := bootstrap()

			status := orch.Status()
			logger.Info("Results dir: %v", status["results_dir"])
			if latest, ok := status["latest_report"]; ok {
				logger.Info("Latest report: %v", latest)
			} else {
				logger.Info("No consolidated report yet")
			}
			for site, has := range status["sites"].(map[string]bool) {
				logger.Info("  %-12s data: %v", site, has)
			}
		},
	}
}

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP job API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, orch := bootstrap()
			if port != "" {
				cfg.APIPort = port
			}

			server := api.NewServer(cfg, logger, orch, api.NewMemoryJobStore())
			return server.Run()
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "override API port")
	return cmd
}
