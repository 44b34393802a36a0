package services

import (
	"fmt"
	"sort"
	"strings"

	"hotel-scraper/models"
)

// PrintConsolidatedReport formats and prints the consolidated report to
// terminal.
func PrintConsolidatedReport(report *models.ConsolidatedReport) {
	border := strings.Repeat("═", 55)
	thin := strings.Repeat("─", 55)

	fmt.Printf("\n╔%s╗\n", border)
	fmt.Printf("║%s║\n", center("HOTEL RATINGS — CONSOLIDATED REPORT ", 55))
	fmt.Printf("╚%s╝\n", border)

	fmt.Printf("\n OVERVIEW\n%s\n", thin)
	fmt.Printf("  Sites with data         : %d\n", report.Metadata.TotalSites)
	fmt.Printf("  Total Hotels            : %d\n", report.Metadata.TotalHotels)
	fmt.Printf("  Total Reviews           : %d\n", report.Metadata.TotalReviews)
	fmt.Printf("  Global Average Rating   : %.2f\n", report.Metadata.GlobalAverageRating)

	for _, site := range models.SiteOrder {
		siteReport, ok := report.Sites[site]
		if !ok {
			continue
		}
		fmt.Printf("\n %s (scale %s)\n%s\n", strings.ToUpper(site), siteReport.SiteInfo.RatingScale, thin)
		fmt.Printf("  Hotels   : %d\n", siteReport.Metadata.TotalHotels)
		fmt.Printf("  Reviews  : %d\n", siteReport.Metadata.ExtractionStats.TotalReviews)
		fmt.Printf("  Avg      : %.2f\n", siteReport.Metadata.ExtractionStats.AverageRating)

		hotels := append([]models.NormalizedHotel(nil), siteReport.Hotels...)
		sort.Slice(hotels, func(i, j int) bool {
			return hotels[i].Rating > hotels[j].Rating
		})
		for i, h := range hotels {
			if i >= 5 {
				break
			}
			fmt.Printf("  %d. %-35s %.1f (%d reviews)\n", i+1, truncate(h.HotelName, 35), h.Rating, h.ReviewCount)
		}
	}

	fmt.Printf("\n%s\n\n", border)
}

func center(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	pad := (width - len(runes)) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-len(runes)-pad)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
