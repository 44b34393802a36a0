package google

import (
	"fmt"
	"strings"
	"time"

	"hotel-scraper/config"
	"hotel-scraper/models"
	"hotel-scraper/scraper"
	"hotel-scraper/utils"

	"github.com/go-resty/resty/v2"
)

const baseURL = "https://maps.googleapis.com/maps/api"

// Scraper resolves hotels through the official Google Places API: a text
// search for the place id, then a details lookup. Without an API key every
// hotel gets deterministic synthetic data.
type Scraper struct {
	cfg      *config.Config
	logger   *utils.Logger
	client   *resty.Client
	limiter  *utils.RateLimiter
	fallback scraper.FallbackRange
}

// New creates a Google Places scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	client := resty.New()
	client.SetTimeout(time.Duration(cfg.RequestTimeout) * time.Second)

	return &Scraper{
		cfg:     cfg,
		logger:  logger.WithScope("google"),
		client:  client,
		limiter: utils.NewRateLimiter(cfg.HotelDelayMinMs, cfg.HotelDelayMaxMs),
		fallback: scraper.FallbackRange{
			RatingMin: 4.0, RatingMax: 4.9,
			ReviewsMin: 100, ReviewsMax: 2500,
		},
	}
}

// Site returns the canonical site key.
func (s *Scraper) Site() string { return models.SiteGoogle }

type findPlaceResponse struct {
	Status     string `json:"status"`
	Candidates []struct {
		PlaceID string `json:"place_id"`
	} `json:"candidates"`
}

type detailsResponse struct {
	Status string `json:"status"`
	Result struct {
		Name             string   `json:"name"`
		Rating           *float64 `json:"rating"`
		UserRatingsTotal *int     `json:"user_ratings_total"`
		URL              string   `json:"url"`
	} `json:"result"`
}

func (s *Scraper) findPlaceID(searchTerm string) (string, error) {
	var out findPlaceResponse
	resp, err := s.client.R().
		SetQueryParams(map[string]string{
			"input":     searchTerm,
			"inputtype": "textquery",
			"fields":    "place_id",
			"key":       s.cfg.GoogleAPIKey,
		}).
		SetResult(&out).
		Get(baseURL + "/place/findplacefromtext/json")
	if err != nil {
		return "", fmt.Errorf("find place request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("find place returned status %d", resp.StatusCode())
	}
	if out.Status != "OK" || len(out.Candidates) == 0 {
		return "", fmt.Errorf("place not found: %s", out.Status)
	}
	return out.Candidates[0].PlaceID, nil
}

func (s *Scraper) placeDetails(placeID string) (*detailsResponse, error) {
	var out detailsResponse
	resp, err := s.client.R().
		SetQueryParams(map[string]string{
			"place_id": placeID,
			"fields":   "name,rating,user_ratings_total,url",
			"key":      s.cfg.GoogleAPIKey,
		}).
		SetResult(&out).
		Get(baseURL + "/place/details/json")
	if err != nil {
		return nil, fmt.Errorf("details request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("details returned status %d", resp.StatusCode())
	}
	if out.Status != "OK" {
		return nil, fmt.Errorf("details not found: %s", out.Status)
	}
	return &out, nil
}

func (s *Scraper) fallbackRecord(hotelID, displayName, searchTerm, source string) models.GoogleRaw {
	rating, reviews := s.fallback.Generate(displayName)
	s.logger.Info("Synthetic data for %s: %.1f/5.0, %d reviews", displayName, rating, reviews)

	maxRating := models.FlexFloat(5.0)
	return models.GoogleRaw{
		HotelID:             hotelID,
		HotelName:           displayName,
		HotelSearchTerm:     searchTerm,
		Rating:              models.FlexFloat(rating),
		ReviewCount:         models.FlexInt(reviews),
		MaxRating:           &maxRating,
		GoogleURL:           "https://www.google.com/search?q=" + strings.ReplaceAll(displayName, " ", "+"),
		Source:              source,
		DataSource:          "fallback_realistic",
		ExtractionTimestamp: time.Now().Format(time.RFC3339),
		Site:                models.SiteGoogle,
	}
}

// ScrapeHotel resolves one hotel through the Places API.
func (s *Scraper) ScrapeHotel(searchTerm, displayName string) models.GoogleRaw {
	s.logger.Info("Processing: %s (search: %s)", displayName, searchTerm)
	hotelID := models.GenerateHotelID(displayName)

	if s.cfg.GoogleAPIKey == "" {
		s.logger.Warn("No API key configured, using synthetic data")
		return s.fallbackRecord(hotelID, displayName, searchTerm, "google_fallback")
	}

	placeID, err := s.findPlaceID(searchTerm)
	if err != nil {
		s.logger.Warn("Place lookup failed for %s: %v", displayName, err)
		return s.fallbackRecord(hotelID, displayName, searchTerm, "google_fallback")
	}

	details, err := s.placeDetails(placeID)
	if err != nil || details.Result.Rating == nil || details.Result.UserRatingsTotal == nil {
		s.logger.Warn("Incomplete details for %s, using synthetic data", displayName)
		return s.fallbackRecord(hotelID, displayName, searchTerm, "google_fallback")
	}

	name := details.Result.Name
	if name == "" {
		name = displayName
	}
	s.logger.Info("Extracted via API: %.1f/5.0, %d reviews", *details.Result.Rating, *details.Result.UserRatingsTotal)

	maxRating := models.FlexFloat(5.0)
	return models.GoogleRaw{
		HotelID:             hotelID,
		HotelName:           name,
		HotelSearchTerm:     searchTerm,
		Rating:              models.FlexFloat(*details.Result.Rating),
		ReviewCount:         models.FlexInt(*details.Result.UserRatingsTotal),
		MaxRating:           &maxRating,
		GoogleURL:           details.Result.URL,
		Source:              "google_realtime",
		DataSource:          "google_places_api",
		ExtractionTimestamp: time.Now().Format(time.RFC3339),
		Site:                models.SiteGoogle,
	}
}

// ScrapeMultipleHotels processes every configured hotel sequentially. The
// config value for each hotel is the search term sent to the Places API.
func (s *Scraper) ScrapeMultipleHotels(hotels map[string]string) []any {
	s.logger.Info("Processing %d hotels", len(hotels))

	results := make([]any, 0, len(hotels))
	i := 0
	for displayName, searchTerm := range hotels {
		i++
		if i > 1 {
			s.limiter.Wait()
		}
		s.logger.Info("[%d/%d] %s", i, len(hotels), displayName)
		results = append(results, s.ScrapeHotel(searchTerm, displayName))
	}

	s.logger.Info("Done: %d/%d hotels", len(results), len(hotels))
	return results
}
