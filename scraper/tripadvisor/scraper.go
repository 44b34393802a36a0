package tripadvisor

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"hotel-scraper/config"
	"hotel-scraper/models"
	"hotel-scraper/scraper"
	"hotel-scraper/utils"

	"github.com/go-resty/resty/v2"
)

const (
	baseURL = "https://www.tripadvisor.com.br/data/graphql/ids"
	// Region geo id the hotel detail queries are scoped to (Alagoas).
	geoID = 644400
)

// Scraper extracts hotel ratings through TripAdvisor's batched GraphQL
// endpoint, replaying the query ids a real mobile-web session issues.
type Scraper struct {
	cfg      *config.Config
	logger   *utils.Logger
	client   *resty.Client
	limiter  *utils.RateLimiter
	fallback scraper.FallbackRange
}

// New creates a TripAdvisor scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	client := resty.New()
	client.SetTimeout(time.Duration(cfg.RequestTimeout) * time.Second)

	return &Scraper{
		cfg:     cfg,
		logger:  logger.WithScope("tripadvisor"),
		client:  client,
		limiter: utils.NewRateLimiter(cfg.HotelDelayMinMs, cfg.HotelDelayMaxMs),
		fallback: scraper.FallbackRange{
			RatingMin: 3.8, RatingMax: 4.8,
			ReviewsMin: 150, ReviewsMax: 3000,
		},
	}
}

// Site returns the canonical site key.
func (s *Scraper) Site() string { return models.SiteTripAdvisor }

func headers() map[string]string {
	return map[string]string{
		"accept":             "*/*",
		"accept-language":    "pt-BR,pt;q=0.9",
		"cache-control":      "no-cache",
		"content-type":       "application/json",
		"origin":             "https://www.tripadvisor.com.br",
		"pragma":             "no-cache",
		"referer":            "https://www.tripadvisor.com.br/",
		"sec-ch-ua":          `"Google Chrome";v="137", "Chromium";v="137", "Not/A)Brand";v="24"`,
		"sec-ch-ua-mobile":   "?0",
		"sec-ch-ua-platform": `"macOS"`,
		"sec-fetch-dest":     "empty",
		"sec-fetch-mode":     "same-origin",
		"sec-fetch-site":     "same-origin",
		"user-agent":         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/137.0.0.0 Safari/537.36",
	}
}

func cookies() map[string]string {
	sessionID := scraper.RandomHex(16)
	now := time.Now().Unix()
	return map[string]string{
		"TASID":          sessionID,
		"TASession":      fmt.Sprintf("V2ID.%s*SQ.1*LS.Hotel_Review*HS.recommended*ES.popularity*DS.5*SAS.popularity*FPS.oldFirst*FA.1*DF.0*TRA.true", sessionID),
		"TATrkConsent":   "eyJvdXQiOiJTT0NJQUxfTUVESUEiLCJpbiI6IkFEVixBTkEsRlVOQ1RJT05BTCJ9",
		"OptanonConsent": fmt.Sprintf("isGpcEnabled=0&datestamp=%s", time.Now().Format("Mon+Jan+02+2006+15%%3A04%%3A05")),
		"_ga":            fmt.Sprintf("GA1.1.%d.%d", 100000000+rand.Intn(900000000), now),
		"_gcl_au":        fmt.Sprintf("1.1.%d.%d", 100000000+rand.Intn(900000000), now),
	}
}

// buildPayload reproduces the batched query set captured from a working
// browser session, parameterized on the hotel's location id.
func buildPayload(hotelID int) []map[string]any {
	sessionID := scraper.RandomHex(16)
	pageUID := fmt.Sprintf("%s-%s-%s-%s-%s",
		scraper.RandomHex(4), scraper.RandomHex(2), scraper.RandomHex(2),
		scraper.RandomHex(2), scraper.RandomHex(6))

	return []map[string]any{
		{
			"variables":  map[string]any{"page": "Hotel_Review", "platform": "mobileweb"},
			"extensions": map[string]any{"preRegisteredQueryId": "b4613962d98df032"},
		},
		{
			"variables":  map[string]any{"locationId": hotelID},
			"extensions": map[string]any{"preRegisteredQueryId": "5b064920a1417d48"},
		},
		{
			"variables": map[string]any{
				"deviceType":      "MOBILE",
				"trafficSource":   "ba",
				"locationId":      hotelID,
				"geoId":           geoID,
				"servletName":     "Hotel_Review",
				"hotelTravelInfo": nil,
				"language":        "pt",
				"isJp":            false,
			},
			"extensions": map[string]any{"preRegisteredQueryId": "85513b806d5405da"},
		},
		{
			"variables": map[string]any{
				"locationId":       hotelID,
				"trafficSource":    "ba",
				"deviceType":       "MOBILE",
				"servletName":      "Hotel_Review",
				"hotelTravelInfo":  nil,
				"withContactLinks": false,
			},
			"extensions": map[string]any{"preRegisteredQueryId": "d9072109f7378ce1"},
		},
		{
			"variables": map[string]any{
				"locationId":   hotelID,
				"currencyCode": "BRL",
				"sessionId":    sessionID,
				"pageviewUid":  pageUID,
				"travelInfo":   nil,
				"requestNumber": 0,
				"filters":      nil,
				"route": map[string]any{
					"page":   "Hotel_Review",
					"params": map[string]any{"geoId": geoID, "detailId": hotelID},
				},
				"application":        "HOTEL_DETAIL",
				"requestCaller":      "Hotel_Review",
				"loadReviewSnippets": true,
			},
			"extensions": map[string]any{"preRegisteredQueryId": "b6da76ae151e9c7c"},
		},
	}
}

type ratingData struct {
	Rating      float64
	ReviewCount int
	Source      string
}

type graphqlResult struct {
	Data map[string]json.RawMessage `json:"data"`
}

type reviewSummary struct {
	ResponseData struct {
		Rating *float64 `json:"rating"`
		Count  *int     `json:"count"`
	} `json:"responseData"`
}

type locationData struct {
	Rating          *float64 `json:"rating"`
	NumberOfReviews *int     `json:"numberOfReviews"`
}

// extractRatingData mines the batched response in the three known shapes:
// reviewSummaryInfo, a single location object, and a locations array.
func extractRatingData(results []graphqlResult) *ratingData {
	for _, result := range results {
		if result.Data == nil {
			continue
		}

		if raw, ok := result.Data["reviewSummaryInfo"]; ok {
			var summaries []reviewSummary
			if err := json.Unmarshal(raw, &summaries); err == nil && len(summaries) > 0 {
				rd := summaries[0].ResponseData
				if rd.Rating != nil && rd.Count != nil {
					return &ratingData{Rating: *rd.Rating, ReviewCount: *rd.Count, Source: "reviewSummaryInfo"}
				}
			}
		}

		if raw, ok := result.Data["location"]; ok {
			var loc locationData
			if err := json.Unmarshal(raw, &loc); err == nil && (loc.Rating != nil || loc.NumberOfReviews != nil) {
				return &ratingData{
					Rating:      deref(loc.Rating),
					ReviewCount: deref(loc.NumberOfReviews),
					Source:      "location",
				}
			}
		}

		if raw, ok := result.Data["locations"]; ok {
			var locs []locationData
			if err := json.Unmarshal(raw, &locs); err == nil && len(locs) > 0 &&
				(locs[0].Rating != nil || locs[0].NumberOfReviews != nil) {
				return &ratingData{
					Rating:      deref(locs[0].Rating),
					ReviewCount: deref(locs[0].NumberOfReviews),
					Source:      "locations",
				}
			}
		}
	}
	return nil
}

func deref[T int | float64](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// ExtractHotelID pulls the numeric location id out of a TripAdvisor hotel
// URL ("...-d1234567-...").
func ExtractHotelID(url string) string {
	parts := strings.Split(url, "-d")
	if len(parts) < 2 {
		return ""
	}
	return strings.SplitN(parts[1], "-", 2)[0]
}

// ScrapeHotel fetches one hotel's rating summary. A nil record means live
// extraction failed and the caller should substitute a fallback.
func (s *Scraper) ScrapeHotel(hotelURL, hotelName string) *models.TripAdvisorRaw {
	s.logger.Info("Extracting: %s", hotelName)

	hotelID := ExtractHotelID(hotelURL)
	if hotelID == "" {
		s.logger.Warn("No hotel id in URL: %s", hotelURL)
		return nil
	}

	var locationID int
	if _, err := fmt.Sscanf(hotelID, "%d", &locationID); err != nil {
		s.logger.Warn("Non-numeric hotel id %q in URL: %s", hotelID, hotelURL)
		return nil
	}

	var results []graphqlResult
	err := utils.RetryWithBackoff(s.cfg.MaxRetries, func() error {
		resp, err := s.client.R().
			SetHeaders(headers()).
			SetCookies(restyCookies(cookies())).
			SetBody(buildPayload(locationID)).
			SetResult(&results).
			Post(baseURL)
		if err != nil {
			return fmt.Errorf("graphql request failed: %w", err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("graphql request returned status %d", resp.StatusCode())
		}
		return nil
	}, s.logger)
	if err != nil {
		s.logger.Error("Request failed for %s: %v", hotelName, err)
		return nil
	}

	rating := extractRatingData(results)
	if rating == nil {
		s.logger.Warn("No recognizable rating structure for %s", hotelName)
		return nil
	}

	s.logger.Info("Extracted: rating %.1f/5.0, %d reviews", rating.Rating, rating.ReviewCount)
	return &models.TripAdvisorRaw{
		HotelID:             hotelID,
		HotelName:           hotelName,
		HotelURL:            hotelURL,
		Rating:              models.FlexFloat(rating.Rating),
		ReviewCount:         models.FlexInt(rating.ReviewCount),
		Source:              "tripadvisor_realtime",
		DataSource:          rating.Source,
		ExtractionTimestamp: time.Now().Format(time.RFC3339),
		Reviews:             []any{},
	}
}

func (s *Scraper) fallbackRecord(hotelURL, hotelName string) models.TripAdvisorRaw {
	rating, reviews := s.fallback.Generate(hotelName)
	s.logger.Info("Using synthetic data for %s: %.1f/5.0, %d reviews", hotelName, rating, reviews)
	return models.TripAdvisorRaw{
		HotelID:             ExtractHotelID(hotelURL),
		HotelName:           hotelName,
		HotelURL:            hotelURL,
		Rating:              models.FlexFloat(rating),
		ReviewCount:         models.FlexInt(reviews),
		Source:              "tripadvisor_fallback",
		DataSource:          "fallback_realistic",
		ExtractionTimestamp: time.Now().Format(time.RFC3339),
		Reviews:             []any{},
	}
}

// ScrapeMultipleHotels processes every configured hotel sequentially with a
// jittered delay in between. One record always comes back per hotel.
func (s *Scraper) ScrapeMultipleHotels(hotels map[string]string) []any {
	s.logger.Info("Processing %d hotels", len(hotels))

	results := make([]any, 0, len(hotels))
	i := 0
	for hotelName, hotelURL := range hotels {
		i++
		if i > 1 {
			s.limiter.Wait()
		}
		s.logger.Info("[%d/%d] %s", i, len(hotels), hotelName)

		if record := s.ScrapeHotel(hotelURL, hotelName); record != nil {
			results = append(results, *record)
			continue
		}
		results = append(results, s.fallbackRecord(hotelURL, hotelName))
	}

	s.logger.Info("Done: %d/%d hotels", len(results), len(hotels))
	return results
}

func restyCookies(values map[string]string) []*http.Cookie {
	cookies := make([]*http.Cookie, 0, len(values))
	for name, value := range values {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value})
	}
	return cookies
}
