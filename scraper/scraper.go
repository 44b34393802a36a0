package scraper

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// Scraper is the contract every site adapter exposes to the orchestrator.
type Scraper interface {
	// Site returns the canonical site key the adapter serves.
	Site() string
	// ScrapeMultipleHotels fetches rating data for every configured hotel,
	// keyed by display name. Values are hotel page URLs or search terms
	// depending on the site. Extraction failures yield synthetic records;
	// only hotels whose URL carries no recognizable hotel id are dropped.
	ScrapeMultipleHotels(hotels map[string]string) []any
}

// RandomHex returns n random bytes hex-encoded, upper case. Session cookies
// fabricated by the adapters use it.
func RandomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return strings.Repeat("0", n*2)
	}
	return strings.ToUpper(hex.EncodeToString(buf))
}
