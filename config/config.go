package config

import (
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/joho/godotenv"
)

// Config holds all application-level configuration. Hotel definitions stay
// in the raw key/value map and are enumerated per site on demand.
type Config struct {
	// Output
	ResultsDir string
	CleanupRaw bool

	// Optional PostgreSQL sink for normalized records
	DatabaseURL string

	// Scraper
	HotelDelayMinMs int // jittered delay between hotel requests
	HotelDelayMaxMs int
	SitePauseMs     int // pause between sites in a multi-site run
	MaxRetries      int
	RequestTimeout  int // seconds

	// Google Places
	GoogleAPIKey string

	// API
	APIPort       string
	APISecretKey  string
	APIEnableAuth bool

	vars map[string]string
}

// denyList names config keys that look like hotel entries because of their
// site prefix but are operational settings, never hotels.
var denyList = map[string]struct{}{
	"GOOGLE_API_KEY":  {},
	"API_SECRET_KEY":  {},
	"API_ENABLE_AUTH": {},
	"API_PORT":        {},
	"DATABASE_URL":    {},
	"RESULTS_DIR":     {},
	"CLEANUP_RAW":     {},
}

// connectives stay lower case when a hotel key is formatted for display.
var connectives = map[string]struct{}{
	"de": {}, "da": {}, "do": {}, "das": {}, "dos": {}, "e": {},
}

// Load reads configuration from the given key=value file (missing files are
// fine, the file only supplements the environment) and from environment
// variables, which always win.
func Load(path string) *Config {
	vars := map[string]string{}
	if path != "" {
		if fileVars, err := godotenv.Read(path); err == nil {
			vars = fileVars
		}
	}

	cfg := &Config{vars: vars}
	cfg.ResultsDir = cfg.Get("RESULTS_DIR", "resultados")
	cfg.CleanupRaw = strings.EqualFold(cfg.Get("CLEANUP_RAW", "false"), "true")
	cfg.DatabaseURL = cfg.Get("DATABASE_URL", "")
	cfg.HotelDelayMinMs = cfg.GetInt("HOTEL_DELAY_MIN_MS", 3000)
	cfg.HotelDelayMaxMs = cfg.GetInt("HOTEL_DELAY_MAX_MS", 8000)
	cfg.SitePauseMs = cfg.GetInt("SITE_PAUSE_MS", 2000)
	cfg.MaxRetries = cfg.GetInt("MAX_RETRIES", 3)
	cfg.RequestTimeout = cfg.GetInt("REQUEST_TIMEOUT_S", 15)
	cfg.GoogleAPIKey = cfg.Get("GOOGLE_API_KEY", "")
	cfg.APIPort = cfg.Get("API_PORT", "8000")
	cfg.APISecretKey = cfg.Get("API_SECRET_KEY", "")
	cfg.APIEnableAuth = strings.EqualFold(cfg.Get("API_ENABLE_AUTH", "true"), "true")
	return cfg
}

// Get looks a key up in the environment first, then in the config file.
func (c *Config) Get(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if val, ok := c.vars[key]; ok && val != "" {
		return val
	}
	return defaultVal
}

// GetInt is Get with integer parsing; unparseable values fall back.
func (c *Config) GetInt(key string, defaultVal int) int {
	if val := c.Get(key, ""); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

// Len returns how many keys the config file contributed.
func (c *Config) Len() int {
	return len(c.vars)
}

// HotelsForSite enumerates the hotels configured for a site. Keys follow the
// {SITE}_{HOTEL_KEY}=url convention; an optional {SITE}_{HOTEL_KEY}_NAME key
// overrides the display name. Keys on the deny-list and keys ending in _ID
// are never hotels.
func (c *Config) HotelsForSite(site string) map[string]string {
	prefix := strings.ToUpper(site) + "_"
	hotels := map[string]string{}

	for key, value := range c.vars {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if _, denied := denyList[key]; denied {
			continue
		}
		if strings.HasSuffix(key, "_ID") || strings.HasSuffix(key, "_NAME") {
			continue
		}

		hotelKey := strings.TrimPrefix(key, prefix)
		name := c.vars[key+"_NAME"]
		if name == "" {
			name = FormatHotelName(hotelKey)
		}
		hotels[name] = value
	}

	return hotels
}

// FormatHotelName turns a config key like MARAGOGI_BRISA_EXCLUSIVE into a
// display name like "Maragogi Brisa Exclusive". Portuguese connectives stay
// lower case and a "Hotel " prefix is applied unless the name already reads
// like a property name.
func FormatHotelName(hotelKey string) string {
	words := strings.Fields(strings.ReplaceAll(strings.ToLower(hotelKey), "_", " "))
	for i, word := range words {
		if _, keep := connectives[word]; keep {
			continue
		}
		words[i] = capitalize(word)
	}

	name := strings.Join(words, " ")
	lower := strings.ToLower(name)
	for _, prefix := range []string{"hotel", "maragogi", "pousada", "resort"} {
		if strings.HasPrefix(lower, prefix) {
			return name
		}
	}
	return "Hotel " + name
}

func capitalize(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
