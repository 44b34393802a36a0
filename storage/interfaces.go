package storage

import "hotel-scraper/models"

// RatingSink persists normalized hotel records outside the results
// directory, e.g. in PostgreSQL.
type RatingSink interface {
	SaveRatings(hotels []models.NormalizedHotel) error
	Close()
}
