package storage

import (
	"database/sql"
	"fmt"
	"time"

	"hotel-scraper/models"
	"hotel-scraper/utils"

	_ "github.com/lib/pq"
)

// PostgresWriter stores normalized hotel records in PostgreSQL. It is an
// optional sink; the filesystem reports remain the source of truth.
type PostgresWriter struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresWriter creates a new PostgresWriter and pings the DB
func NewPostgresWriter(connStr string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Minute * 5)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	logger.Info("Connected to PostgreSQL successfully")
	return &PostgresWriter{db: db, logger: logger}, nil
}

// CreateTable creates the hotel_ratings table if it doesn't exist, with indexes
func (w *PostgresWriter) CreateTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS hotel_ratings (
		id            SERIAL PRIMARY KEY,
		site          VARCHAR(20)  NOT NULL,
		hotel_id      TEXT         NOT NULL,
		hotel_name    TEXT         NOT NULL,
		rating        NUMERIC(4,2) DEFAULT 0,
		max_rating    NUMERIC(4,2) DEFAULT 5,
		review_count  INTEGER      DEFAULT 0,
		url           TEXT,
		source        TEXT,
		data_source   TEXT,
		extracted_at  TEXT         NOT NULL DEFAULT '',
		stored_at     TIMESTAMP    NOT NULL DEFAULT NOW(),
		UNIQUE (site, hotel_id, extracted_at)
	);

	CREATE INDEX IF NOT EXISTS idx_hotel_ratings_site   ON hotel_ratings (site);
	CREATE INDEX IF NOT EXISTS idx_hotel_ratings_hotel  ON hotel_ratings (hotel_id);
	CREATE INDEX IF NOT EXISTS idx_hotel_ratings_rating ON hotel_ratings (rating);
	`
	_, err := w.db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	w.logger.Info("Table 'hotel_ratings' is ready")
	return nil
}

// SaveRatings inserts normalized records in a single transaction, skipping
// duplicates from earlier runs.
func (w *PostgresWriter) SaveRatings(hotels []models.NormalizedHotel) error {
	if len(hotels) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(`
		INSERT INTO hotel_ratings
			(site, hotel_id, hotel_name, rating, max_rating, review_count, url, source, data_source, extracted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (site, hotel_id, extracted_at) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, h := range hotels {
		_, err = stmt.Exec(
			h.Site,
			h.HotelID,
			h.HotelName,
			h.Rating,
			h.MaxRating,
			h.ReviewCount,
			h.URL,
			h.Source,
			h.DataSource,
			h.ExtractionTimestamp,
		)
		if err != nil {
			w.logger.Warn("Skipping insert for '%s': %v", h.HotelName, err)
			continue
		}
		inserted++
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.logger.Info("Inserted %d/%d hotel ratings into PostgreSQL", inserted, len(hotels))
	return nil
}

// Close closes the database connection
func (w *PostgresWriter) Close() {
	if w.db != nil {
		_ = w.db.Close()
	}
}
