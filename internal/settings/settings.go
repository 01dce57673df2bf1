// Package settings stores site-wide key/value settings and fronts them with
// a Redis read-through cache so the header and footer share one fetch
// instead of each hitting the database.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyLogoURL is the only setting the landing page currently reads
const KeyLogoURL = "logo_url"

const (
	cachePrefix = "site_settings:"
	cacheTTL    = 5 * time.Minute
)

// Setting is one site_settings row
type Setting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	UpdatedBy string    `json:"updated_by" db:"updated_by"`
}

// Store provides cached access to site settings
type Store struct {
	db    *sql.DB
	redis *redis.Client
}

// NewStore creates a new settings store
func NewStore(db *sql.DB, redisClient *redis.Client) *Store {
	return &Store{db: db, redis: redisClient}
}

// Get returns a setting value, serving from Redis when possible. A cache
// miss reads the database and populates the cache; an unset key returns the
// empty string without error.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, cachePrefix+key).Result()
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, redis.Nil) {
			log.Printf("[settings] cache read failed for %s: %v", key, err)
		}
	}

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM site_settings WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, cachePrefix+key, value, cacheTTL).Err(); err != nil {
			log.Printf("[settings] cache write failed for %s: %v", key, err)
		}
	}
	return value, nil
}

// Set upserts a setting and invalidates its cache entry
func (s *Store) Set(ctx context.Context, key, value, updatedBy string) error {
	query := `INSERT INTO site_settings (key, value, updated_at, updated_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value,
		updated_at = EXCLUDED.updated_at, updated_by = EXCLUDED.updated_by`

	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now(), updatedBy); err != nil {
		return err
	}

	if s.redis != nil {
		if err := s.redis.Del(ctx, cachePrefix+key).Err(); err != nil {
			log.Printf("[settings] cache invalidation failed for %s: %v", key, err)
		}
	}
	return nil
}

// LogoURL is a convenience accessor for the shared site logo
func (s *Store) LogoURL(ctx context.Context) (string, error) {
	return s.Get(ctx, KeyLogoURL)
}
