package directory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrDuplicateEmail is returned when a producer insert hits the unique email
// constraint. Callers translate it to a user-facing "already registered"
// message instead of surfacing the raw constraint violation.
var ErrDuplicateEmail = errors.New("a producer with this email is already registered")

const pqUniqueViolation = "23505"

// Store provides database operations for directory entities
type Store struct {
	db *sql.DB
}

// NewStore creates a new directory store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const producerColumns = `id, user_id, company_name, contact_name, email, phone, address,
	postal_code, city, region, products, categories, description, website, logo_url,
	is_visible, is_blocked, created_at, updated_at`

func scanProducer(row interface{ Scan(...interface{}) error }) (*Producer, error) {
	p := &Producer{}
	var userID uuid.NullUUID
	err := row.Scan(&p.ID, &userID, &p.CompanyName, &p.ContactName, &p.Email, &p.Phone,
		&p.Address, &p.PostalCode, &p.City, &p.Region, &p.Products, &p.Categories,
		&p.Description, &p.Website, &p.LogoURL, &p.IsVisible, &p.IsBlocked,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		p.UserID = &userID.UUID
	}
	return p, nil
}

// ListVisible returns the public directory set: visible, non-blocked
// producers ordered by company name.
func (s *Store) ListVisible(ctx context.Context) ([]*Producer, error) {
	query := `SELECT ` + producerColumns + ` FROM producers
		WHERE is_visible = TRUE AND is_blocked = FALSE ORDER BY company_name`
	return s.queryProducers(ctx, query)
}

// ListAll returns every producer for the admin back office, newest first
func (s *Store) ListAll(ctx context.Context) ([]*Producer, error) {
	query := `SELECT ` + producerColumns + ` FROM producers ORDER BY created_at DESC`
	return s.queryProducers(ctx, query)
}

func (s *Store) queryProducers(ctx context.Context, query string, args ...interface{}) ([]*Producer, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var producers []*Producer
	for rows.Next() {
		p, err := scanProducer(rows)
		if err != nil {
			return nil, err
		}
		producers = append(producers, p)
	}
	return producers, rows.Err()
}

// Get retrieves a producer by ID
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Producer, error) {
	query := `SELECT ` + producerColumns + ` FROM producers WHERE id = $1`
	p, err := scanProducer(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// GetByUserID retrieves the producer owned by an identity-provider account
func (s *Store) GetByUserID(ctx context.Context, userID uuid.UUID) (*Producer, error) {
	query := `SELECT ` + producerColumns + ` FROM producers WHERE user_id = $1`
	p, err := scanProducer(s.db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// Create inserts a new producer. New producers default to visible unless the
// caller explicitly blocked them.
func (s *Store) Create(ctx context.Context, p *Producer) error {
	return s.create(ctx, s.db, p)
}

// CreateTx inserts a new producer inside an existing transaction
func (s *Store) CreateTx(ctx context.Context, tx *sql.Tx, p *Producer) error {
	return s.create(ctx, tx, p)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (s *Store) create(ctx context.Context, db execer, p *Producer) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()

	query := `INSERT INTO producers (id, user_id, company_name, contact_name, email, phone,
		address, postal_code, city, region, products, categories, description, website,
		logo_url, is_visible, is_blocked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	_, err := db.ExecContext(ctx, query, p.ID, p.UserID, p.CompanyName, p.ContactName,
		p.Email, p.Phone, p.Address, p.PostalCode, p.City, p.Region, p.Products,
		p.Categories, p.Description, p.Website, p.LogoURL, p.IsVisible, p.IsBlocked,
		p.CreatedAt, p.UpdatedAt)
	return translateUniqueViolation(err)
}

// Update rewrites the mutable profile fields of a producer
func (s *Store) Update(ctx context.Context, p *Producer) error {
	p.UpdatedAt = time.Now()

	query := `UPDATE producers SET company_name = $2, contact_name = $3, email = $4,
		phone = $5, address = $6, postal_code = $7, city = $8, region = $9, products = $10,
		categories = $11, description = $12, website = $13, logo_url = $14, updated_at = $15
		WHERE id = $1`

	_, err := s.db.ExecContext(ctx, query, p.ID, p.CompanyName, p.ContactName, p.Email,
		p.Phone, p.Address, p.PostalCode, p.City, p.Region, p.Products, p.Categories,
		p.Description, p.Website, p.LogoURL, p.UpdatedAt)
	return translateUniqueViolation(err)
}

// Delete removes a producer unconditionally
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM producers WHERE id = $1`, id)
	return err
}

// SetVisibility toggles the public visibility flag
func (s *Store) SetVisibility(ctx context.Context, id uuid.UUID, visible bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE producers SET is_visible = $2, updated_at = NOW() WHERE id = $1`, id, visible)
	return err
}

// SetBlocked toggles the blocked flag
func (s *Store) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE producers SET is_blocked = $2, updated_at = NOW() WHERE id = $1`, id, blocked)
	return err
}

// CreateImportHistory appends one import attempt record
func (s *Store) CreateImportHistory(ctx context.Context, h *ImportHistory) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	h.CreatedAt = time.Now()

	errorsJSON, err := json.Marshal(h.Errors)
	if err != nil {
		return err
	}

	query := `INSERT INTO import_history (id, filename, source, total_rows, imported_rows,
		failed_rows, errors, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = s.db.ExecContext(ctx, query, h.ID, h.Filename, h.Source, h.TotalRows,
		h.ImportedRows, h.FailedRows, errorsJSON, h.CreatedAt)
	return err
}

// ListImportHistory returns the most recent import attempts, newest first
func (s *Store) ListImportHistory(ctx context.Context, limit int) ([]*ImportHistory, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT id, filename, source, total_rows, imported_rows, failed_rows, errors, created_at
		FROM import_history ORDER BY created_at DESC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []*ImportHistory
	for rows.Next() {
		h := &ImportHistory{}
		var errorsJSON []byte
		if err := rows.Scan(&h.ID, &h.Filename, &h.Source, &h.TotalRows, &h.ImportedRows,
			&h.FailedRows, &errorsJSON, &h.CreatedAt); err != nil {
			return nil, err
		}
		if len(errorsJSON) > 0 {
			_ = json.Unmarshal(errorsJSON, &h.Errors)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// CountProducers returns the total number of producers and how many of them
// appear in the public directory.
func (s *Store) CountProducers(ctx context.Context) (total, visible int, err error) {
	query := `SELECT COUNT(*),
		COUNT(*) FILTER (WHERE is_visible = TRUE AND is_blocked = FALSE)
		FROM producers`

	err = s.db.QueryRowContext(ctx, query).Scan(&total, &visible)
	return total, visible, err
}

// BeginTx starts a transaction for callers that compose multiple writes
func (s *Store) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

func translateUniqueViolation(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return ErrDuplicateEmail
	}
	return err
}
