package campaign

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store provides database operations for templates, campaigns and recipients
type Store struct {
	db *sql.DB
}

// NewStore creates a new campaign store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Template operations

// CreateTemplate inserts a new email template
func (s *Store) CreateTemplate(ctx context.Context, tpl *EmailTemplate) error {
	if tpl.ID == uuid.Nil {
		tpl.ID = uuid.New()
	}
	tpl.CreatedAt = time.Now()
	tpl.UpdatedAt = time.Now()

	query := `INSERT INTO email_templates (id, name, subject, content, variables, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, query, tpl.ID, tpl.Name, tpl.Subject, tpl.Content,
		tpl.Variables, tpl.CreatedAt, tpl.UpdatedAt)
	return err
}

// GetTemplate retrieves a template by ID
func (s *Store) GetTemplate(ctx context.Context, id uuid.UUID) (*EmailTemplate, error) {
	query := `SELECT id, name, subject, content, variables, created_at, updated_at
		FROM email_templates WHERE id = $1`

	tpl := &EmailTemplate{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(&tpl.ID, &tpl.Name, &tpl.Subject,
		&tpl.Content, &tpl.Variables, &tpl.CreatedAt, &tpl.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return tpl, err
}

// ListTemplates returns all templates ordered by name
func (s *Store) ListTemplates(ctx context.Context) ([]*EmailTemplate, error) {
	query := `SELECT id, name, subject, content, variables, created_at, updated_at
		FROM email_templates ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*EmailTemplate
	for rows.Next() {
		tpl := &EmailTemplate{}
		if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.Subject, &tpl.Content, &tpl.Variables,
			&tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}

// UpdateTemplate rewrites a template by ID
func (s *Store) UpdateTemplate(ctx context.Context, tpl *EmailTemplate) error {
	tpl.UpdatedAt = time.Now()

	query := `UPDATE email_templates SET name = $2, subject = $3, content = $4,
		variables = $5, updated_at = $6 WHERE id = $1`

	_, err := s.db.ExecContext(ctx, query, tpl.ID, tpl.Name, tpl.Subject, tpl.Content,
		tpl.Variables, tpl.UpdatedAt)
	return err
}

// DeleteTemplate removes a template by ID
func (s *Store) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM email_templates WHERE id = $1`, id)
	return err
}

// Campaign operations

// ListCampaigns returns all campaigns, newest first, with the template name
// resolved for display.
func (s *Store) ListCampaigns(ctx context.Context) ([]*Campaign, error) {
	query := `SELECT c.id, c.name, c.description, c.template_id, t.name, c.status,
		c.scheduled_at, c.total_recipients, c.sent_count, c.failed_count, c.created_at, c.updated_at
		FROM campaigns c LEFT JOIN email_templates t ON t.id = c.template_id
		ORDER BY c.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []*Campaign
	for rows.Next() {
		c := &Campaign{}
		var templateName sql.NullString
		var scheduledAt sql.NullTime
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.TemplateID, &templateName,
			&c.Status, &scheduledAt, &c.TotalRecipients, &c.SentCount, &c.FailedCount,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.TemplateName = templateName.String
		if scheduledAt.Valid {
			c.ScheduledAt = &scheduledAt.Time
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// GetCampaign retrieves a campaign by ID
func (s *Store) GetCampaign(ctx context.Context, id uuid.UUID) (*Campaign, error) {
	query := `SELECT id, name, description, template_id, status, scheduled_at,
		total_recipients, sent_count, failed_count, created_at, updated_at
		FROM campaigns WHERE id = $1`

	c := &Campaign{}
	var scheduledAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Description,
		&c.TemplateID, &c.Status, &scheduledAt, &c.TotalRecipients, &c.SentCount,
		&c.FailedCount, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if scheduledAt.Valid {
		c.ScheduledAt = &scheduledAt.Time
	}
	return c, nil
}

// CreateCampaignWithRecipients inserts the campaign row and its recipient
// rows in a single transaction, so a half-materialized campaign can never be
// observed.
func (s *Store) CreateCampaignWithRecipients(ctx context.Context, c *Campaign, recipients []*Recipient) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting campaign transaction: %w", err)
	}
	defer tx.Rollback()

	campaignQuery := `INSERT INTO campaigns (id, name, description, template_id, status,
		scheduled_at, total_recipients, sent_count, failed_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, 0, $8, $9)`

	_, err = tx.ExecContext(ctx, campaignQuery, c.ID, c.Name, c.Description, c.TemplateID,
		c.Status, c.ScheduledAt, c.TotalRecipients, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting campaign: %w", err)
	}

	recipientQuery := `INSERT INTO campaign_recipients (id, campaign_id, producer_id, email,
		company_name, contact_name, status, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, r := range recipients {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		r.CampaignID = c.ID
		r.CreatedAt = c.CreatedAt
		if r.Status == "" {
			r.Status = RecipientPending
		}
		if _, err := tx.ExecContext(ctx, recipientQuery, r.ID, r.CampaignID, r.ProducerID,
			r.Email, r.CompanyName, r.ContactName, r.Status, r.CreatedAt); err != nil {
			return fmt.Errorf("inserting recipient %s: %w", r.Email, err)
		}
	}

	return tx.Commit()
}

// CountCampaigns returns the total number of campaigns
func (s *Store) CountCampaigns(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM campaigns`).Scan(&count)
	return count, err
}

// CountTemplates returns the total number of email templates
func (s *Store) CountTemplates(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM email_templates`).Scan(&count)
	return count, err
}

// DeleteCampaign removes a campaign and its recipients
func (s *Store) DeleteCampaign(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM campaign_recipients WHERE campaign_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// ListRecipients returns the materialized recipients of a campaign
func (s *Store) ListRecipients(ctx context.Context, campaignID uuid.UUID) ([]*Recipient, error) {
	query := `SELECT id, campaign_id, producer_id, email, company_name, contact_name,
		status, sent_at, error_message, created_at
		FROM campaign_recipients WHERE campaign_id = $1 ORDER BY company_name`

	rows, err := s.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipients []*Recipient
	for rows.Next() {
		r := &Recipient{}
		var errorMessage sql.NullString
		var sentAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.CampaignID, &r.ProducerID, &r.Email, &r.CompanyName,
			&r.ContactName, &r.Status, &sentAt, &errorMessage, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.ErrorMessage = errorMessage.String
		if sentAt.Valid {
			r.SentAt = &sentAt.Time
		}
		recipients = append(recipients, r)
	}
	return recipients, rows.Err()
}
