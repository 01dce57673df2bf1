// Package campaign holds email templates, campaigns and the recipient
// materialization that snapshots producer contact details at creation time.
// Actual delivery is owned by an external sender; nothing here transitions a
// campaign past its creation status.
package campaign

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Campaign status constants. Only draft and scheduled are assigned at
// creation; sending, sent and cancelled belong to the external sender.
const (
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusSending   = "sending"
	StatusSent      = "sent"
	StatusCancelled = "cancelled"
)

// Recipient status constants
const (
	RecipientPending = "pending"
	RecipientSent    = "sent"
	RecipientFailed  = "failed"
)

// EmailTemplate is a reusable message body with {{placeholder}} variables
type EmailTemplate struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	Name      string         `json:"name" db:"name"`
	Subject   string         `json:"subject" db:"subject"`
	Content   string         `json:"content" db:"content"`
	Variables pq.StringArray `json:"variables" db:"variables"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// Campaign is a named batch of template-based messages targeted at a
// producer subset
type Campaign struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	Description     string     `json:"description" db:"description"`
	TemplateID      uuid.UUID  `json:"template_id" db:"template_id"`
	TemplateName    string     `json:"template_name,omitempty" db:"-"`
	Status          string     `json:"status" db:"status"`
	ScheduledAt     *time.Time `json:"scheduled_at,omitempty" db:"scheduled_at"`
	TotalRecipients int        `json:"total_recipients" db:"total_recipients"`
	SentCount       int        `json:"sent_count" db:"sent_count"`
	FailedCount     int        `json:"failed_count" db:"failed_count"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// Recipient is one materialized campaign target. Email, company and contact
// name are snapshots taken at selection time; later producer edits do not
// propagate here.
type Recipient struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	CampaignID   uuid.UUID  `json:"campaign_id" db:"campaign_id"`
	ProducerID   uuid.UUID  `json:"producer_id" db:"producer_id"`
	Email        string     `json:"email" db:"email"`
	CompanyName  string     `json:"company_name" db:"company_name"`
	ContactName  string     `json:"contact_name" db:"contact_name"`
	Status       string     `json:"status" db:"status"`
	SentAt       *time.Time `json:"sent_at,omitempty" db:"sent_at"`
	ErrorMessage string     `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}
