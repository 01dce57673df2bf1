package campaign

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mifmarket/directory-api/internal/directory"
)

// Schedule type constants for campaign creation
const (
	ScheduleImmediate = "immediate"
	ScheduleLater     = "scheduled"
)

// Validation errors reported to the caller before anything is written
var (
	ErrNoProducersSelected = errors.New("at least one producer must be selected")
	ErrNoTemplateSelected  = errors.New("an email template must be selected")
	ErrTemplateNotFound    = errors.New("selected template does not exist")
	ErrScheduledAtRequired = errors.New("a future send date is required for scheduled campaigns")
)

// ProducerReader is the subset of the directory store the materializer needs
type ProducerReader interface {
	Get(ctx context.Context, id uuid.UUID) (*directory.Producer, error)
}

// CreateInput carries the campaign creation form
type CreateInput struct {
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	TemplateID   uuid.UUID   `json:"template_id"`
	ScheduleType string      `json:"schedule_type"`
	ScheduledAt  *time.Time  `json:"scheduled_at,omitempty"`
	ProducerIDs  []uuid.UUID `json:"producer_ids"`
}

// Materializer creates campaigns and expands the selected producer set into
// recipient rows, snapshotting contact fields at selection time.
type Materializer struct {
	store     *Store
	producers ProducerReader
}

// NewMaterializer creates a new campaign materializer
func NewMaterializer(store *Store, producers ProducerReader) *Materializer {
	return &Materializer{store: store, producers: producers}
}

// Create validates the input, then writes one campaign row plus one recipient
// row per selected producer in a single transaction. Resubmitting the same
// input creates a second campaign; there is no idempotency key.
func (m *Materializer) Create(ctx context.Context, in *CreateInput) (*Campaign, error) {
	if len(in.ProducerIDs) == 0 {
		return nil, ErrNoProducersSelected
	}
	if in.TemplateID == uuid.Nil {
		return nil, ErrNoTemplateSelected
	}

	status := StatusDraft
	var scheduledAt *time.Time
	if in.ScheduleType == ScheduleLater {
		if in.ScheduledAt == nil || !in.ScheduledAt.After(time.Now()) {
			return nil, ErrScheduledAtRequired
		}
		status = StatusScheduled
		scheduledAt = in.ScheduledAt
	}

	tpl, err := m.store.GetTemplate(ctx, in.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}
	if tpl == nil {
		return nil, ErrTemplateNotFound
	}

	recipients := make([]*Recipient, 0, len(in.ProducerIDs))
	for _, producerID := range in.ProducerIDs {
		producer, err := m.producers.Get(ctx, producerID)
		if err != nil {
			return nil, fmt.Errorf("loading producer %s: %w", producerID, err)
		}
		if producer == nil {
			return nil, fmt.Errorf("selected producer %s does not exist", producerID)
		}
		recipients = append(recipients, &Recipient{
			ProducerID:  producer.ID,
			Email:       producer.Email,
			CompanyName: producer.CompanyName,
			ContactName: producer.ContactName,
			Status:      RecipientPending,
		})
	}

	c := &Campaign{
		Name:            in.Name,
		Description:     in.Description,
		TemplateID:      in.TemplateID,
		Status:          status,
		ScheduledAt:     scheduledAt,
		TotalRecipients: len(recipients),
	}

	if err := m.store.CreateCampaignWithRecipients(ctx, c, recipients); err != nil {
		return nil, err
	}

	log.Printf("[campaign] created %q (%s) with %d recipients", c.Name, c.Status, c.TotalRecipients)
	return c, nil
}
