package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mifmarket/directory-api/internal/campaign"
	"github.com/mifmarket/directory-api/internal/config"
)

func newCampaignHandlers(t *testing.T) (*Handlers, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &Handlers{
		cfg:       &config.Config{},
		campaigns: campaign.NewStore(db),
		renderer:  campaign.NewRenderer(),
	}, mock
}

func campaignTestRouter(h *Handlers) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/campaigns/{campaignId}", h.HandleGetCampaign)
	r.Get("/campaigns/{campaignId}/recipients/{recipientId}/preview", h.HandlePreviewRecipient)
	return r
}

func campaignRows(id, templateID uuid.UUID) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "name", "description", "template_id", "status",
		"scheduled_at", "total_recipients", "sent_count", "failed_count", "created_at", "updated_at"}).
		AddRow(id, "Printemps 2026", "", templateID, campaign.StatusDraft, nil, 1, 0, 0, now, now)
}

func recipientRows(recipientID, campaignID uuid.UUID) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "campaign_id", "producer_id", "email", "company_name",
		"contact_name", "status", "sent_at", "error_message", "created_at"}).
		AddRow(recipientID, campaignID, uuid.New(), "marie@ferme.fr", "Ferme du Val", "Marie",
			campaign.RecipientPending, nil, nil, now)
}

func TestGetCampaignWithRecipients(t *testing.T) {
	h, mock := newCampaignHandlers(t)
	campaignID := uuid.New()
	recipientID := uuid.New()

	mock.ExpectQuery("FROM campaigns WHERE id =").
		WithArgs(campaignID).
		WillReturnRows(campaignRows(campaignID, uuid.New()))
	mock.ExpectQuery("FROM campaign_recipients WHERE campaign_id =").
		WithArgs(campaignID).
		WillReturnRows(recipientRows(recipientID, campaignID))

	req := httptest.NewRequest(http.MethodGet, "/campaigns/"+campaignID.String(), nil)
	rec := httptest.NewRecorder()
	campaignTestRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Printemps 2026")
	assert.Contains(t, rec.Body.String(), "marie@ferme.fr")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCampaignNotFound(t *testing.T) {
	h, mock := newCampaignHandlers(t)
	campaignID := uuid.New()

	mock.ExpectQuery("FROM campaigns WHERE id =").
		WithArgs(campaignID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	req := httptest.NewRequest(http.MethodGet, "/campaigns/"+campaignID.String(), nil)
	rec := httptest.NewRecorder()
	campaignTestRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// The per-recipient preview renders the campaign template against that
// recipient's snapshot fields.
func TestPreviewRecipientRendersSnapshot(t *testing.T) {
	h, mock := newCampaignHandlers(t)
	campaignID := uuid.New()
	templateID := uuid.New()
	recipientID := uuid.New()

	mock.ExpectQuery("FROM campaigns WHERE id =").
		WithArgs(campaignID).
		WillReturnRows(campaignRows(campaignID, templateID))
	mock.ExpectQuery("FROM email_templates WHERE id =").
		WithArgs(templateID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "subject", "content",
			"variables", "created_at", "updated_at"}).
			AddRow(templateID, "Bienvenue", "Bonjour {{ contact_name }}",
				"{{ company_name }} rejoint l'annuaire.", "{}", time.Now(), time.Now()))
	mock.ExpectQuery("FROM campaign_recipients WHERE campaign_id =").
		WithArgs(campaignID).
		WillReturnRows(recipientRows(recipientID, campaignID))

	url := "/campaigns/" + campaignID.String() + "/recipients/" + recipientID.String() + "/preview"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	campaignTestRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Bonjour Marie")
	assert.Contains(t, rec.Body.String(), "Ferme du Val rejoint l'annuaire.")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreviewRecipientUnknownRecipient(t *testing.T) {
	h, mock := newCampaignHandlers(t)
	campaignID := uuid.New()
	templateID := uuid.New()

	mock.ExpectQuery("FROM campaigns WHERE id =").
		WithArgs(campaignID).
		WillReturnRows(campaignRows(campaignID, templateID))
	mock.ExpectQuery("FROM email_templates WHERE id =").
		WithArgs(templateID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "subject", "content",
			"variables", "created_at", "updated_at"}).
			AddRow(templateID, "Bienvenue", "s", "c", "{}", time.Now(), time.Now()))
	mock.ExpectQuery("FROM campaign_recipients WHERE campaign_id =").
		WithArgs(campaignID).
		WillReturnRows(recipientRows(uuid.New(), campaignID))

	url := "/campaigns/" + campaignID.String() + "/recipients/" + uuid.New().String() + "/preview"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	campaignTestRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
