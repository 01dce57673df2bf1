package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Reset-Secret"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (no auth required)
	r.Get("/health", h.HealthCheck)

	// Public API
	r.Route("/api", func(r chi.Router) {
		r.Get("/directory/producers", h.HandleListDirectory)
		r.Get("/directory/options", h.HandleDirectoryOptions)
		r.Get("/settings/logo", h.HandleGetLogo)
		r.Post("/register", h.HandleRegister)

		r.Post("/auth/login", h.HandleLogin)
		r.Post("/auth/logout", h.HandleLogout)

		// Producer self-service (producer role required)
		r.Route("/producer", func(r chi.Router) {
			r.Use(h.RequireProducer)
			r.Get("/profile", h.HandleGetOwnProfile)
			r.Put("/profile", h.HandleUpdateOwnProfile)
		})

		// Back office (admin role required)
		r.Route("/admin", func(r chi.Router) {
			r.Use(h.RequireAdmin)

			r.Route("/producers", func(r chi.Router) {
				r.Get("/", h.HandleAdminListProducers)
				r.Post("/", h.HandleAdminCreateProducer)
				r.Put("/{producerId}", h.HandleAdminUpdateProducer)
				r.Delete("/{producerId}", h.HandleAdminDeleteProducer)
				r.Post("/{producerId}/visibility", h.HandleAdminToggleVisibility)
				r.Post("/{producerId}/blocked", h.HandleAdminToggleBlocked)
			})

			r.Route("/templates", func(r chi.Router) {
				r.Get("/", h.HandleListTemplates)
				r.Post("/", h.HandleCreateTemplate)
				r.Put("/{templateId}", h.HandleUpdateTemplate)
				r.Delete("/{templateId}", h.HandleDeleteTemplate)
				r.Post("/{templateId}/preview", h.HandlePreviewTemplate)
			})

			r.Route("/campaigns", func(r chi.Router) {
				r.Get("/", h.HandleListCampaigns)
				r.Post("/", h.HandleCreateCampaign)
				r.Get("/{campaignId}", h.HandleGetCampaign)
				r.Delete("/{campaignId}", h.HandleDeleteCampaign)
				r.Get("/{campaignId}/recipients", h.HandleListRecipients)
				r.Get("/{campaignId}/recipients/{recipientId}/preview", h.HandlePreviewRecipient)
			})

			r.Route("/import", func(r chi.Router) {
				r.Post("/", h.HandleImport)
				r.Post("/preview", h.HandleImportPreview)
				r.Get("/history", h.HandleImportHistory)
			})

			r.Get("/stats", h.HandleAdminStats)
			r.Post("/logo", h.HandleUploadLogo)
			r.Get("/settings/{key}", h.HandleGetSetting)
			r.Post("/settings", h.HandleUpdateSetting)

			// Admin account management (super admin only)
			r.Route("/admins", func(r chi.Router) {
				r.Use(h.RequireSuperAdmin)
				r.Get("/", h.HandleListAdmins)
				r.Post("/", h.HandleCreateAdmin)
				r.Delete("/", h.HandleDeleteAdmin)
			})
		})
	})

	// Password-reset bridges, CORS-open like the original serverless
	// functions they replace.
	r.Route("/functions", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization", "X-Client-Info", "Apikey", "X-Reset-Secret"},
		}))
		r.Post("/admin-reset-password", h.HandleAdminResetPassword)
		r.Post("/generate-reset-link", h.HandleGenerateResetLink)
	})

	return r
}
