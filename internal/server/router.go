package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/furnistudio/lead-inbox/internal/inbox"
	"github.com/furnistudio/lead-inbox/internal/telegram"
	"github.com/furnistudio/lead-inbox/internal/uploads"
	"github.com/furnistudio/lead-inbox/internal/webhook"
)

// Config holds the wired handlers for the HTTP surface.
type Config struct {
	Webhook *webhook.Handler
	Inbox   *inbox.Handler
	// Uploads is optional; without R2 credentials the upload routes are
	// simply not mounted.
	Uploads            *uploads.Handler
	CORSAllowedOrigins []string
}

// New assembles the chi router: Telegram webhook ingress, the operator
// inbox API and the portfolio upload endpoints.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	origins := cfg.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", telegram.SecretTokenHeader},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/telegram/webhook", cfg.Webhook.HandleUpdate)
		r.Get("/telegram/webhook", cfg.Webhook.Confirm)

		r.Get("/messages", cfg.Inbox.ListMessages)
		r.Route("/messages/{chatID}", func(r chi.Router) {
			r.Post("/send", cfg.Inbox.SendReply)
			r.Post("/read", cfg.Inbox.MarkRead)
		})

		if cfg.Uploads != nil {
			r.Post("/presign", cfg.Uploads.Presign)
			r.Post("/upload", cfg.Uploads.Upload)
		}
	})

	return r
}
