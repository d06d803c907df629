package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter constructs the router with all API endpoints registered.
// The dev credit route is only mounted when no payment gateway is
// configured; with a live gateway it must not be reachable at all.
func NewRouter(deps Deps) http.Handler {
	h := NewHandler(deps)
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/players", h.RegisterPlayerHandler)
		r.Get("/players/{playerId}", h.GetPlayerHandler)
		r.Put("/players/{playerId}/social-link", h.UpdateSocialLinkHandler)
		r.Get("/leaderboard", h.LeaderboardHandler)
		r.Post("/checkout", h.CreateCheckoutHandler)
		r.Post("/webhooks/stripe", h.StripeWebhookHandler)

		if !deps.Gateway.Configured() {
			r.Post("/dev/credit", h.DevCreditHandler)
		}
	})

	return r
}
