package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/fastprodman/dragonhoard/internal/gateway"
	"github.com/fastprodman/dragonhoard/internal/repos/players"
	"github.com/fastprodman/dragonhoard/internal/services/ledger"
	"github.com/fastprodman/dragonhoard/internal/services/rankgate"
	"github.com/go-chi/chi/v5"
)

const (
	maxDisplayNameLen = 20
	maxWebhookBody    = 64 << 10 // Stripe events are small; 64KB is generous
)

// Ledger is the reconciliation engine as the handlers see it.
type Ledger interface {
	Credit(ctx context.Context, req ledger.CreditRequest) (bool, error)
}

// Roster covers registration and read paths.
type Roster interface {
	Register(ctx context.Context, displayName, playerID string) (*players.Player, error)
	Get(ctx context.Context, playerID string) (*players.Player, error)
	Leaderboard(ctx context.Context) ([]players.Player, error)
}

// RankGate authorizes and applies social link updates.
type RankGate interface {
	UpdateSocialLink(ctx context.Context, playerID, link string) (*players.Player, error)
}

// Gateway is the payment gateway adapter.
type Gateway interface {
	Configured() bool
	CreateCheckoutSession(ctx context.Context, p *players.Player, quantity int64) (string, error)
	ParseEvent(payload []byte, sigHeader string) (ledger.CreditRequest, bool, error)
}

type Deps struct {
	Ledger   Ledger
	Roster   Roster
	RankGate RankGate
	Gateway  Gateway
}

// HandlerProvider wraps the services and exposes HTTP handlers.
type HandlerProvider struct {
	deps Deps
}

// NewHandler returns a new Handler provider.
func NewHandler(deps Deps) *HandlerProvider {
	return &HandlerProvider{deps: deps}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)

		http.Error(w, `{"error":"internal json encode failure"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB cap
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}

		return errors.New("invalid JSON")
	}

	return nil
}

type playerJSON struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	GoldCount   int64     `json:"gold_count"`
	SocialLink  *string   `json:"social_link"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toPlayerJSON(p *players.Player) playerJSON {
	out := playerJSON{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		GoldCount:   p.GoldCount,
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}
	if p.SocialLink != "" {
		link := p.SocialLink
		out.SocialLink = &link
	}

	return out
}

// normalizeDisplayName trims and caps the name the way the UI promises.
func normalizeDisplayName(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", false
	}

	runes := []rune(name)
	if len(runes) > maxDisplayNameLen {
		name = string(runes[:maxDisplayNameLen])
	}

	return name, true
}

// --- Handlers ---

type registerRequest struct {
	DisplayName string `json:"displayName"`
	PlayerID    string `json:"playerId"`
}

// RegisterPlayerHandler handles POST /api/players.
func (h *HandlerProvider) RegisterPlayerHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	name, ok := normalizeDisplayName(req.DisplayName)
	if !ok {
		writeError(w, http.StatusBadRequest, "display name required")
		return
	}

	p, err := h.deps.Roster.Register(r.Context(), name, req.PlayerID)
	if err != nil {
		slog.Error("register player", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create player")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"player": toPlayerJSON(p)})
}

// GetPlayerHandler handles GET /api/players/{playerId}.
func (h *HandlerProvider) GetPlayerHandler(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerId")
	if playerID == "" {
		writeError(w, http.StatusBadRequest, "player id required")
		return
	}

	p, err := h.deps.Roster.Get(r.Context(), playerID)
	if err != nil {
		if errors.Is(err, players.ErrPlayerNotFound) {
			writeError(w, http.StatusNotFound, "player not found")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"player": toPlayerJSON(p)})
}

type leaderboardEntry struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	GoldCount   int64  `json:"gold_count"`
}

// LeaderboardHandler handles GET /api/leaderboard.
func (h *HandlerProvider) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	top, err := h.deps.Roster.Leaderboard(r.Context())
	if err != nil {
		slog.Error("leaderboard", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch leaderboard")
		return
	}

	entries := make([]leaderboardEntry, 0, len(top))
	for _, p := range top {
		entries = append(entries, leaderboardEntry{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			GoldCount:   p.GoldCount,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"players": entries})
}

type checkoutRequest struct {
	PlayerID string `json:"playerId"`
	// Fractional quantities are floored rather than rejected.
	Quantity float64 `json:"quantity"`
}

// CreateCheckoutHandler handles POST /api/checkout. This is the sole
// enforcement point for the gold quantity range; the webhook only trusts
// the metadata round-tripped from here.
func (h *HandlerProvider) CreateCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	if !h.deps.Gateway.Configured() {
		writeError(w, http.StatusServiceUnavailable, "payments not configured")
		return
	}

	var req checkoutRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "player id required")
		return
	}

	quantity := gateway.ClampGold(int64(math.Floor(req.Quantity)))

	p, err := h.deps.Roster.Get(r.Context(), req.PlayerID)
	if err != nil {
		if errors.Is(err, players.ErrPlayerNotFound) {
			writeError(w, http.StatusNotFound, "player not found")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	url, err := h.deps.Gateway.CreateCheckoutSession(r.Context(), p, quantity)
	if err != nil {
		slog.Error("create checkout session", "error", err, "player_id", p.ID)
		writeError(w, http.StatusInternalServerError, "failed to start checkout")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// StripeWebhookHandler handles POST /api/webhooks/stripe. Signature
// failures and malformed events are terminal for the event: they are
// rejected without the engine ever being invoked. Everything accepted is
// acknowledged with 2xx so Stripe stops retrying, including event kinds
// this service ignores and duplicate deliveries.
func (h *HandlerProvider) StripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	sig := r.Header.Get("Stripe-Signature")
	if sig == "" {
		writeError(w, http.StatusBadRequest, "no signature")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	req, actionable, err := h.deps.Gateway.ParseEvent(payload, sig)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrInvalidSignature):
			slog.Warn("webhook signature verification failed", "error", err)
			writeError(w, http.StatusBadRequest, "invalid signature")
		case errors.Is(err, gateway.ErrMissingPlayer):
			writeError(w, http.StatusBadRequest, "missing player id")
		default:
			writeError(w, http.StatusBadRequest, "malformed event")
		}

		return
	}

	if !actionable {
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	applied, err := h.deps.Ledger.Credit(r.Context(), req)
	if err != nil {
		// Retryable: Stripe redelivers and the credit is idempotent.
		slog.Error("credit failed", "error", err, "reference", req.Reference)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	if !applied {
		slog.Info("duplicate webhook delivery ignored", "reference", req.Reference)
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

type devCreditRequest struct {
	PlayerID string `json:"playerId"`
	Quantity int64  `json:"quantity"`
}

// DevCreditHandler handles POST /api/dev/credit, the gateway-less path
// for exercising the reconciliation engine locally. The router only
// mounts it when no gateway is configured.
func (h *HandlerProvider) DevCreditHandler(w http.ResponseWriter, r *http.Request) {
	var req devCreditRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "player id required")
		return
	}

	credit := gateway.DevCreditRequest(req.PlayerID, req.Quantity)

	applied, err := h.deps.Ledger.Credit(r.Context(), credit)
	if err != nil {
		if errors.Is(err, players.ErrPlayerNotFound) {
			writeError(w, http.StatusNotFound, "player not found")
			return
		}

		slog.Error("dev credit failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"applied":   applied,
		"reference": credit.Reference,
	})
}

type socialLinkRequest struct {
	SocialLink string `json:"socialLink"`
}

// UpdateSocialLinkHandler handles PUT /api/players/{playerId}/social-link.
func (h *HandlerProvider) UpdateSocialLinkHandler(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerId")
	if playerID == "" {
		writeError(w, http.StatusBadRequest, "player id required")
		return
	}

	var req socialLinkRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.deps.RankGate.UpdateSocialLink(r.Context(), playerID, req.SocialLink)
	if err != nil {
		switch {
		case errors.Is(err, rankgate.ErrInvalidLink):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, rankgate.ErrNotRanked):
			writeError(w, http.StatusForbidden, "only top ranked players can set a social link")
		case errors.Is(err, players.ErrPlayerNotFound):
			writeError(w, http.StatusNotFound, "player not found")
		default:
			slog.Error("update social link", "error", err, "player_id", playerID)
			writeError(w, http.StatusInternalServerError, "failed to update social link")
		}

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"player": toPlayerJSON(p)})
}
