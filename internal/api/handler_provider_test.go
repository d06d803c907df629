package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fastprodman/dragonhoard/internal/gateway"
	"github.com/fastprodman/dragonhoard/internal/repos/players"
	"github.com/fastprodman/dragonhoard/internal/services/ledger"
	"github.com/fastprodman/dragonhoard/internal/services/rankgate"
)

// --- Fakes ---

type fakeLedger struct {
	calls   []ledger.CreditRequest
	applied bool
	err     error
}

func (f *fakeLedger) Credit(_ context.Context, req ledger.CreditRequest) (bool, error) {
	f.calls = append(f.calls, req)
	return f.applied, f.err
}

type fakeRoster struct {
	player *players.Player
	err    error
}

func (f *fakeRoster) Register(context.Context, string, string) (*players.Player, error) {
	return f.player, f.err
}

func (f *fakeRoster) Get(context.Context, string) (*players.Player, error) {
	return f.player, f.err
}

func (f *fakeRoster) Leaderboard(context.Context) ([]players.Player, error) {
	if f.player == nil {
		return nil, f.err
	}
	return []players.Player{*f.player}, f.err
}

type fakeRankGate struct {
	player *players.Player
	err    error
}

func (f *fakeRankGate) UpdateSocialLink(context.Context, string, string) (*players.Player, error) {
	return f.player, f.err
}

type fakeGateway struct {
	configured bool
	req        ledger.CreditRequest
	actionable bool
	parseErr   error
	sessionURL string
	quantities []int64
}

func (f *fakeGateway) Configured() bool { return f.configured }

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, _ *players.Player, quantity int64) (string, error) {
	f.quantities = append(f.quantities, quantity)
	return f.sessionURL, nil
}

func (f *fakeGateway) ParseEvent([]byte, string) (ledger.CreditRequest, bool, error) {
	return f.req, f.actionable, f.parseErr
}

func somePlayer() *players.Player {
	return &players.Player{
		ID:          "11111111-1111-1111-1111-111111111111",
		DisplayName: "Smaug",
		GoldCount:   500,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func newTestRouter(deps Deps) http.Handler {
	if deps.Ledger == nil {
		deps.Ledger = &fakeLedger{}
	}
	if deps.Roster == nil {
		deps.Roster = &fakeRoster{player: somePlayer()}
	}
	if deps.RankGate == nil {
		deps.RankGate = &fakeRankGate{player: somePlayer()}
	}
	if deps.Gateway == nil {
		deps.Gateway = &fakeGateway{}
	}
	return NewRouter(deps)
}

// --- Webhook handler ---

func TestStripeWebhook_InvalidSignatureNeverCredits(t *testing.T) {
	t.Parallel()

	eng := &fakeLedger{}
	gw := &fakeGateway{configured: true, parseErr: gateway.ErrInvalidSignature}
	router := newTestRouter(Deps{Ledger: eng, Gateway: gw})

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=bogus")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	if len(eng.calls) != 0 {
		t.Fatalf("engine invoked %d times on a rejected event", len(eng.calls))
	}
}

func TestStripeWebhook_NoSignatureHeader(t *testing.T) {
	t.Parallel()

	eng := &fakeLedger{}
	router := newTestRouter(Deps{Ledger: eng, Gateway: &fakeGateway{configured: true}})

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	if len(eng.calls) != 0 {
		t.Fatal("engine must not run without a signature")
	}
}

func TestStripeWebhook_IgnoredEventAcked(t *testing.T) {
	t.Parallel()

	eng := &fakeLedger{}
	gw := &fakeGateway{configured: true, actionable: false}
	router := newTestRouter(Deps{Ledger: eng, Gateway: gw})

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=ok")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("ignored kinds must be acked: got %d", rec.Code)
	}
	if len(eng.calls) != 0 {
		t.Fatal("ignored kinds must not reach the engine")
	}
}

func TestStripeWebhook_DuplicateDeliveryAcked(t *testing.T) {
	t.Parallel()

	// applied=false is the duplicate path; still a 2xx so Stripe stops.
	eng := &fakeLedger{applied: false}
	gw := &fakeGateway{
		configured: true,
		actionable: true,
		req:        ledger.CreditRequest{PlayerID: "p-1", Reference: "cs_1", GoldAmount: 5, AmountCents: 500},
	}
	router := newTestRouter(Deps{Ledger: eng, Gateway: gw})

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=ok")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("duplicate delivery must be acked: got %d", rec.Code)
	}
	if len(eng.calls) != 1 {
		t.Fatalf("engine calls: got %d, want 1", len(eng.calls))
	}
}

// --- Dev credit route ---

func TestDevCredit_NotMountedWithGateway(t *testing.T) {
	t.Parallel()

	router := newTestRouter(Deps{Gateway: &fakeGateway{configured: true}})

	req := httptest.NewRequest(http.MethodPost, "/api/dev/credit",
		strings.NewReader(`{"playerId":"p-1","quantity":5}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("dev credit must be unreachable with a gateway: got %d", rec.Code)
	}
}

func TestDevCredit_CreditsThroughEngine(t *testing.T) {
	t.Parallel()

	eng := &fakeLedger{applied: true}
	router := newTestRouter(Deps{Ledger: eng, Gateway: &fakeGateway{configured: false}})

	req := httptest.NewRequest(http.MethodPost, "/api/dev/credit",
		strings.NewReader(`{"playerId":"p-1","quantity":25}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if len(eng.calls) != 1 {
		t.Fatalf("engine calls: got %d, want 1", len(eng.calls))
	}

	got := eng.calls[0]
	if got.PlayerID != "p-1" || got.GoldAmount != 25 || got.AmountCents != 2500 {
		t.Fatalf("credit request mismatch: %+v", got)
	}
	if !strings.HasPrefix(got.Reference, "dev_") {
		t.Fatalf("dev reference expected, got %q", got.Reference)
	}
}

// --- Checkout ---

func TestCheckout_UnavailableWithoutGateway(t *testing.T) {
	t.Parallel()

	router := newTestRouter(Deps{Gateway: &fakeGateway{configured: false}})

	req := httptest.NewRequest(http.MethodPost, "/api/checkout",
		strings.NewReader(`{"playerId":"p-1","quantity":5}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d, want 503", rec.Code)
	}
}

func TestCheckout_ReturnsSessionURL(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{configured: true, sessionURL: "https://checkout.example/s/1"}
	router := newTestRouter(Deps{Gateway: gw})

	req := httptest.NewRequest(http.MethodPost, "/api/checkout",
		strings.NewReader(`{"playerId":"11111111-1111-1111-1111-111111111111","quantity":5}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d; body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "https://checkout.example/s/1") {
		t.Fatalf("session url missing from body: %s", rec.Body.String())
	}
}

func TestCheckout_FractionalQuantityFloored(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want int64
	}{
		{name: "floored", body: `{"playerId":"p-1","quantity":5.9}`, want: 5},
		{name: "floor_then_min_clamp", body: `{"playerId":"p-1","quantity":0.5}`, want: 1},
		{name: "whole_untouched", body: `{"playerId":"p-1","quantity":7}`, want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gw := &fakeGateway{configured: true, sessionURL: "https://checkout.example/s/1"}
			router := newTestRouter(Deps{Gateway: gw})

			req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d; body %s", rec.Code, rec.Body.String())
			}
			if len(gw.quantities) != 1 || gw.quantities[0] != tt.want {
				t.Fatalf("quantity: got %v, want [%d]", gw.quantities, tt.want)
			}
		})
	}
}

// --- Social link error mapping ---

func TestUpdateSocialLink_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		gateErr  error
		wantCode int
	}{
		{name: "invalid_link", gateErr: rankgate.ErrInvalidLink, wantCode: http.StatusBadRequest},
		{name: "not_ranked", gateErr: rankgate.ErrNotRanked, wantCode: http.StatusForbidden},
		{name: "unknown_player", gateErr: players.ErrPlayerNotFound, wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := newTestRouter(Deps{RankGate: &fakeRankGate{err: tt.gateErr}})

			req := httptest.NewRequest(http.MethodPut, "/api/players/p-1/social-link",
				strings.NewReader(`{"socialLink":"https://example.com/x"}`))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

// --- Registration ---

func TestRegisterPlayer_EmptyName(t *testing.T) {
	t.Parallel()

	router := newTestRouter(Deps{})

	req := httptest.NewRequest(http.MethodPost, "/api/players",
		strings.NewReader(`{"displayName":"   "}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
}

func TestNormalizeDisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{name: "plain", in: "Smaug", want: "Smaug", wantOK: true},
		{name: "trimmed", in: "  Smaug  ", want: "Smaug", wantOK: true},
		{name: "empty", in: "", wantOK: false},
		{name: "whitespace_only", in: "  \t ", wantOK: false},
		{name: "capped_at_twenty", in: strings.Repeat("a", 30), want: strings.Repeat("a", 20), wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := normalizeDisplayName(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
