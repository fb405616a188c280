// Package httpapi exposes the wallet-link protocol, idempotency keys and
// feature gates over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/walletlink/internal/gate"
	"github.com/dmitrijs2005/walletlink/internal/idempotency"
	"github.com/dmitrijs2005/walletlink/internal/logging"
	"github.com/dmitrijs2005/walletlink/internal/server/models"
	"github.com/dmitrijs2005/walletlink/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
)

// WalletLinker is the part of services.WalletLinkService the API needs.
type WalletLinker interface {
	Start(ctx context.Context, userID, walletAddress, walletType string) (*services.StartResult, error)
	Complete(ctx context.Context, sessionID, userID, walletAddress, signature string) (*services.CompleteResult, error)
	ListLinks(ctx context.Context, userID string) ([]*models.WalletLink, error)
}

// KeyClaimer records that an idempotency key has been seen and forgets it
// again on request.
type KeyClaimer interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Deps are the collaborators of the API handlers.
type Deps struct {
	Links             WalletLinker
	Keys              KeyClaimer // optional; without it every key is reported fresh
	Deriver           idempotency.Deriver
	IdempotencyWindow time.Duration
	Gates             gate.Rules
	SecretKey         []byte
	Logger            logging.Logger
	Metrics           *Metrics
}

type api struct {
	Deps
	validate *validator.Validate
}

// NewRouter builds the HTTP handler tree.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = logging.Nop{}
	}
	if d.Metrics == nil {
		d.Metrics = NewMetrics(prometheus.NewRegistry())
	}
	a := &api{Deps: d, validate: validator.New()}
	a.Logger = d.Logger.With("module", "http_api")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(a.Logger))
	r.Use(a.Metrics.instrument)
	r.Use(corsHandler())

	r.Get("/healthz", a.healthz)
	r.Method(http.MethodGet, "/metrics", a.Metrics.Handler())
	r.Post("/gate-check", a.checkGate)

	r.Group(func(r chi.Router) {
		r.Use(bearerAuth(d.SecretKey, a.Logger))
		r.Post("/wallet-link-start", a.startWalletLink)
		r.Post("/wallet-link-complete", a.completeWalletLink)
		r.Get("/wallet-links", a.listWalletLinks)
		r.Post("/idempotency-keys", a.deriveIdempotencyKey)
		r.Delete("/idempotency-keys/{key}", a.releaseIdempotencyKey)
	})

	return r
}
