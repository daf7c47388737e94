// Package api serves the holder economy over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/dinofightergenesis/dinofighterg/internal/identity"
	"github.com/dinofightergenesis/dinofighterg/internal/session"
)

// Config wires the router.
type Config struct {
	Sessions      *session.Manager
	Identity      identity.Provider
	Gatherer      prometheus.Gatherer // nil disables /metrics
	RatePerSecond float64
	Burst         int
}

// Server holds the handlers' dependencies.
type Server struct {
	sessions *session.Manager
}

// NewRouter builds the HTTP handler.
func NewRouter(cfg Config) http.Handler {
	s := &Server{sessions: cfg.Sessions}
	limiter := newRateLimiter(cfg.RatePerSecond, cfg.Burst)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(limiter.middleware)
			r.Get("/sale", s.saleStatus)
			r.Get("/burn/global", s.globalBurn)
		})

		r.Group(func(r chi.Router) {
			r.Use(identity.Middleware(cfg.Identity))
			r.Use(limiter.middleware)

			r.Get("/account", s.account)
			r.Get("/account/stream", s.stream)
			r.Post("/rewards/claim", s.claim)
			r.Post("/assets/{id}/stake", s.stake)
			r.Post("/assets/{id}/unstake", s.unstake)
			r.Get("/slots/price", s.slotPrice)
			r.Post("/slots", s.purchaseSlot)
			r.Post("/raffle/tickets", s.buyTickets)
			r.Post("/raffle/spin", s.spin)
			r.Post("/sale/buy", s.buySale)
			r.Post("/burn", s.burn)
			r.Post("/referrals", s.setReferrer)
			r.Post("/referrals/claim", s.claimReferral)
		})
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("http request")
	})
}

// open resolves the caller's session.
func (s *Server) open(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	holderID, _ := identity.HolderFromContext(r.Context())
	sess, err := s.sessions.Open(r.Context(), holderID)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return sess, true
}
