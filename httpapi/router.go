// Package httpapi exposes a Registry of paper trading accounts as a JSON API.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/etnz/papertrade"
)

// Server holds the dependencies of the handlers.
type Server struct {
	registry  *papertrade.Registry
	publisher papertrade.Publisher // nil disables events.
	currency  string               // currency of accounts opened without one.
	log       logrus.FieldLogger
}

// NewServer creates a server over registry. Successful operations are
// published to publisher, if not nil.
func NewServer(registry *papertrade.Registry, publisher papertrade.Publisher, currency string, log logrus.FieldLogger) *Server {
	if currency == "" {
		currency = papertrade.DefaultCurrency
	}
	return &Server{registry: registry, publisher: publisher, currency: currency, log: log}
}

// Routes returns the HTTP handler of the API.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/prices/{symbol}", s.getPrice)

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", s.createAccount)
		r.Get("/", s.listAccounts)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getAccount)
			r.Delete("/", s.closeAccount)

			r.Post("/deposit", s.deposit)
			r.Post("/withdraw", s.withdraw)
			r.Post("/buy", s.buy)
			r.Post("/sell", s.sell)

			r.Get("/holdings", s.getHoldings)
			r.Get("/transactions", s.getTransactions)
			r.Get("/gains", s.getGains)
		})
	})

	return r
}

// logRequests logs every request once it is served.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		entry := s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start),
			"request_id": middleware.GetReqID(r.Context()),
		})
		if ww.Status() >= http.StatusInternalServerError {
			entry.Error("request failed")
		} else {
			entry.Debug("request served")
		}
	})
}
