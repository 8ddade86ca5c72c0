package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter constructs the router with all API endpoints registered.
func NewRouter(h *HandlerProvider) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/account/{accountId}/balance", h.GetBalanceHandler)
	r.Get("/account/{accountId}/history", h.HistoryHandler)
	r.Get("/account/{accountId}/history/text", h.HistoryTextHandler)
	r.Post("/transfer", h.TransferHandler)

	return r
}
