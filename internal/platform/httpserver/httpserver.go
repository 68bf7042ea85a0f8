package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. Ledger requests are small JSON bodies that
// either mutate and recompute or read a record, so the timeouts are tight;
// anything slower indicates a stuck client, not a slow operation.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
