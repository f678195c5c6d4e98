package httpserver

import (
	"net/http"
	"time"
)

// New builds the ops HTTP server (healthz, metrics) with sane defaults.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
