package api

import (
	"net/http"
	"time"
)

// NewServer creates and returns a configured *http.Server for the game API
func NewServer(addr string, cfg *RouterConfig) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(cfg),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
