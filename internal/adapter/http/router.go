package http

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/v1").Subrouter()

	// The shared pool is readable without auth; everything user-scoped
	// requires a verified token.
	api.HandleFunc("/words/random", s.api.HandleRandomWords).Methods("GET")
	api.HandleFunc("/words/practice", AuthMiddleware(s.tokens, s.api.HandlePracticeWords)).Methods("GET")
	api.HandleFunc("/words", AuthMiddleware(s.tokens, s.api.HandleExportWords)).Methods("GET")
	api.HandleFunc("/words", AuthMiddleware(s.tokens, s.api.HandlePutWord)).Methods("POST")
	api.HandleFunc("/words/bulk", AuthMiddleware(s.tokens, s.api.HandleBulkPutWords)).Methods("POST")

	api.HandleFunc("/sentences/next", AuthMiddleware(s.tokens, s.api.HandleNextSentence)).Methods("GET")
	api.HandleFunc("/sentences/check", AuthMiddleware(s.tokens, s.api.HandleCheckAnswer)).Methods("POST")

	s.router.HandleFunc("/health", s.api.HandleHealth).Methods("GET")

	// Prometheus scrape endpoint, no auth.
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}
