package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wordbridge/wordbridge/internal/adapter/http/handlers"
	"github.com/wordbridge/wordbridge/internal/core/ports"
)

type Server struct {
	api    *handlers.API
	tokens ports.TokenMaker
	router *mux.Router
}

func NewServer(api *handlers.API, tokens ports.TokenMaker) *Server {
	s := &Server{
		api:    api,
		tokens: tokens,
		router: mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) Router() http.Handler {
	return RequestIDMiddleware(CorsMiddleware(s.router))
}
