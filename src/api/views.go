package api

import (
	"net/http"
	"time"

	handlers "assetsync/src/api/handlers"

	"github.com/go-chi/chi/v5"
)

type Server struct {
	Router  *chi.Mux
	Handler *handlers.Handler
}

func NewServer(handler *handlers.Handler) *Server {
	server := &Server{
		Router:  chi.NewRouter(),
		Handler: handler,
	}
	server.InitRoutes()
	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Get("/alive", handlers.Healthcheck)

	s.Router.Route("/api/sync", func(r chi.Router) {
		r.Post("/import", s.Handler.ImportFromAPI)
		r.Post("/companies/{id}/refresh", s.Handler.RefreshCompany)
	})

	s.Router.Get("/api/benchmark-rates", s.Handler.GetBenchmarkRates)
}

func NewHTTPServer(server *Server, port string) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 6 * time.Minute,
		Handler:      server,
	}
}
