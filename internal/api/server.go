package api

import (
	"log"

	"github.com/go-chi/chi/v5"

	"github.com/EDU-PR/edudash-presence/internal/badge"
	"github.com/EDU-PR/edudash-presence/internal/config"
	"github.com/EDU-PR/edudash-presence/internal/services"
)

type Server struct {
	log      *log.Logger
	presence *services.PresenceService
	tokens   *services.TokenService
	badges   *badge.Manager
	cfg      *config.Config
}

func NewServer(logger *log.Logger, presence *services.PresenceService, tokens *services.TokenService, badges *badge.Manager, cfg *config.Config) *Server {
	return &Server{
		log:      logger,
		presence: presence,
		tokens:   tokens,
		badges:   badges,
		cfg:      cfg,
	}
}

// Routes returns the authenticated API surface, mounted under /api by the
// caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.authMiddleware)

	r.Put("/presence", s.setPresence)
	r.Get("/presence", s.listPresence)
	r.Get("/presence/{userID}", s.getPresence)
	r.Delete("/presence", s.deletePresence)

	r.Get("/badge", s.getBadge)
	r.Post("/badge/increment", s.incrementBadge)
	r.Post("/badge/clear", s.clearBadge)

	return r
}
