package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
)

func (s *Server) setupRoutes() {
	api := s.app.Group("/api")

	api.Get("/users", s.conversationsHandler)
	api.Get("/messages/:userId", s.threadHandler)
	api.Get("/search", s.searchHandler)
	api.Get("/stats", s.statsHandler)
	api.Get("/stats/weekly", s.weeklyStatsHandler)
	api.Get("/health", s.healthHandler)

	s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))
}
