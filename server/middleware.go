package server

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	// Add recovery middleware
	s.app.Use(recover.New())

	// Add logger middleware
	s.app.Use(logger.New())

	// Add CORS middleware for panel access
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
	}))

	s.app.Use(s.metricsMiddleware)
}

// metricsMiddleware records request counts, durations and in-flight gauge.
func (s *Server) metricsMiddleware(c fiber.Ctx) error {
	start := time.Now()
	s.metrics.RequestsInFlight.Inc()
	defer s.metrics.RequestsInFlight.Dec()

	err := c.Next()

	route := c.Route().Path
	status := c.Response().StatusCode()
	s.metrics.RecordRequest(route, status, time.Since(start))

	return err
}
