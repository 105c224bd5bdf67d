package server

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/mustafa-eser/whatsapp-panel/engine"
	"github.com/mustafa-eser/whatsapp-panel/store"
)

// conversationsHandler handles GET /api/users
func (s *Server) conversationsHandler(c fiber.Ctx) error {
	summaries, err := s.service.ListConversations(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("Error listing conversations")
		return s.storeError(c, err, "Failed to retrieve conversations")
	}

	return c.JSON(summaries)
}

// threadHandler handles GET /api/messages/{userId}
func (s *Server) threadHandler(c fiber.Ctx) error {
	userID := c.Params("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: ErrorDetail{
				Code:    "INVALID_PARAMETER",
				Message: "userId parameter is required",
			},
		})
	}

	messages, err := s.service.GetThread(c.Context(), userID)
	if err != nil {
		if errors.Is(err, engine.ErrEmptyUserID) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: ErrorDetail{
					Code:    "INVALID_PARAMETER",
					Message: "userId parameter is required",
				},
			})
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Error loading thread")
		return s.storeError(c, err, "Failed to retrieve messages")
	}

	return c.JSON(messages)
}

// searchHandler handles GET /api/search?q=
func (s *Server) searchHandler(c fiber.Ctx) error {
	query := c.Query("q")
	if strings.TrimSpace(query) == "" {
		return c.JSON([]store.Message{})
	}

	results, err := s.service.Search(c.Context(), query)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("Error searching messages")
		return s.storeError(c, err, "Failed to search messages")
	}

	return c.JSON(results)
}

// statsHandler handles GET /api/stats
func (s *Server) statsHandler(c fiber.Ctx) error {
	stats, err := s.service.GetStats(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("Error computing stats")
		return s.storeError(c, err, "Failed to compute statistics")
	}

	return c.JSON(stats)
}

// weeklyStatsHandler handles GET /api/stats/weekly
func (s *Server) weeklyStatsHandler(c fiber.Ctx) error {
	buckets, err := s.service.GetWeeklyStats(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("Error computing weekly stats")
		return s.storeError(c, err, "Failed to compute weekly statistics")
	}

	return c.JSON(buckets)
}

// healthHandler handles GET /api/health with a store round-trip probe.
func (s *Server) healthHandler(c fiber.Ctx) error {
	if err := s.service.CheckStore(c.Context()); err != nil {
		log.Error().Err(err).Msg("Message store probe failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Reachable: false,
			Detail:    err.Error(),
		})
	}

	return c.JSON(HealthResponse{Reachable: true})
}

// storeError maps engine failures onto the error envelope: unavailable store
// to 503, rejected query to 500 with the store-reported message.
func (s *Server) storeError(c fiber.Ctx, err error, message string) error {
	code := "QUERY_FAILED"
	status := fiber.StatusInternalServerError
	if errors.Is(err, store.ErrUnavailable) {
		code = "STORE_UNAVAILABLE"
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: err.Error(),
		},
	})
}
