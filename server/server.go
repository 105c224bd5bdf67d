package server

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/mustafa-eser/whatsapp-panel/engine"
	"github.com/mustafa-eser/whatsapp-panel/metrics"
	"github.com/mustafa-eser/whatsapp-panel/store"
)

// ConversationService is the read surface the handlers expose. *engine.Engine
// implements it.
type ConversationService interface {
	ListConversations(ctx context.Context) ([]store.ConversationSummary, error)
	GetThread(ctx context.Context, userID string) ([]store.Message, error)
	Search(ctx context.Context, query string) ([]store.Message, error)
	GetStats(ctx context.Context) (store.Stats, error)
	GetWeeklyStats(ctx context.Context) ([]engine.WeeklyBucket, error)
	CheckStore(ctx context.Context) error
}

type Server struct {
	app     *fiber.App
	service ConversationService
	metrics *metrics.Metrics
}

func New(service ConversationService, m *metrics.Metrics) *Server {
	app := fiber.New()

	server := &Server{
		app:     app,
		service: service,
		metrics: m,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) Start(port string) error {
	log.Info().Str("port", port).Msg("Starting panel server")

	return s.app.Listen(":"+port, fiber.ListenConfig{
		DisableStartupMessage: true,
	})
}

// Shutdown stops accepting new requests and waits for in-flight ones until
// ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
