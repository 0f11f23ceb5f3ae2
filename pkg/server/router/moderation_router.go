package router

import (
	"net/http"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/streamsentry/streamsentry/pkg/config"
	handlers "github.com/streamsentry/streamsentry/pkg/handlers/http"
	wsHandlers "github.com/streamsentry/streamsentry/pkg/handlers/websocket"
	"github.com/streamsentry/streamsentry/pkg/server/middleware"
)

const (
	HealthPath        = "/health"
	PingPath          = "/__/ping"
	SpeechSocketPath  = "/ws/speech/:stream_id"
	ToxicityCheckPath = "/api/v1/moderation/toxicity"
	RumorCheckPath    = "/api/v1/moderation/rumor"
	StreamAuditPath   = "/api/v1/streams/:stream_id/violations"
	UserAuditPath     = "/api/v1/streams/:stream_id/users/:user_id/violations"
)

type moderationRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    handlers.HandlerTransport
	wsHandlerTransport  wsHandlers.HandlerTransport
	config              *config.Config
}

func NewModerationRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport handlers.HandlerTransport,
	wsHandlerTransport wsHandlers.HandlerTransport,
	cfg *config.Config,
) ServerRouter {
	return &moderationRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
		wsHandlerTransport:  wsHandlerTransport,
		config:              cfg,
	}
}

func (r *moderationRouter) BuildRoutes(router *fiber.App) error {
	wsHandlerTransport, ok := r.wsHandlerTransport.GetTransport().(*wsHandlers.HandlerTransportDTO)
	if !ok {
		return ErrInvalidHandlerTransport
	}

	router.Get(HealthPath, func(ctx *fiber.Ctx) error {
		return ctx.Status(http.StatusOK).JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	router.Get(PingPath, func(ctx *fiber.Ctx) error {
		return ctx.Status(http.StatusOK).JSON(fiber.Map{
			"message": "pong",
		})
	})

	router.Use(r.middlewareTransport.GetMiddlewares()...)

	router.Get(SpeechSocketPath, websocket.New(
		wsHandlerTransport.SpeechHandler.Handle,
		websocket.Config{
			HandshakeTimeout: 15 * time.Second,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
		},
	))

	router.Post(ToxicityCheckPath, r.handlerTransport.CheckToxicityHandler.Handle)
	router.Post(RumorCheckPath, r.handlerTransport.CheckRumorHandler.Handle)
	router.Get(StreamAuditPath, r.handlerTransport.ListStreamViolationsHandler.Handle)
	router.Get(UserAuditPath, r.handlerTransport.ListUserViolationsHandler.Handle)

	return nil
}
