package middleware

import (
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/streamsentry/streamsentry/pkg/common"
	"github.com/streamsentry/streamsentry/pkg/config"
	infra "github.com/streamsentry/streamsentry/pkg/infra/websocket"
)

type websocketMiddleware struct {
	config    *config.Config
	logger    *logrus.Logger
	semaphore *infra.Semaphore
}

func NewWebsocketMiddleware(
	config *config.Config,
	logger *logrus.Logger,
) Middleware {
	return &websocketMiddleware{
		config:    config,
		logger:    logger,
		semaphore: infra.NewSemaphore(config.WebSocket.MaxConnections),
	}
}

// Middleware guards the websocket endpoints: only genuine upgrade requests
// pass, and the connection cap is enforced before the upgrade happens. The
// acquired slot travels down to the handler via locals so it can be released
// when the session ends.
func (m *websocketMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !strings.Contains(c.Path(), "/ws") {
			return c.Next()
		}
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if !m.semaphore.Acquire() {
			m.logger.Warn("maximum websocket connections reached, rejecting connection")
			return fiber.ErrTooManyRequests
		}
		c.Locals(common.SemaphoreLocalKey, m.semaphore)
		return c.Next()
	}
}
