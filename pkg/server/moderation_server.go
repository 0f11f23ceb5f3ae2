package server

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/streamsentry/streamsentry/pkg/config"
	handlers "github.com/streamsentry/streamsentry/pkg/handlers/http"
	wsHandlers "github.com/streamsentry/streamsentry/pkg/handlers/websocket"
	"github.com/streamsentry/streamsentry/pkg/server/middleware"
	"github.com/streamsentry/streamsentry/pkg/server/router"
)

type (
	ModerationServerDI struct {
		Config              *config.Config
		Logger              *logrus.Logger
		MiddlewareTransport *middleware.Transport
		HandlerTransport    handlers.HandlerTransport
		WSHandlerTransport  wsHandlers.HandlerTransport
	}
	ModerationServer struct {
		*BaseServer
	}
)

func NewModerationServer(di ModerationServerDI) *ModerationServer {
	base := NewBaseServer(di.Config, di.Logger).WithRouters(
		router.NewModerationRouter(
			di.MiddlewareTransport,
			di.HandlerTransport,
			di.WSHandlerTransport,
			di.Config,
		),
	)
	return &ModerationServer{BaseServer: base}
}

func (s *ModerationServer) Run() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("Starting moderation server")
	return s.Router.Listen(addr)
}

func (s *ModerationServer) Shutdown() error {
	return s.Router.Shutdown()
}
