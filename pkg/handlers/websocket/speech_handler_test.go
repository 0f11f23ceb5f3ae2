package websocket_test

import (
	"context"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	appmoderation "github.com/streamsentry/streamsentry/pkg/app/moderation"
	"github.com/streamsentry/streamsentry/pkg/config"
	handlers "github.com/streamsentry/streamsentry/pkg/handlers/http"
	wsHandlers "github.com/streamsentry/streamsentry/pkg/handlers/websocket"
	infra "github.com/streamsentry/streamsentry/pkg/infra/websocket"
	"github.com/streamsentry/streamsentry/pkg/server"
	"github.com/streamsentry/streamsentry/pkg/server/middleware"
	"github.com/streamsentry/streamsentry/pkg/server/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessor struct {
	mu          sync.Mutex
	transcripts []string
}

func (f *fakeProcessor) ProcessTranscript(ctx context.Context, userID, streamID uuid.UUID, transcript string, notifier appmoderation.Notifier) {
	f.mu.Lock()
	f.transcripts = append(f.transcripts, transcript)
	f.mu.Unlock()
	_ = notifier.Send(ctx, infra.NewCleanEvent(transcript))
}

func (f *fakeProcessor) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.transcripts))
	copy(out, f.transcripts)
	return out
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type noopHandler struct{}

func (noopHandler) Handle(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNotFound)
}

func stubHandlerTransport() handlers.HandlerTransport {
	return handlers.HandlerTransport{
		CheckToxicityHandler:        noopHandler{},
		CheckRumorHandler:           noopHandler{},
		ListStreamViolationsHandler: noopHandler{},
		ListUserViolationsHandler:   noopHandler{},
	}
}

// startServer brings up a full moderation server on a random port and
// returns its address.
func startServer(t *testing.T, processor appmoderation.Processor, maxConnections int) string {
	t.Helper()

	cfg := &config.Config{}
	cfg.WebSocket.MaxConnections = maxConnections

	logger := testLogger()
	hub := infra.NewHub(logger)

	base := server.NewBaseServer(cfg, logger).WithRouters(
		router.NewModerationRouter(
			middleware.NewTransport(middleware.NewWebsocketMiddleware(cfg, logger)),
			stubHandlerTransport(),
			&wsHandlers.HandlerTransportDTO{
				SpeechHandler: wsHandlers.NewSpeechHandler(hub, processor, logger),
			},
			cfg,
		),
	)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		_ = base.Router.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = base.Router.Shutdown()
	})

	return ln.Addr().String()
}

func dial(t *testing.T, addr string, streamID, userID uuid.UUID) *gorilla.Conn {
	t.Helper()
	url := "ws://" + addr + "/ws/speech/" + streamID.String() + "?user_id=" + userID.String()

	var conn *gorilla.Conn
	var err error
	for i := 0; i < 20; i++ {
		conn, _, err = gorilla.DefaultDialer.Dial(url, nil)
		if err == nil {
			return conn
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("failed to dial %s: %v", url, err)
	return nil
}

func TestSpeechHandler(t *testing.T) {
	t.Run("Transcript round trip", func(t *testing.T) {
		processor := &fakeProcessor{}
		addr := startServer(t, processor, 4)

		conn := dial(t, addr, uuid.New(), uuid.New())
		defer conn.Close()

		require.NoError(t, conn.WriteJSON(infra.TranscriptEvent{
			Type:       infra.EventSpeechTranscript,
			Transcript: "hello stream",
		}))

		var event infra.Event
		require.NoError(t, conn.ReadJSON(&event))
		assert.Equal(t, infra.EventSpeechClean, event.Type)
		assert.Equal(t, "hello stream", event.Transcript)
		assert.Equal(t, []string{"hello stream"}, processor.seen())
	})

	t.Run("Malformed frame gets an error event", func(t *testing.T) {
		processor := &fakeProcessor{}
		addr := startServer(t, processor, 4)

		conn := dial(t, addr, uuid.New(), uuid.New())
		defer conn.Close()

		require.NoError(t, conn.WriteMessage(gorilla.TextMessage, []byte("{not json")))

		var event infra.Event
		require.NoError(t, conn.ReadJSON(&event))
		assert.Equal(t, infra.EventError, event.Type)
		assert.Empty(t, processor.seen())
	})

	t.Run("Non transcript frames are ignored", func(t *testing.T) {
		processor := &fakeProcessor{}
		addr := startServer(t, processor, 4)

		conn := dial(t, addr, uuid.New(), uuid.New())
		defer conn.Close()

		require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
		require.NoError(t, conn.WriteJSON(infra.TranscriptEvent{
			Type:       infra.EventSpeechTranscript,
			Transcript: "after the ping",
		}))

		var event infra.Event
		require.NoError(t, conn.ReadJSON(&event))
		assert.Equal(t, infra.EventSpeechClean, event.Type)
		assert.Equal(t, []string{"after the ping"}, processor.seen())
	})

	t.Run("Connection cap rejects the upgrade", func(t *testing.T) {
		processor := &fakeProcessor{}
		addr := startServer(t, processor, 1)

		first := dial(t, addr, uuid.New(), uuid.New())
		defer first.Close()

		url := "ws://" + addr + "/ws/speech/" + uuid.NewString() + "?user_id=" + uuid.NewString()
		_, resp, err := gorilla.DefaultDialer.Dial(url, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, 429, resp.StatusCode)
	})
}
