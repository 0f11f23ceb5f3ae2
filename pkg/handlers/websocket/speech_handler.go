package websocket

import (
	"context"
	"encoding/json"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	appmoderation "github.com/streamsentry/streamsentry/pkg/app/moderation"
	"github.com/streamsentry/streamsentry/pkg/common"
	infra "github.com/streamsentry/streamsentry/pkg/infra/websocket"
)

// SpeechHandler owns one moderation connection: it joins the client to its
// stream room, reads transcript frames and hands each one to the escalation
// processor.
type SpeechHandler struct {
	hub       *infra.Hub
	processor appmoderation.Processor
	logger    *logrus.Logger
}

func NewSpeechHandler(hub *infra.Hub, processor appmoderation.Processor, logger *logrus.Logger) Handler {
	return &SpeechHandler{
		hub:       hub,
		processor: processor,
		logger:    logger,
	}
}

func (h *SpeechHandler) Handle(c *websocket.Conn) {
	defer c.Close()

	if semaphore, ok := c.Locals(common.SemaphoreLocalKey).(*infra.Semaphore); ok {
		defer semaphore.Release()
	}

	streamID, err := uuid.Parse(c.Params("stream_id"))
	if err != nil {
		h.writeError(c, "Invalid stream id")
		return
	}
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		h.writeError(c, "Invalid user id")
		return
	}

	client := infra.NewClient(userID, streamID, c)
	h.hub.Register(client)
	defer h.hub.Unregister(client)

	h.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"stream_id": streamID,
	}).Info("Speech moderation session started")

	notifier := &hubNotifier{hub: h.hub, client: client}

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			h.logger.WithFields(logrus.Fields{
				"user_id":   userID,
				"stream_id": streamID,
			}).Debug("Speech moderation session closed")
			return
		}

		var event infra.TranscriptEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			h.logger.WithError(err).Debug("Discarding malformed frame")
			// Registered clients may receive concurrent broadcasts, so the
			// error goes through the serialized client writer.
			if err := client.Send(infra.NewErrorEvent("Error processing speech")); err != nil {
				h.logger.WithError(err).Debug("Failed to write error event")
			}
			continue
		}

		if event.Type != infra.EventSpeechTranscript {
			continue
		}

		h.processor.ProcessTranscript(context.Background(), userID, streamID, event.Transcript, notifier)
	}
}

func (h *SpeechHandler) writeError(c *websocket.Conn, message string) {
	if err := c.WriteJSON(infra.NewErrorEvent(message)); err != nil {
		h.logger.WithError(err).Debug("Failed to write error event")
	}
}

// hubNotifier binds the processor's notifications to the originating client
// and its stream room.
type hubNotifier struct {
	hub    *infra.Hub
	client *infra.Client
}

func (n *hubNotifier) Send(ctx context.Context, event infra.Event) error {
	return n.client.Send(event)
}

func (n *hubNotifier) Broadcast(ctx context.Context, event infra.Event) {
	n.hub.Broadcast(ctx, n.client.StreamID, event)
}
