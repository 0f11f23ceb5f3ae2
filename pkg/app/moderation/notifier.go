package moderation

import (
	"context"

	"github.com/streamsentry/streamsentry/pkg/infra/websocket"
)

// Notifier delivers enforcement events for one utterance. Send targets the
// speaking client only; Broadcast reaches every participant of the stream.
//
//go:generate mockery --name=Notifier --dir=. --output=./mocks --filename=notifier_mock.go --case=underscore --with-expecter
type Notifier interface {
	Send(ctx context.Context, event websocket.Event) error
	Broadcast(ctx context.Context, event websocket.Event)
}
