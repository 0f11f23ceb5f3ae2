package moderation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/streamsentry/streamsentry/pkg/common"
	domain "github.com/streamsentry/streamsentry/pkg/domain/moderation"
	"github.com/streamsentry/streamsentry/pkg/domain/stream"
	"github.com/streamsentry/streamsentry/pkg/domain/streamtimeout"
	"github.com/streamsentry/streamsentry/pkg/domain/violation"
	"github.com/streamsentry/streamsentry/pkg/infra/cache"
	"github.com/streamsentry/streamsentry/pkg/infra/keymutex"
	"github.com/streamsentry/streamsentry/pkg/infra/websocket"
)

const (
	msgTimeoutActive = "You are currently timed out from speaking"
	msgWarningOne    = "Warning 1/3: Please avoid inappropriate language"
	msgWarningTwo    = "Warning 2/3: This is your second warning for inappropriate speech"
	msgWarningThree  = "Warning 3/3: You have been timed out for 1 minute"
	msgStreamStopped = "Your stream has been stopped due to repeated violations"
	msgProcessing    = "Error processing speech"

	reasonStreamStopped    = "Multiple speech violations"
	reasonStoppedBroadcast = "Stream stopped due to content policy violations"
	reasonTimeout          = "Automatic: Speech violation timeout"
)

// Processor runs the violation escalation state machine for one utterance at
// a time. State is never cached in process: the prior violation count is read
// fresh on every toxic utterance, so restarts and horizontal scaling cannot
// desynchronize it.
//
//go:generate mockery --name=Processor --dir=. --output=./mocks --filename=processor_mock.go --case=underscore --with-expecter
type Processor interface {
	ProcessTranscript(ctx context.Context, userID, streamID uuid.UUID, transcript string, notifier Notifier)
}

type processor struct {
	classifier      domain.Classifier
	violations      violation.Repository
	timeouts        streamtimeout.Repository
	streams         stream.Repository
	cache           cache.Client
	locks           *keymutex.KeyMutex
	logger          *logrus.Logger
	timeoutDuration time.Duration
}

func NewProcessor(
	classifier domain.Classifier,
	violations violation.Repository,
	timeouts streamtimeout.Repository,
	streams stream.Repository,
	cacheClient cache.Client,
	logger *logrus.Logger,
	timeoutDuration time.Duration,
) Processor {
	return &processor{
		classifier:      classifier,
		violations:      violations,
		timeouts:        timeouts,
		streams:         streams,
		cache:           cacheClient,
		locks:           keymutex.New(0),
		logger:          logger,
		timeoutDuration: timeoutDuration,
	}
}

func (p *processor) ProcessTranscript(ctx context.Context, userID, streamID uuid.UUID, transcript string, notifier Notifier) {
	if strings.TrimSpace(transcript) == "" {
		return
	}

	log := p.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"stream_id": streamID,
	})

	timedOut, err := p.isTimedOut(ctx, userID, streamID)
	if err != nil {
		log.WithError(err).Error("Failed to check timeout state")
		p.send(ctx, notifier, websocket.NewErrorEvent(msgProcessing))
		return
	}
	if timedOut {
		p.send(ctx, notifier, websocket.NewTimeoutActiveEvent(msgTimeoutActive))
		return
	}

	result := p.classifier.Detect(ctx, transcript)
	if !result.IsToxic {
		p.send(ctx, notifier, websocket.NewCleanEvent(transcript))
		return
	}

	// The count read and the record write below must not interleave with a
	// concurrent toxic utterance from the same (user, stream) pair, or both
	// would observe the same count and issue the same warning number.
	key := userID.String() + ":" + streamID.String()
	p.locks.Lock(key)
	defer p.locks.Unlock(key)

	count, err := p.violations.CountByUserAndStream(ctx, userID, streamID)
	if err != nil {
		log.WithError(err).Error("Failed to count prior violations")
		p.send(ctx, notifier, websocket.NewErrorEvent(msgProcessing))
		return
	}

	kind := violation.KindWarning
	switch count {
	case 0:
		p.send(ctx, notifier, websocket.NewWarningEvent(1, msgWarningOne, result.DetectedTerms))
	case 1:
		p.send(ctx, notifier, websocket.NewWarningEvent(2, msgWarningTwo, result.DetectedTerms))
	case common.MaxWarningsBeforeTimeout:
		kind = violation.KindTimeout
		seconds := p.timeoutDuration.Seconds()
		p.send(ctx, notifier, websocket.NewTimeoutEvent(3, msgWarningThree, seconds))
		notifier.Broadcast(ctx, websocket.NewUserTimedOutEvent(userID.String(), seconds))
		p.issueTimeout(ctx, log, userID, streamID)
	default:
		kind = violation.KindStreamStop
		p.stopStream(ctx, log, streamID)
		p.send(ctx, notifier, websocket.NewStreamStoppedEvent(msgStreamStopped, reasonStreamStopped))
		notifier.Broadcast(ctx, websocket.NewStreamStoppedEvent("", reasonStoppedBroadcast))
	}

	// Persistence happens after the enforcement decision is already on the
	// wire. A failed write costs one audit record, never a withheld action.
	record := &violation.Violation{
		UserID:        userID,
		StreamID:      streamID,
		Transcript:    transcript,
		ToxicityScore: result.Score,
		DetectedTerms: violation.TermsJSON(result.DetectedTerms),
		Kind:          kind,
	}
	if err := p.violations.Create(ctx, record); err != nil {
		log.WithError(err).Error("Failed to persist violation record")
	}
}

// isTimedOut consults the redis marker first and falls back to the database.
// Both paths treat expiry passively by comparing against the current time.
func (p *processor) isTimedOut(ctx context.Context, userID, streamID uuid.UUID) (bool, error) {
	exists, err := p.cache.TimeoutMarkerExists(ctx, streamID, userID)
	if err == nil && exists {
		return true, nil
	}
	if err != nil {
		p.logger.WithError(err).Debug("Timeout marker lookup failed, falling back to database")
	}
	return p.timeouts.ActiveExists(ctx, userID, streamID, time.Now())
}

func (p *processor) issueTimeout(ctx context.Context, log *logrus.Entry, userID, streamID uuid.UUID) {
	timeout := streamtimeout.New(userID, streamID, p.timeoutDuration, reasonTimeout, time.Now())
	if err := p.timeouts.Create(ctx, timeout); err != nil {
		log.WithError(err).Error("Failed to persist timeout record")
	}
	if err := p.cache.SaveTimeoutMarker(ctx, streamID, userID, p.timeoutDuration); err != nil {
		log.WithError(err).Warn("Failed to save timeout marker")
	}
}

func (p *processor) stopStream(ctx context.Context, log *logrus.Entry, streamID uuid.UUID) {
	if err := p.streams.MarkEnded(ctx, streamID, time.Now()); err != nil {
		log.WithError(err).Error("Failed to mark stream as ended")
	}
}

func (p *processor) send(ctx context.Context, notifier Notifier, event websocket.Event) {
	if err := notifier.Send(ctx, event); err != nil {
		p.logger.WithError(err).WithField("event", event.Type).Warn("Failed to deliver event")
	}
}
