package websocket

// Inbound event types.
const (
	EventSpeechTranscript = "speech_transcript"
)

// Outbound event types.
const (
	EventSpeechClean   = "speech_clean"
	EventSpeechWarning = "speech_warning"
	EventSpeechTimeout = "speech_timeout"
	EventStreamStopped = "stream_stopped"
	EventTimeoutActive = "timeout_active"
	EventUserTimedOut  = "user_timed_out"
	EventError         = "error"
)

// TranscriptEvent is the inbound frame carrying one utterance.
type TranscriptEvent struct {
	Type       string `json:"type"`
	Transcript string `json:"transcript"`
	UserID     string `json:"user_id"`
	StreamID   string `json:"stream_id"`
}

// Event is the outbound envelope. Fields are omitted when not relevant to
// the event type, mirroring the loose per-type payloads clients expect.
type Event struct {
	Type            string   `json:"type"`
	Message         string   `json:"message,omitempty"`
	Transcript      string   `json:"transcript,omitempty"`
	WarningNumber   int      `json:"warning_number,omitempty"`
	DetectedWords   []string `json:"detected_words,omitempty"`
	TimeoutDuration float64  `json:"timeout_duration,omitempty"`
	Duration        float64  `json:"duration,omitempty"`
	Reason          string   `json:"reason,omitempty"`
	UserID          string   `json:"user_id,omitempty"`
}

func NewCleanEvent(transcript string) Event {
	return Event{Type: EventSpeechClean, Transcript: transcript}
}

func NewWarningEvent(warningNumber int, message string, detectedWords []string) Event {
	return Event{
		Type:          EventSpeechWarning,
		WarningNumber: warningNumber,
		Message:       message,
		DetectedWords: detectedWords,
	}
}

func NewTimeoutEvent(warningNumber int, message string, timeoutSeconds float64) Event {
	return Event{
		Type:            EventSpeechTimeout,
		WarningNumber:   warningNumber,
		Message:         message,
		TimeoutDuration: timeoutSeconds,
	}
}

func NewStreamStoppedEvent(message, reason string) Event {
	return Event{Type: EventStreamStopped, Message: message, Reason: reason}
}

func NewTimeoutActiveEvent(message string) Event {
	return Event{Type: EventTimeoutActive, Message: message}
}

func NewUserTimedOutEvent(userID string, durationSeconds float64) Event {
	return Event{
		Type:     EventUserTimedOut,
		UserID:   userID,
		Duration: durationSeconds,
	}
}

func NewErrorEvent(message string) Event {
	return Event{Type: EventError, Message: message}
}
