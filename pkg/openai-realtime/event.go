package openairealtime

import "encoding/json"

// Client event types (sent from client to server).
const (
	EventTypeTranscriptionSessionUpdate = "transcription_session.update"

	EventTypeInputAudioBufferAppend = "input_audio_buffer.append"
	EventTypeInputAudioBufferCommit = "input_audio_buffer.commit"
	EventTypeInputAudioBufferClear  = "input_audio_buffer.clear"
)

// Server event types (sent from server to client).
const (
	EventTypeError = "error"

	EventTypeTranscriptionSessionCreated = "transcription_session.created"
	EventTypeTranscriptionSessionUpdated = "transcription_session.updated"

	EventTypeTranscriptionDelta     = "conversation.item.input_audio_transcription.delta"
	EventTypeTranscriptionCompleted = "conversation.item.input_audio_transcription.completed"
	EventTypeTranscriptionFailed    = "conversation.item.input_audio_transcription.failed"

	EventTypeInputAudioBufferCommitted     = "input_audio_buffer.committed"
	EventTypeInputAudioBufferCleared       = "input_audio_buffer.cleared"
	EventTypeInputAudioBufferSpeechStarted = "input_audio_buffer.speech_started"
	EventTypeInputAudioBufferSpeechStopped = "input_audio_buffer.speech_stopped"
)

// ServerEvent is a message received from the transcription session.
type ServerEvent struct {
	Type    string `json:"type"`
	EventID string `json:"event_id,omitzero"`

	// Session is the raw session object of transcription_session.* events.
	Session json.RawMessage `json:"session,omitzero"`

	ItemID         string `json:"item_id,omitzero"`
	PreviousItemID string `json:"previous_item_id,omitzero"`
	ContentIndex   int    `json:"content_index,omitzero"`

	// AudioStartMs and AudioEndMs are set on speech_started / speech_stopped.
	AudioStartMs int `json:"audio_start_ms,omitzero"`
	AudioEndMs   int `json:"audio_end_ms,omitzero"`

	// Transcript is the finalized text of a transcription completed event.
	Transcript string `json:"transcript,omitzero"`

	// Delta is the incremental text of a transcription delta event.
	Delta string `json:"delta,omitzero"`

	// Error is set on error and transcription failed events.
	Error *Error `json:"error,omitzero"`

	// Raw contains the original message.
	Raw []byte `json:"-"`

	// ParseError is set when Raw could not be decoded; only Raw is valid then.
	ParseError error `json:"-"`
}

// ErrorMessage returns the upstream error message, or "" when the event
// carries none.
func (e *ServerEvent) ErrorMessage() string {
	if e.Error == nil {
		return ""
	}
	return e.Error.Message
}
