package openairealtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// TranscriptionSession is a WebSocket transcription session.
type TranscriptionSession struct {
	conn      *websocket.Conn
	closeCh   chan struct{}
	eventsCh  chan eventOrError
	closeOnce sync.Once

	mu        sync.Mutex
	sessionID string
}

type eventOrError struct {
	event *ServerEvent
	err   error
}

func (c *Client) connectTranscription(ctx context.Context) (*TranscriptionSession, error) {
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+c.config.apiKey)
	headers.Set("OpenAI-Beta", "realtime=v1")
	if c.config.organization != "" {
		headers.Set("OpenAI-Organization", c.config.organization)
	}
	if c.config.project != "" {
		headers.Set("OpenAI-Project", c.config.project)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: c.config.handshakeTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, c.config.wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, &Error{
				Code:       "connection_failed",
				Message:    fmt.Sprintf("failed to connect: %v", err),
				HTTPStatus: resp.StatusCode,
			}
		}
		return nil, fmt.Errorf("openai-realtime: failed to connect: %w", err)
	}

	s := &TranscriptionSession{
		conn:     conn,
		closeCh:  make(chan struct{}),
		eventsCh: make(chan eventOrError, 100),
	}
	go s.readLoop()
	return s, nil
}

func generateEventID() string {
	return "evt_" + uuid.New().String()[:12]
}

// UpdateTranscriptionSession sends transcription_session.update.
func (s *TranscriptionSession) UpdateTranscriptionSession(config *TranscriptionSessionConfig) error {
	return s.sendEvent(map[string]any{
		"event_id": generateEventID(),
		"type":     EventTypeTranscriptionSessionUpdate,
		"session":  config,
	})
}

// AppendAudio appends raw audio bytes to the input audio buffer.
func (s *TranscriptionSession) AppendAudio(audio []byte) error {
	return s.AppendAudioBase64(base64.StdEncoding.EncodeToString(audio))
}

// AppendAudioBase64 appends base64-encoded audio to the input audio buffer.
func (s *TranscriptionSession) AppendAudioBase64(audioBase64 string) error {
	return s.sendEvent(map[string]any{
		"type":  EventTypeInputAudioBufferAppend,
		"audio": audioBase64,
	})
}

// CommitInput commits the audio buffer. Only needed when turn detection is off.
func (s *TranscriptionSession) CommitInput() error {
	return s.sendEvent(map[string]any{
		"event_id": generateEventID(),
		"type":     EventTypeInputAudioBufferCommit,
	})
}

// ClearInput clears the input audio buffer.
func (s *TranscriptionSession) ClearInput() error {
	return s.sendEvent(map[string]any{
		"event_id": generateEventID(),
		"type":     EventTypeInputAudioBufferClear,
	})
}

// Events returns an iterator over server events. The iterator ends after
// yielding a transport error, or when the session is closed.
func (s *TranscriptionSession) Events() iter.Seq2[*ServerEvent, error] {
	return func(yield func(*ServerEvent, error) bool) {
		for {
			select {
			case <-s.closeCh:
				return
			case item, ok := <-s.eventsCh:
				if !ok {
					return
				}
				if !yield(item.event, item.err) {
					return
				}
				if item.err != nil {
					return
				}
			}
		}
	}
}

// Close closes the session. It is safe to call more than once.
func (s *TranscriptionSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closeCh)
		err = s.conn.Close()
	})
	return err
}

// SessionID returns the ID announced by transcription_session.created.
func (s *TranscriptionSession) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

func (s *TranscriptionSession) sendEvent(event map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, _ := event["type"].(string); t != EventTypeInputAudioBufferAppend &&
		slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		if b, err := json.Marshal(event); err == nil {
			str := string(b)
			if len(str) > 500 {
				str = str[:500] + "..."
			}
			slog.Debug("sending event", "content", str)
		}
	}

	if err := s.conn.WriteJSON(event); err != nil {
		return fmt.Errorf("openai-realtime: write %v: %w", event["type"], err)
	}
	return nil
}

func (s *TranscriptionSession) readLoop() {
	defer close(s.eventsCh)

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.closeCh:
			case s.eventsCh <- eventOrError{err: fmt.Errorf("openai-realtime: read: %w", err)}:
			}
			return
		}

		if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
			msgStr := string(message)
			if len(msgStr) > 1000 {
				msgStr = msgStr[:1000] + "..."
			}
			slog.Debug("received message", "len", len(message), "content", msgStr)
		}

		event := parseEvent(message)
		if event.Type == EventTypeTranscriptionSessionCreated {
			var sess struct {
				ID string `json:"id"`
			}
			if json.Unmarshal(event.Session, &sess) == nil {
				s.mu.Lock()
				s.sessionID = sess.ID
				s.mu.Unlock()
			}
		}

		select {
		case <-s.closeCh:
			return
		case s.eventsCh <- eventOrError{event: event}:
		}
	}
}

// parseEvent decodes message. A message that is not a JSON object is
// returned with ParseError set and Raw holding the original bytes.
func parseEvent(message []byte) *ServerEvent {
	var event ServerEvent
	if err := json.Unmarshal(message, &event); err != nil {
		return &ServerEvent{Raw: message, ParseError: fmt.Errorf("openai-realtime: parse event: %w", err)}
	}
	event.Raw = message
	return &event
}
