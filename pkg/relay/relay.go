// Package relay bridges a client WebSocket and an upstream transcription
// session for the lifetime of one connection.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/haivivi/meetpilot/pkg/meeting"
	openairealtime "github.com/haivivi/meetpilot/pkg/openai-realtime"
)

// Lifecycle notices sent to the client.
const (
	StatusSessionCreated   = "Session created"
	StatusSessionUpdated   = "Session configuration updated"
	StatusSpeechStopped    = "Speech stopped detected"
	StatusAgendaReceived   = "Agenda information received"
	StatusUpstreamComplete = "OpenAI session completed normally"
)

// Upstream is the transcription session driven by the relay.
// *openairealtime.TranscriptionSession satisfies it.
type Upstream interface {
	UpdateTranscriptionSession(config *openairealtime.TranscriptionSessionConfig) error
	AppendAudio(audio []byte) error
	Events() iter.Seq2[*openairealtime.ServerEvent, error]
	Close() error
}

// Sink receives the meeting inputs. *meeting.Panel satisfies it.
type Sink interface {
	Deliver(seg meeting.TranscriptSegment)
	AttachAgenda(info *meeting.AgendaInfo)
}

type Config struct {
	// Session is sent upstream before any audio.
	Session *openairealtime.TranscriptionSessionConfig

	// ForwardTranscripts also sends every finalized segment to the client
	// as {"text": ..., "is_final": true}.
	ForwardTranscripts bool
}

// Relay translates between one client connection and one upstream session.
type Relay struct {
	client   *SafeConn
	upstream Upstream
	sink     Sink
	cfg      Config
}

func New(client *SafeConn, upstream Upstream, sink Sink, cfg Config) *Relay {
	return &Relay{client: client, upstream: upstream, sink: sink, cfg: cfg}
}

// Serve configures the upstream session and relays until either side goes
// away or ctx is done. Both connections are closed when Serve returns.
func (r *Relay) Serve(ctx context.Context) error {
	defer r.upstream.Close()
	defer r.client.Close()

	if err := r.upstream.UpdateTranscriptionSession(r.cfg.Session); err != nil {
		r.notifyError(fmt.Sprintf("Failed to configure session: %v", err))
		return fmt.Errorf("relay: configure session: %w", err)
	}
	slog.Info("transcription session configured")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		r.readUpstream(ctx)
	}()
	// Unblock the client read when the upstream side ends or ctx is done.
	go func() {
		<-ctx.Done()
		r.client.Close()
		r.upstream.Close()
	}()

	err := r.readClient(ctx)
	cancel()
	wg.Wait()
	return err
}

func (r *Relay) readClient(ctx context.Context) error {
	for {
		mt, data, err := r.client.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				slog.Info("client disconnected", "code", ce.Code)
				return nil
			}
			return fmt.Errorf("relay: read client: %w", err)
		}
		switch mt {
		case websocket.TextMessage:
			r.handleControl(data)
		case websocket.BinaryMessage:
			if err := r.upstream.AppendAudio(data); err != nil {
				slog.Warn("forward audio failed", "error", err)
				r.notifyError(fmt.Sprintf("Error processing message: %v", err))
			}
		}
	}
}

type controlMessage struct {
	Type   string          `json:"type"`
	Agenda json.RawMessage `json:"agenda"`
}

func (r *Relay) handleControl(data []byte) {
	var msg controlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("received non-JSON text", "content", string(data))
		return
	}
	if msg.Type != "agenda_info" || len(msg.Agenda) == 0 {
		slog.Debug("ignored control message", "type", msg.Type)
		return
	}
	info, err := meeting.ParseAgendaInfo(msg.Agenda)
	if err != nil {
		slog.Warn("invalid agenda", "error", err)
		r.notifyError(fmt.Sprintf("Error processing message: %v", err))
		return
	}
	r.sink.AttachAgenda(info)
	r.notifyStatus(statusNotice{Status: StatusAgendaReceived})
}

func (r *Relay) readUpstream(ctx context.Context) {
	for ev, err := range r.upstream.Events() {
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			var ce *websocket.CloseError
			if errors.As(err, &ce) && ce.Code == websocket.CloseNormalClosure {
				r.notifyStatus(statusNotice{Status: StatusUpstreamComplete})
			} else {
				r.notifyStatus(statusNotice{Status: fmt.Sprintf("OpenAI connection closed: %v", err)})
			}
			slog.Info("upstream closed", "error", err)
			return
		}
		r.handleEvent(ev)
	}
}

func (r *Relay) handleEvent(ev *openairealtime.ServerEvent) {
	if ev.ParseError != nil {
		r.forwardRaw(ev.Raw)
		return
	}
	switch ev.Type {
	case openairealtime.EventTypeTranscriptionSessionCreated:
		var sess struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(ev.Session, &sess)
		slog.Info("transcription session created", "session_id", sess.ID)
		r.notifyStatus(statusNotice{Status: StatusSessionCreated, SessionID: sess.ID})
	case openairealtime.EventTypeTranscriptionSessionUpdated:
		r.notifyStatus(statusNotice{Status: StatusSessionUpdated})
	case openairealtime.EventTypeTranscriptionCompleted:
		if ev.Transcript == "" {
			return
		}
		r.sink.Deliver(meeting.NewSegment(ev.Transcript))
		if r.cfg.ForwardTranscripts {
			if err := r.client.Emit(transcriptNotice{Text: ev.Transcript, IsFinal: true}); err != nil {
				slog.Warn("forward transcript failed", "error", err)
			}
		}
	case openairealtime.EventTypeInputAudioBufferSpeechStopped:
		r.notifyStatus(statusNotice{Status: StatusSpeechStopped})
	case openairealtime.EventTypeError:
		msg := ev.ErrorMessage()
		if msg == "" {
			msg = "Unknown error"
		}
		slog.Warn("upstream error", "message", msg)
		r.notifyError("Error from OpenAI: " + msg)
	default:
		r.forwardRaw(ev.Raw)
	}
}

func (r *Relay) forwardRaw(raw []byte) {
	if err := r.client.SendText(raw); err != nil {
		slog.Warn("forward upstream event failed", "error", err)
	}
}

func (r *Relay) notifyStatus(n statusNotice) {
	if err := r.client.Emit(n); err != nil {
		slog.Warn("send status failed", "status", n.Status, "error", err)
	}
}

func (r *Relay) notifyError(msg string) {
	if err := r.client.Error(msg); err != nil {
		slog.Warn("send error notice failed", "error", err)
	}
}
