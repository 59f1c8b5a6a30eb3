// Package server exposes the agenda endpoints and the live transcription
// websocket over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/haivivi/meetpilot/pkg/agendachat"
	"github.com/haivivi/meetpilot/pkg/genx"
	"github.com/haivivi/meetpilot/pkg/meeting"
	openairealtime "github.com/haivivi/meetpilot/pkg/openai-realtime"
	"github.com/haivivi/meetpilot/pkg/relay"
)

// DialFunc opens one upstream transcription session.
type DialFunc func(ctx context.Context) (relay.Upstream, error)

// AnalystsFunc builds the analysts of one connection.
type AnalystsFunc func(r *genx.Runner, emitter meeting.Emitter) []*meeting.Analyst

type Options struct {
	// Dial opens the upstream session of each transcription connection.
	// When nil, connections are refused with "OpenAI API key not found".
	Dial DialFunc

	// Session is sent upstream before any audio.
	Session *openairealtime.TranscriptionSessionConfig

	ForwardTranscripts bool

	// Runner runs the live analysts.
	Runner *genx.Runner

	// Analysts defaults to meeting.NewDefaultAnalysts.
	Analysts AnalystsFunc

	// Agenda serves the agenda endpoints. When nil they answer 503.
	Agenda *agendachat.Service

	// AllowedOrigins lists the browser origins allowed by CORS and the
	// websocket upgrade. "*" allows any origin.
	AllowedOrigins []string
}

// RealtimeDialer returns a DialFunc backed by the realtime client.
func RealtimeDialer(c *openairealtime.Client) DialFunc {
	return func(ctx context.Context) (relay.Upstream, error) {
		return c.ConnectTranscription(ctx)
	}
}

type Server struct {
	opts     Options
	router   chi.Router
	upgrader websocket.Upgrader
}

func New(opts Options) *Server {
	if opts.Analysts == nil {
		opts.Analysts = meeting.NewDefaultAnalysts
	}
	srv := &Server{opts: opts}
	srv.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     srv.checkOrigin,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors(opts.AllowedOrigins))

	r.Get("/", srv.handleRoot)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", srv.handleHealth)
		r.Post("/agenda", srv.handleCreateAgenda)
		r.Post("/agenda/", srv.handleCreateAgenda)
		r.Post("/agenda/chat", srv.handleAgendaChat)
		r.Get("/conversation/transcribe", srv.handleTranscribe)
	})

	srv.router = r
	return srv
}

func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server", "addr", addr)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello World"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateAgenda(w http.ResponseWriter, r *http.Request) {
	if s.opts.Agenda == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "agenda generation is not configured"})
		return
	}
	var form agendachat.AgendaForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid agenda form: " + err.Error()})
		return
	}
	if err := form.Validate(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	agenda, err := s.opts.Agenda.Create(r.Context(), &form)
	if err != nil {
		slog.Error("create agenda failed", "title", form.Title, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "agenda generation failed"})
		return
	}
	writeJSON(w, http.StatusOK, agenda)
}

func (s *Server) handleAgendaChat(w http.ResponseWriter, r *http.Request) {
	if s.opts.Agenda == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "agenda generation is not configured"})
		return
	}
	var req agendachat.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid chat request: " + err.Error()})
		return
	}
	if req.Agenda == nil || len(req.Messages) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "agenda and messages are required"})
		return
	}

	agenda, verdict, err := s.opts.Agenda.Chat(r.Context(), req.Agenda, req.Messages)
	if err != nil {
		slog.Error("agenda chat failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "agenda chat failed"})
		return
	}
	slog.Debug("agenda chat", "on_topic", verdict.OnTopic, "reasoning", verdict.Reasoning)
	writeJSON(w, http.StatusOK, agenda)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || originAllowed(s.opts.AllowedOrigins, origin)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
