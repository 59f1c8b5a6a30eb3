package server

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/haivivi/meetpilot/pkg/meeting"
	"github.com/haivivi/meetpilot/pkg/relay"
)

// handleTranscribe upgrades the client, opens the upstream session and runs
// the relay with one panel of analysts until either side closes.
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	client := relay.NewSafeConn(conn)
	id := uuid.NewString()
	log := slog.With("conn", id)
	log.Info("client connected", "remote", r.RemoteAddr)

	if s.opts.Dial == nil {
		client.Error("OpenAI API key not found")
		client.Close()
		return
	}

	ctx := r.Context()
	upstream, err := s.opts.Dial(ctx)
	if err != nil {
		log.Error("connect upstream failed", "error", err)
		client.Error("Error: " + err.Error())
		client.Close()
		return
	}
	log.Info("upstream connected")

	panel := meeting.NewPanel(ctx, s.opts.Analysts(s.opts.Runner, client)...)
	defer panel.Stop()

	err = relay.New(client, upstream, panel, relay.Config{
		Session:            s.opts.Session,
		ForwardTranscripts: s.opts.ForwardTranscripts,
	}).Serve(ctx)
	if err != nil {
		log.Warn("relay ended", "error", err)
		return
	}
	log.Info("client session ended")
}
