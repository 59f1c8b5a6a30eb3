package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haivivi/meetpilot/pkg/agendachat"
	"github.com/haivivi/meetpilot/pkg/server"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and live transcription server",
	Long: `Run the meetpilot server.

Endpoints:
  GET  /api/health
  POST /api/agenda/             create an agenda from a form
  POST /api/agenda/chat         revise an agenda
  GET  /api/conversation/transcribe   live transcription websocket`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if listenAddr != "" {
			cfg.Listen = listenAddr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := server.Options{
			Dial:               realtimeDialer(cfg),
			Session:            transcriptionSession(cfg),
			ForwardTranscripts: cfg.Transcription.ForwardTranscripts,
			AllowedOrigins:     cfg.CORS.AllowedOrigins,
		}
		if opts.Dial == nil {
			slog.Warn("no OpenAI API key, transcription connections will be refused")
		}

		if opts.Runner, err = newRunner(ctx, cfg, cfg.Inference.Model); err != nil {
			slog.Warn("live analysts disabled", "error", err)
			opts.Dial = nil
		}
		if agendaRunner, err := newRunner(ctx, cfg, cfg.Inference.AgendaModel); err != nil {
			slog.Warn("agenda endpoints disabled", "error", err)
		} else {
			opts.Agenda = agendachat.NewService(agendaRunner)
		}

		slog.Info("meetpilot starting",
			"provider", cfg.Inference.Provider,
			"model", cfg.Inference.Model,
			"agenda_model", cfg.Inference.AgendaModel,
			"transcription_model", cfg.Transcription.Model)
		return server.New(opts).ListenAndServe(ctx, cfg.Listen)
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (overrides config)")
}
