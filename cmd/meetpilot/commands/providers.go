package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"google.golang.org/genai"

	"github.com/haivivi/meetpilot/pkg/cli"
	"github.com/haivivi/meetpilot/pkg/genx"
	openairealtime "github.com/haivivi/meetpilot/pkg/openai-realtime"
	"github.com/haivivi/meetpilot/pkg/server"
)

var errNoOpenAIKey = errors.New("OpenAI API key not found (set openai.api_key or OPENAI_API_KEY)")

// newGenerator builds the generator of the configured provider for model.
func newGenerator(ctx context.Context, cfg *cli.Config, model string) (genx.Generator, error) {
	switch cfg.Inference.Provider {
	case "gemini":
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.Gemini.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		return &genx.GeminiGenerator{Client: client, Model: model}, nil
	default:
		if cfg.OpenAI.APIKey == "" {
			return nil, errNoOpenAIKey
		}
		opts := []option.RequestOption{option.WithAPIKey(cfg.OpenAI.APIKey)}
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		if cfg.OpenAI.Organization != "" {
			opts = append(opts, option.WithOrganization(cfg.OpenAI.Organization))
		}
		if cfg.OpenAI.Project != "" {
			opts = append(opts, option.WithProject(cfg.OpenAI.Project))
		}
		client := openai.NewClient(opts...)
		return &genx.OpenAIGenerator{Client: &client, Model: model}, nil
	}
}

func newRunner(ctx context.Context, cfg *cli.Config, model string) (*genx.Runner, error) {
	gen, err := newGenerator(ctx, cfg, model)
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.InferenceTimeout()
	if err != nil {
		return nil, err
	}
	return &genx.Runner{
		Generator: gen,
		MaxTurns:  cfg.Inference.MaxTurns,
		Timeout:   timeout,
	}, nil
}

// realtimeDialer returns nil without an OpenAI key, which makes the server
// refuse transcription connections.
func realtimeDialer(cfg *cli.Config) server.DialFunc {
	if cfg.OpenAI.APIKey == "" {
		return nil
	}
	client := openairealtime.NewClient(cfg.OpenAI.APIKey,
		openairealtime.WithWebSocketURL(cfg.Transcription.URL),
		openairealtime.WithOrganization(cfg.OpenAI.Organization),
		openairealtime.WithProject(cfg.OpenAI.Project),
	)
	return server.RealtimeDialer(client)
}

func transcriptionSession(cfg *cli.Config) *openairealtime.TranscriptionSessionConfig {
	t := cfg.Transcription
	td := &openairealtime.TurnDetection{Type: t.VAD}
	if t.VAD == openairealtime.VADSemanticVAD {
		td.Eagerness = t.Eagerness
	}
	return &openairealtime.TranscriptionSessionConfig{
		InputAudioTranscription: &openairealtime.TranscriptionConfig{
			Model:    t.Model,
			Language: t.Language,
		},
		TurnDetection: td,
	}
}
