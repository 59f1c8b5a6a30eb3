package openairealtime

import (
	"context"
	"time"
)

// DefaultTranscriptionURL is the WebSocket endpoint for transcription sessions.
const DefaultTranscriptionURL = "wss://api.openai.com/v1/realtime?intent=transcription"

// Client is the OpenAI Realtime API client.
type Client struct {
	config *clientConfig
}

type clientConfig struct {
	apiKey           string
	organization     string
	project          string
	wsURL            string
	handshakeTimeout time.Duration
}

// Option configures the Client.
type Option func(*clientConfig)

// NewClient creates a new OpenAI Realtime client.
//
// The apiKey is required and can be obtained from:
// https://platform.openai.com/api-keys
func NewClient(apiKey string, opts ...Option) *Client {
	if apiKey == "" {
		panic("openai-realtime: API key is required")
	}

	cfg := &clientConfig{
		apiKey:           apiKey,
		wsURL:            DefaultTranscriptionURL,
		handshakeTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Client{config: cfg}
}

// WithOrganization sets the organization ID for API requests.
func WithOrganization(orgID string) Option {
	return func(c *clientConfig) {
		c.organization = orgID
	}
}

// WithProject sets the project ID for API requests.
func WithProject(projectID string) Option {
	return func(c *clientConfig) {
		c.project = projectID
	}
}

// WithWebSocketURL sets the WebSocket URL. An empty url keeps the default.
func WithWebSocketURL(url string) Option {
	return func(c *clientConfig) {
		if url != "" {
			c.wsURL = url
		}
	}
}

func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.handshakeTimeout = d
	}
}

// ConnectTranscription opens a transcription session.
func (c *Client) ConnectTranscription(ctx context.Context) (*TranscriptionSession, error) {
	return c.connectTranscription(ctx)
}
