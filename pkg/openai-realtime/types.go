package openairealtime

// Transcription models.
const (
	ModelGPT4oMiniTranscribe = "gpt-4o-mini-transcribe"
	ModelGPT4oTranscribe     = "gpt-4o-transcribe"
	ModelWhisper1            = "whisper-1"
)

// Audio formats supported by the Realtime API.
const (
	// AudioFormatPCM16 is 16-bit PCM audio at 24kHz, mono, little-endian.
	AudioFormatPCM16 = "pcm16"
	// AudioFormatG711ULaw is G.711 μ-law audio at 8kHz.
	AudioFormatG711ULaw = "g711_ulaw"
	// AudioFormatG711ALaw is G.711 A-law audio at 8kHz.
	AudioFormatG711ALaw = "g711_alaw"
)

// VAD modes for turn detection.
const (
	VADServerVAD   = "server_vad"
	VADSemanticVAD = "semantic_vad"
)

// Eagerness values for semantic VAD.
const (
	EagernessLow    = "low"
	EagernessMedium = "medium"
	EagernessHigh   = "high"
	EagernessAuto   = "auto"
)

// TranscriptionSessionConfig is the payload of transcription_session.update.
type TranscriptionSessionConfig struct {
	// InputAudioFormat defaults to pcm16 upstream.
	InputAudioFormat string `json:"input_audio_format,omitzero"`

	InputAudioTranscription *TranscriptionConfig `json:"input_audio_transcription,omitzero"`

	TurnDetection *TurnDetection `json:"turn_detection,omitzero"`

	InputAudioNoiseReduction *NoiseReduction `json:"input_audio_noise_reduction,omitzero"`
}

// TranscriptionConfig selects the transcription model.
type TranscriptionConfig struct {
	Model    string `json:"model,omitzero"`
	Language string `json:"language,omitzero"`
	Prompt   string `json:"prompt,omitzero"`
}

// TurnDetection configures voice activity detection.
type TurnDetection struct {
	Type string `json:"type"`

	// Eagerness applies to semantic_vad only.
	Eagerness string `json:"eagerness,omitzero"`

	// The following apply to server_vad only.
	Threshold         float64 `json:"threshold,omitzero"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms,omitzero"`
	SilenceDurationMs int     `json:"silence_duration_ms,omitzero"`
}

// NoiseReduction configures input noise reduction ("near_field" or "far_field").
type NoiseReduction struct {
	Type string `json:"type"`
}
