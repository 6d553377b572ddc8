package stt

import "context"

// Provider defines the interface for speech-to-text providers
type Provider interface {
	// Transcribe transcribes an audio file and returns the result.
	// language is a BCP-47-ish code ("en", "es", ...) or "auto".
	Transcribe(ctx context.Context, audioPath, language string) (*Result, error)

	// Name returns the name of the provider (e.g., "assemblyai", "google")
	Name() string
}
