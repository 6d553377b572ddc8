package stt

import (
	"fmt"
	"strings"

	"lecturenotes/internal/config"
	"lecturenotes/internal/logger"
)

// CreateProvider creates an STT provider based on configuration
func CreateProvider(cfg *config.Config, log *logger.Logger) (Provider, error) {
	name := strings.ToLower(cfg.STTProvider)
	if name == "" {
		name = "assemblyai"
		log.Infow("STT_PROVIDER not set, defaulting to assemblyai")
	}

	switch name {
	case "assemblyai":
		return createAssemblyAIProvider(cfg, log)
	case "google":
		return createGoogleProvider(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported STT provider: %s. Supported: assemblyai, google", name)
	}
}

func createAssemblyAIProvider(cfg *config.Config, log *logger.Logger) (Provider, error) {
	if cfg.AssemblyAIKey == "" {
		return nil, fmt.Errorf("ASSEMBLYAI_API_KEY environment variable is not set")
	}
	log.Infow("creating AssemblyAI STT provider", "model", cfg.SpeechModel)
	return NewAssemblyAIProvider(cfg.AssemblyAIKey, cfg.AssemblyAIURL, cfg.SpeechModel, log), nil
}

// createGoogleProvider creates a Google STT provider.
// GOOGLE_STT_KEY_FILE can be either:
//   - An API key (39 characters, typically starts with "AIzaSy")
//   - A file path to a JSON key file
//   - A JSON string containing the service account credentials
func createGoogleProvider(cfg *config.Config, log *logger.Logger) (Provider, error) {
	keyData := strings.TrimSpace(cfg.GoogleKeyFile)
	if keyData == "" {
		return nil, fmt.Errorf("GOOGLE_STT_KEY_FILE environment variable is not set")
	}

	isAPIKey := len(keyData) == 39 && strings.HasPrefix(keyData, "AIzaSy")
	if !isAPIKey && cfg.GoogleProject == "" {
		return nil, fmt.Errorf("GOOGLE_STT_PROJECT_ID is required when using a service account")
	}

	log.Infow("creating Google STT provider", "api_key", isAPIKey, "project", cfg.GoogleProject)
	return NewGoogleProvider(cfg.GoogleProject, keyData, log)
}
