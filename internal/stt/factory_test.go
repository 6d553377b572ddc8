package stt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecturenotes/internal/config"
	"lecturenotes/internal/logger"
)

func TestCreateProviderAssemblyAI(t *testing.T) {
	cfg := &config.Config{
		STTProvider:   "assemblyai",
		AssemblyAIKey: "key",
		AssemblyAIURL: "https://api.assemblyai.com/v2",
		SpeechModel:   "universal-2",
	}

	p, err := CreateProvider(cfg, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "assemblyai", p.Name())
}

func TestCreateProviderDefaultsToAssemblyAI(t *testing.T) {
	cfg := &config.Config{AssemblyAIKey: "key"}

	p, err := CreateProvider(cfg, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "assemblyai", p.Name())
}

func TestCreateProviderMissingAssemblyAIKey(t *testing.T) {
	cfg := &config.Config{STTProvider: "assemblyai"}

	_, err := CreateProvider(cfg, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ASSEMBLYAI_API_KEY")
}

func TestCreateProviderGoogleAPIKey(t *testing.T) {
	cfg := &config.Config{
		STTProvider:   "google",
		GoogleKeyFile: "AIzaSy" + "0123456789012345678901234567890ab", // 39 chars
	}

	p, err := CreateProvider(cfg, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "google", p.Name())
}

func TestCreateProviderGoogleRequiresProjectForServiceAccount(t *testing.T) {
	cfg := &config.Config{
		STTProvider:   "google",
		GoogleKeyFile: "/path/to/service-account.json",
	}

	_, err := CreateProvider(cfg, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_STT_PROJECT_ID")
}

func TestCreateProviderUnsupported(t *testing.T) {
	cfg := &config.Config{STTProvider: "whisper"}

	_, err := CreateProvider(cfg, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported STT provider")
}
