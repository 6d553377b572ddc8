package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "assemblyai", cfg.STTProvider)
	assert.Equal(t, "https://api.assemblyai.com/v2", cfg.AssemblyAIURL)
	assert.Equal(t, "universal-2", cfg.SpeechModel)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, int64(500), cfg.MaxUploadMB)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_DIR", "/var/lecturenotes")
	t.Setenv("STT_PROVIDER", "google")
	t.Setenv("MAX_UPLOAD_MB", "100")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "/var/lecturenotes", cfg.DataDir)
	assert.Equal(t, "google", cfg.STTProvider)
	assert.Equal(t, int64(100), cfg.MaxUploadMB)
	assert.Equal(t, "sk-test", cfg.OpenAIKey)
}

func TestLoadRejectsInvalidMaxUpload(t *testing.T) {
	for _, v := range []string{"abc", "0", "-5"} {
		t.Setenv("MAX_UPLOAD_MB", v)
		_, err := Load()
		assert.Error(t, err, "MAX_UPLOAD_MB=%s", v)
	}
}
