package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port          string
	DataDir       string
	TemplateGlob  string
	MaxUploadMB   int64
	STTProvider   string
	AssemblyAIKey string
	AssemblyAIURL string
	SpeechModel   string
	GoogleProject string
	GoogleKeyFile string
	OpenAIKey     string
	OpenAIModel   string
	LogLevel      string
	LogFormat     string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DataDir:       getEnv("DATA_DIR", "data"),
		TemplateGlob:  getEnv("TEMPLATE_GLOB", "web/templates/*.html"),
		STTProvider:   getEnv("STT_PROVIDER", "assemblyai"),
		AssemblyAIKey: os.Getenv("ASSEMBLYAI_API_KEY"),
		AssemblyAIURL: getEnv("ASSEMBLYAI_API_URL", "https://api.assemblyai.com/v2"),
		SpeechModel:   getEnv("ASSEMBLYAI_SPEECH_MODEL", "universal-2"),
		GoogleProject: os.Getenv("GOOGLE_STT_PROJECT_ID"),
		GoogleKeyFile: os.Getenv("GOOGLE_STT_KEY_FILE"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
	}

	maxUpload := getEnv("MAX_UPLOAD_MB", "500")
	n, err := strconv.ParseInt(maxUpload, 10, 64)
	if err != nil || n < 1 {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB %q", maxUpload)
	}
	cfg.MaxUploadMB = n

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
