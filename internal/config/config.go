package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Provider selects the remote inference backend.
type Provider string

const (
	ProviderMock   Provider = "mock"
	ProviderChat   Provider = "chat"
	ProviderGemini Provider = "gemini"
)

// SpeechProvider selects the speech engine backing voice input/output.
type SpeechProvider string

const (
	SpeechNone     SpeechProvider = "none"
	SpeechDeepgram SpeechProvider = "deepgram"
)

type Config struct {
	Port string

	Provider     Provider
	ChatEndpoint string
	ModelName    string

	CredentialFile string

	HistoryWindow  int
	GatewayTimeout time.Duration
	MaxTokens      int
	Temperature    float64
	ThinkDelay     time.Duration

	Speech         SpeechProvider
	SpeechAPIKey   string
	SpeechLanguage string
	SpeechRate     float64
	Muted          bool
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

func getIntEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// Load reads all env vars and builds the config. A .env file in the working
// directory is honoured when present.
func Load() *Config {
	_ = godotenv.Load()

	defaultCredFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		defaultCredFile = filepath.Join(home, ".config", "disha", "credential")
	}

	var provider Provider
	switch getEnv("DISHA_PROVIDER", "chat") {
	case "mock":
		provider = ProviderMock
	case "gemini":
		provider = ProviderGemini
	default:
		provider = ProviderChat
	}

	var speech SpeechProvider
	switch getEnv("DISHA_SPEECH_PROVIDER", "none") {
	case "deepgram":
		speech = SpeechDeepgram
	default:
		speech = SpeechNone
	}

	cfg := &Config{
		Port: getEnv("DISHA_PORT", "8080"),

		Provider:     provider,
		ChatEndpoint: getEnv("DISHA_CHAT_ENDPOINT", "https://api.openai.com/v1/chat/completions"),
		ModelName:    getEnv("DISHA_MODEL_NAME", "gpt-4o-mini"),

		CredentialFile: getEnv("DISHA_CREDENTIAL_FILE", defaultCredFile),

		HistoryWindow:  getIntEnv("DISHA_HISTORY_WINDOW", 20),
		GatewayTimeout: getDurationEnv("DISHA_GATEWAY_TIMEOUT", 30*time.Second),
		MaxTokens:      getIntEnv("DISHA_MAX_TOKENS", 1024),
		Temperature:    getFloatEnv("DISHA_TEMPERATURE", 0.7),
		ThinkDelay:     getDurationEnv("DISHA_THINK_DELAY", 400*time.Millisecond),

		Speech:         speech,
		SpeechAPIKey:   getEnv("DISHA_SPEECH_API_KEY", os.Getenv("DEEPGRAM_API_KEY")),
		SpeechLanguage: getEnv("DISHA_SPEECH_LANGUAGE", "en-IN"),
		SpeechRate:     getFloatEnv("DISHA_SPEECH_RATE", 1.0),
		Muted:          getBoolEnv("DISHA_MUTED", false),
	}

	if cfg.Speech == SpeechDeepgram && cfg.SpeechAPIKey == "" {
		log.Fatal("DISHA_SPEECH_API_KEY must be set when DISHA_SPEECH_PROVIDER=deepgram")
	}

	return cfg
}
