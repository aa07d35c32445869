package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App   AppConfig
	Voice VoiceConfig
	Ai    AIConfig
	Demo  DemoConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	ActivityLogPath    string
	WebSocketLogPath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	SessionTTL         time.Duration
	AudioTTL           time.Duration
}

type VoiceConfig struct {
	Endpoint string
	APIKey   string
	Language string
	Voice    string
	Timeout  time.Duration
}

type AIConfig struct {
	LLMProvider   string // "openai" or "ollama"
	LLMModel      string // e.g. "gpt-4o", "llama3"
	OpenAIKey     string
	OpenAIBaseURL string
	OllamaBaseURL string
	Temperature   float64
	MaxTokens     int
	SystemPrompt  string
}

// DemoConfig holds the pauses between scripted effects.
type DemoConfig struct {
	ReplyDelay        time.Duration
	NoticeDelay       time.Duration
	PatchDelay        time.Duration
	AnalysisDelay     time.Duration
	UploadNoticeDelay time.Duration
}

const defaultSystemPrompt = "You are a helpful AI grant writing assistant. Help users write grant proposals by " +
	"asking relevant questions and providing guidance. Keep responses concise and conversational. " +
	"Respond naturally as if speaking aloud."

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			ActivityLogPath:    getEnv("ACTIVITY_LOG_PATH", "logs/activity.log"),
			WebSocketLogPath:   getEnv("WEBSOCKET_LOG_PATH", "logs/websocket.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			SessionTTL:         time.Duration(getEnvAsInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
			AudioTTL:           time.Duration(getEnvAsInt("AUDIO_TTL_MINUTES", 15)) * time.Minute,
		},
		Voice: VoiceConfig{
			Endpoint: getEnv("SPEECH_API_ENDPOINT", "https://api.elevenlabs.io/v1"),
			APIKey:   getEnv("SPEECH_API_KEY", ""),
			Language: getEnv("SPEECH_LANGUAGE", "en"),
			Voice:    getEnv("SPEECH_VOICE", "en-US-Neural"),
			Timeout:  time.Duration(getEnvAsInt("VOICE_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "openai"),
			LLMModel:      getEnv("LLM_MODEL", "gpt-4o"),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			Temperature:   getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			MaxTokens:     getEnvAsInt("LLM_MAX_TOKENS", 500),
			SystemPrompt:  getEnv("LLM_SYSTEM_PROMPT", defaultSystemPrompt),
		},
		Demo: DemoConfig{
			ReplyDelay:        getEnvAsMillis("DEMO_REPLY_DELAY_MS", 1500),
			NoticeDelay:       getEnvAsMillis("DEMO_NOTICE_DELAY_MS", 1500),
			PatchDelay:        getEnvAsMillis("DEMO_PATCH_DELAY_MS", 1000),
			AnalysisDelay:     getEnvAsMillis("DEMO_ANALYSIS_DELAY_MS", 2000),
			UploadNoticeDelay: getEnvAsMillis("DEMO_UPLOAD_NOTICE_DELAY_MS", 2000),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsMillis(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback)) * time.Millisecond
}
