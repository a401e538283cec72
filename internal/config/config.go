package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Token        string  `env:"TOKEN,required,notEmpty"`
	AllowedUsers []int64 `env:"ALLOWED_USERS"`
	DBPath       string  `env:"DB_PATH"                 envDefault:"db.sqlite"`

	GeminiAPIKey   string `env:"GEMINI_API_KEY"`
	GeminiBaseURL  string `env:"GEMINI_BASE_URL"  envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiModel    string `env:"GEMINI_MODEL"     envDefault:"gemini-1.5-flash"`
	GeminiTTSModel string `env:"GEMINI_TTS_MODEL" envDefault:"gemini-2.5-flash-preview-tts"`
	GeminiTTSVoice string `env:"GEMINI_TTS_VOICE" envDefault:"Kore"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`

	SummarizeSingleFlight bool          `env:"SUMMARIZE_SINGLE_FLIGHT" envDefault:"true"`
	SessionTTL            time.Duration `env:"SESSION_TTL"             envDefault:"24h"`
	PageFetchTimeout      time.Duration `env:"PAGE_FETCH_TIMEOUT"      envDefault:"20s"`
}

func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}
