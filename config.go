package koquiz

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config carries environment-driven settings shared by the cmds.
type Config struct {
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	Model        string `env:"KOQUIZ_MODEL" env-default:"gpt-4o"`
	DBPath       string `env:"KOQUIZ_DB" env-default:"./koquiz.db"`
	Addr         string `env:"KOQUIZ_ADDR" env-default:":8080"`
	SessionKey   string `env:"KOQUIZ_SESSION_KEY" env-default:"dev-session-key"`
	MaxAttempts  int    `env:"KOQUIZ_MAX_ATTEMPTS" env-default:"5"`
	Verbose      bool   `env:"KOQUIZ_VERBOSE" env-default:"false"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment config: %w", err)
	}
	return &cfg, nil
}
