package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config junta todo lo que el proceso necesita del entorno. La credencial
// del clasificador viene solo por variable de entorno, nunca en el código.
type Config struct {
	Port           int
	DBPath         string
	SessionDBPath  string
	AllowedOrigins []string
	OpenRouter     OpenRouterConfig
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

func Load() (Config, error) {
	c := Config{}

	port, err := intOr("PORT", 3000)
	if err != nil {
		return Config{}, err
	}
	c.Port = port

	c.DBPath = stringOr("DB_PATH", filepath.Join("data", "clientes.json"))
	c.SessionDBPath = stringOr("SESSION_DB_PATH", "session.db")
	c.AllowedOrigins = splitOr("ALLOWED_ORIGINS", []string{"*"})

	c.OpenRouter.APIKey = os.Getenv("OPENROUTER_API_KEY")
	c.OpenRouter.Model = stringOr("OPENROUTER_MODEL", "openai/gpt-3.5-turbo")
	c.OpenRouter.BaseURL = strings.TrimSpace(os.Getenv("OPENROUTER_URL"))

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be a valid port, got %d", c.Port)
	}
	if c.OpenRouter.APIKey == "" {
		return errors.New("OPENROUTER_API_KEY is required")
	}
	return nil
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func stringOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intOr(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func splitOr(key string, fallback []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
