package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all classify configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Generator GeneratorConfig `toml:"generator"`
}

type ServerConfig struct {
	Bind string `toml:"bind"`
	Port int    `toml:"port"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type GeneratorConfig struct {
	Provider     string `toml:"provider"` // "openai", "anthropic", "ollama"
	Model        string `toml:"model"`    // e.g. "gpt-4o-mini"
	OpenAIKey    string `toml:"openai_key"`
	AnthropicKey string `toml:"anthropic_key"`
	OllamaURL    string `toml:"ollama_url"`
	OllamaModel  string `toml:"ollama_model"` // e.g. "llama3.2"
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 38080,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Generator: GeneratorConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
	}
}

// DefaultPath returns the default config file location,
// ~/.classify/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".classify", "config.toml"), nil
}

// Load reads config from path, falling back to defaults for any missing
// fields. A missing file is not an error. Environment variables override the
// file for API keys so secrets can stay out of it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Generator.OpenAIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Generator.AnthropicKey = v
	}
	if v := os.Getenv("CLASSIFY_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("CLASSIFY_PROVIDER"); v != "" {
		cfg.Generator.Provider = v
	}
	if v := os.Getenv("CLASSIFY_MODEL"); v != "" {
		cfg.Generator.Model = v
	}
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
