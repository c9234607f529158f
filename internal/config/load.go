package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadEnv reads a .env file into the process environment. A missing file is
// not an error: the process may be configured through real variables only.
func LoadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// Load reads the YAML file at path, applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("GOOGLE_PROJECT_ID"); v != "" {
		cfg.Google.ProjectID = v
	}
	if v := os.Getenv("GOOGLE_LOCATION"); v != "" {
		cfg.Google.Location = v
	}
	if v := os.Getenv("GOOGLE_BUCKET_NAME"); v != "" {
		cfg.Google.BucketName = v
	}
	if v := os.Getenv("JINA_AUTH_TOKEN"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEYS"); v != "" {
		cfg.Gemini.APIKeys = splitList(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Holder shares the current configuration between the server and the config
// watcher. Jobs take one snapshot when they start.
type Holder struct {
	current atomic.Pointer[Config]
}

func NewHolder(cfg *Config) *Holder {
	h := &Holder{}
	h.current.Store(cfg)
	return h
}

func (h *Holder) Get() *Config {
	return h.current.Load()
}

func (h *Holder) Set(cfg *Config) {
	h.current.Store(cfg)
}

// StartupOnly lists the sections of next that differ from c but are only read
// at startup: the server, the model clients, logging and the transcode pool.
// A reload leaves them in effect until restart.
func (c *Config) StartupOnly(next *Config) []string {
	sections := []struct {
		name      string
		old, next any
	}{
		{"server", c.Server, next.Server},
		{"gemini", c.Gemini, next.Gemini},
		{"embedding", c.Embedding, next.Embedding},
		{"logging", c.Logging, next.Logging},
		{"performance", c.Performance, next.Performance},
	}
	var changed []string
	for _, s := range sections {
		if !reflect.DeepEqual(s.old, s.next) {
			changed = append(changed, s.name)
		}
	}
	return changed
}
