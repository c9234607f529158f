package config

import (
	"fmt"
	"time"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Google      GoogleConfig      `yaml:"google"`
	Speech      SpeechConfig      `yaml:"speech"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Calendar    CalendarConfig    `yaml:"calendar"`
	Matching    MatchingConfig    `yaml:"matching"`
	Summary     SummaryConfig     `yaml:"summary"`
	FFmpeg      FFmpegConfig      `yaml:"ffmpeg"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	APIPrefix       string        `yaml:"api_prefix"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// AllowedOrigins is matched against the Origin header on upgrade; "*" allows any.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type GoogleConfig struct {
	ProjectID  string `yaml:"project_id"`
	Location   string `yaml:"location"`
	BucketName string `yaml:"bucket_name"`
}

type SpeechConfig struct {
	LanguageCode    string `yaml:"language_code"`
	Model           string `yaml:"model"`
	SampleRateHertz int    `yaml:"sample_rate_hertz"`
	UseEnhanced     *bool  `yaml:"use_enhanced"`
	MinSpeakers     int    `yaml:"min_speakers"`
	MaxSpeakers     int    `yaml:"max_speakers"`
}

type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

type GeminiConfig struct {
	Model   string   `yaml:"model"`
	APIKeys []string `yaml:"api_keys"`
}

type CalendarConfig struct {
	CalendarID string `yaml:"calendar_id"`
	// FetchWindowDays of 0 selects the default.
	FetchWindowDays int `yaml:"fetch_window_days"`
}

// MatchingConfig holds the event matcher knobs. TimeWindowDays and
// MinSimilarity are independent parameters.
type MatchingConfig struct {
	// MinSimilarity is nil when unset; an explicit 0 accepts any score.
	MinSimilarity *float64 `yaml:"min_similarity"`
	// TimeWindowDays of 0 selects the default.
	TimeWindowDays int `yaml:"time_window_days"`
}

// Threshold returns the minimum similarity, or the default when unset.
func (m MatchingConfig) Threshold() float64 {
	if m.MinSimilarity == nil {
		return DefaultMinSimilarity
	}
	return *m.MinSimilarity
}

type SummaryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
	Format      string        `yaml:"format"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	SampleRate int    `yaml:"sample_rate"`
}

type PathsConfig struct {
	Temp string `yaml:"temp"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type PerformanceConfig struct {
	MaxConcurrentTranscodes int `yaml:"max_concurrent_transcodes"`
}

const (
	EmbeddingProviderJina   = "jina"
	EmbeddingProviderGemini = "gemini"

	DefaultMinSimilarity = 0.35

	SummaryFormatText = "text"
	SummaryFormatDocx = "docx"
)

func (c *Config) Validate() error {
	if c.Google.BucketName == "" {
		return fmt.Errorf("google.bucket_name is required")
	}
	if len(c.Gemini.APIKeys) == 0 && c.Google.ProjectID == "" {
		return fmt.Errorf("gemini.api_keys or google.project_id is required")
	}

	switch c.Embedding.Provider {
	case "":
		c.Embedding.Provider = EmbeddingProviderJina
	case EmbeddingProviderJina, EmbeddingProviderGemini:
	default:
		return fmt.Errorf("embedding.provider %q is not supported", c.Embedding.Provider)
	}
	if c.Embedding.Provider == EmbeddingProviderJina && c.Embedding.APIKey == "" {
		return fmt.Errorf("embedding.api_key is required for the jina provider")
	}

	switch c.Summary.Format {
	case "":
		c.Summary.Format = SummaryFormatText
	case SummaryFormatText, SummaryFormatDocx:
	default:
		return fmt.Errorf("summary.format %q is not supported", c.Summary.Format)
	}

	if t := c.Matching.Threshold(); t < 0 || t > 1 {
		return fmt.Errorf("matching.min_similarity must be within [0,1]")
	}
	if c.Speech.MinSpeakers > 0 && c.Speech.MaxSpeakers > 0 && c.Speech.MinSpeakers > c.Speech.MaxSpeakers {
		return fmt.Errorf("speech.min_speakers must not exceed speech.max_speakers")
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Server.APIPrefix == "" {
		c.Server.APIPrefix = "/api/v1"
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Google.Location == "" {
		c.Google.Location = "us-central1"
	}
	if c.Speech.LanguageCode == "" {
		c.Speech.LanguageCode = "en-US"
	}
	if c.Speech.Model == "" {
		c.Speech.Model = "video"
	}
	if c.Speech.UseEnhanced == nil {
		enhanced := true
		c.Speech.UseEnhanced = &enhanced
	}
	if c.Speech.MinSpeakers == 0 {
		c.Speech.MinSpeakers = 1
	}
	if c.Speech.MaxSpeakers == 0 {
		c.Speech.MaxSpeakers = 10
	}
	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.FFmpeg.SampleRate == 0 {
		c.FFmpeg.SampleRate = 48000
	}
	// Recognition is configured against the transcoded encoding.
	c.Speech.SampleRateHertz = c.FFmpeg.SampleRate
	if c.Embedding.Model == "" {
		if c.Embedding.Provider == EmbeddingProviderGemini {
			c.Embedding.Model = "text-embedding-004"
		} else {
			c.Embedding.Model = "jina-embeddings-v3"
		}
	}
	if c.Embedding.BaseURL == "" && c.Embedding.Provider == EmbeddingProviderJina {
		c.Embedding.BaseURL = "https://api.jina.ai/v1/"
	}
	if c.Embedding.MaxTokens == 0 {
		c.Embedding.MaxTokens = 8000
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Calendar.CalendarID == "" {
		c.Calendar.CalendarID = "primary"
	}
	if c.Calendar.FetchWindowDays == 0 {
		c.Calendar.FetchWindowDays = 365
	}
	if c.Matching.MinSimilarity == nil {
		threshold := DefaultMinSimilarity
		c.Matching.MinSimilarity = &threshold
	}
	if c.Matching.TimeWindowDays == 0 {
		c.Matching.TimeWindowDays = 365
	}
	if c.Summary.MaxAttempts == 0 {
		c.Summary.MaxAttempts = 3
	}
	if c.Summary.RetryDelay == 0 {
		c.Summary.RetryDelay = time.Second
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Performance.MaxConcurrentTranscodes == 0 {
		c.Performance.MaxConcurrentTranscodes = 2
	}

	return nil
}
