package summarizer

import (
	"time"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/config"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/logger"
)

type implSummarizer struct {
	generator   Generator
	maxAttempts int
	retryDelay  time.Duration
	format      string
	logger      logger.Logger
}

// New creates a Summarizer that retries the generator with a linear delay.
func New(cfg config.SummaryConfig, generator Generator, log logger.Logger) Summarizer {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &implSummarizer{
		generator:   generator,
		maxAttempts: maxAttempts,
		retryDelay:  cfg.RetryDelay,
		format:      cfg.Format,
		logger:      log,
	}
}
