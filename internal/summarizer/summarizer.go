package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/models"
)

// Summarize calls the generator up to maxAttempts times and returns the
// last error once every attempt failed.
func (s *implSummarizer) Summarize(ctx context.Context, transcript string, match *models.MatchResult) (string, error) {
	prompt := buildPrompt(transcript, match)

	var (
		text    string
		attempt int
	)
	operation := func() error {
		attempt++
		out, err := s.generator.Generate(ctx, prompt)
		if err != nil {
			return err
		}
		text = out
		return nil
	}
	notify := func(err error, wait time.Duration) {
		s.logger.Warn(ctx, "Summary attempt %d/%d failed: %v (retrying in %s)", attempt, s.maxAttempts, err, wait)
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{step: s.retryDelay}, uint64(s.maxAttempts-1)),
		ctx,
	)
	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		return "", fmt.Errorf("generate summary after %d attempts: %w", attempt, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		s.logger.Warn(ctx, "Generator returned no text")
	}
	return text, nil
}
