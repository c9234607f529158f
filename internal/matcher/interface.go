package matcher

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/models"
)

// Matcher picks the calendar event that best describes a recording.
type Matcher interface {
	// Match returns nil when no event clears the similarity threshold.
	Match(ctx context.Context, transcript string, recordedAt time.Time, events []models.CalendarEvent) *models.MatchResult
}

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
