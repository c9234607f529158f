package summarizer

import (
	"context"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/models"
)

// Summarizer writes a structured meeting summary for a transcript.
type Summarizer interface {
	// Summarize returns "" with a nil error when the model produced no text.
	Summarize(ctx context.Context, transcript string, match *models.MatchResult) (string, error)
	// Render builds the document uploaded for sourceFile.
	Render(sourceFile models.AudioFile, summary string) (models.Upload, error)
}

// Generator is the generative text backend.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
