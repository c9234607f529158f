package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/gemini"
)

// Gemini embeds text with a Gemini embedding model.
type Gemini struct {
	client    gemini.Client
	model     string
	truncator *Truncator
}

func NewGemini(model string, client gemini.Client, truncator *Truncator) *Gemini {
	return &Gemini{client: client, model: model, truncator: truncator}
}

func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrBlankInput
	}
	vector, err := g.client.Embed(ctx, g.model, g.truncator.Truncate(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embeddings: %w", err)
	}
	return vector, nil
}
