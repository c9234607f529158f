package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/config"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ErrBlankInput is returned for empty or whitespace-only text.
var ErrBlankInput = errors.New("blank embedding input")

// Jina calls the Jina embeddings API through its OpenAI-compatible endpoint.
type Jina struct {
	client    openai.Client
	model     string
	truncator *Truncator
}

func NewJina(cfg config.EmbeddingConfig, truncator *Truncator, opts ...option.RequestOption) *Jina {
	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
	}
	return &Jina{
		client:    openai.NewClient(append(base, opts...)...),
		model:     cfg.Model,
		truncator: truncator,
	}
}

func (j *Jina) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrBlankInput
	}

	resp, err := j.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(j.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{j.truncator.Truncate(text)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("jina embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("jina embeddings: no data returned")
	}

	embedding := resp.Data[0].Embedding
	vector := make([]float32, len(embedding))
	for i, v := range embedding {
		vector[i] = float32(v)
	}
	return vector, nil
}
