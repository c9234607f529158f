package gemini

import "context"

// Client talks to Gemini, rotating API keys when one is rate limited.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Embed(ctx context.Context, model, text string) ([]float32, error)
}
