package embedding

import "context"

// Embedder turns text into a vector. Blank input is rejected before any
// request is made.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
