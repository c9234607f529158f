package embedding

import (
	"fmt"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/config"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/gemini"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/logger"
)

// New selects the backend named by cfg.Provider. gc is only used by the
// gemini provider.
func New(cfg config.EmbeddingConfig, gc gemini.Client, log logger.Logger) (Embedder, error) {
	truncator := NewTruncator(cfg.MaxTokens, log)

	switch cfg.Provider {
	case config.EmbeddingProviderJina, "":
		return NewJina(cfg, truncator), nil
	case config.EmbeddingProviderGemini:
		if gc == nil {
			return nil, fmt.Errorf("gemini embedder requires a gemini client")
		}
		return NewGemini(cfg.Model, gc, truncator), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.Provider)
	}
}
