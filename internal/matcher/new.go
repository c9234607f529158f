package matcher

import (
	"time"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/config"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/logger"
)

type implMatcher struct {
	embedder      Embedder
	minSimilarity float64
	window        time.Duration
	logger        logger.Logger
}

func New(cfg config.MatchingConfig, embedder Embedder, log logger.Logger) Matcher {
	return &implMatcher{
		embedder:      embedder,
		minSimilarity: cfg.Threshold(),
		window:        time.Duration(cfg.TimeWindowDays) * 24 * time.Hour,
		logger:        log,
	}
}
