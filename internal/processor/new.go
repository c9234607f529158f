package processor

import (
	"sync"
	"time"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/config"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/logger"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/matcher"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/session"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/summarizer"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/transcriber"
	"github.com/nguyentantai21042004/meeting-summarizer/pkg/executor"
)

type implProcessor struct {
	configs   *config.Holder
	registry  *session.Registry
	factory   ServiceFactory
	embedder  matcher.Embedder
	generator summarizer.Generator
	executor  executor.Executor
	pool      *transcriber.Pool
	logger    logger.Logger
	now       func() time.Time

	mu      sync.Mutex
	closing bool
	jobs    sync.WaitGroup
}

// Deps are the process-wide collaborators shared by every job.
type Deps struct {
	Registry  *session.Registry
	Factory   ServiceFactory
	Embedder  matcher.Embedder
	Generator summarizer.Generator
	Executor  executor.Executor
	Pool      *transcriber.Pool
}

// New creates a Processor. Each job reads its configuration snapshot from
// configs when it starts.
func New(configs *config.Holder, deps Deps, log logger.Logger) Processor {
	pool := deps.Pool
	if pool == nil {
		pool = transcriber.NewPool(configs.Get().Performance.MaxConcurrentTranscodes)
	}
	return &implProcessor{
		configs:   configs,
		registry:  deps.Registry,
		factory:   deps.Factory,
		embedder:  deps.Embedder,
		generator: deps.Generator,
		executor:  deps.Executor,
		pool:      pool,
		logger:    log,
		now:       time.Now,
	}
}
