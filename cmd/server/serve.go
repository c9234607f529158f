package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/config"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/embedding"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/gemini"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/google"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/logger"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/processor"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/server"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/session"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/transcriber"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/watcher"
	"github.com/nguyentantai21042004/meeting-summarizer/pkg/executor"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func serveAction(ctx context.Context, cmd *cli.Command) error {
	if err := config.LoadEnv(cmd.String("env")); err != nil {
		return err
	}

	configPath := cmd.String("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.NewWithOptions(logger.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	log.Info(ctx, "========================================")
	log.Info(ctx, "Meeting Summarizer")
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
	log.Info(ctx, "Embedding provider: %s (%s)", cfg.Embedding.Provider, cfg.Embedding.Model)
	log.Info(ctx, "Generative model: %s", cfg.Gemini.Model)
	log.Info(ctx, "Max concurrent transcodes: %d", cfg.Performance.MaxConcurrentTranscodes)

	if err := os.MkdirAll(cfg.Paths.Temp, 0o755); err != nil {
		return fmt.Errorf("create temp dir %s: %w", cfg.Paths.Temp, err)
	}

	geminiClient := gemini.New(cfg, log)
	embedder, err := embedding.New(cfg.Embedding, geminiClient, log)
	if err != nil {
		return fmt.Errorf("create embedder: %w", err)
	}

	holder := config.NewHolder(cfg)
	registry := session.NewRegistry(log)
	proc := processor.New(holder, processor.Deps{
		Registry:  registry,
		Factory:   googleServices(log),
		Embedder:  embedder,
		Generator: geminiClient,
		Executor:  executor.New(),
		Pool:      transcriber.NewPool(cfg.Performance.MaxConcurrentTranscodes),
	}, log)
	srv := server.New(cfg.Server, registry, proc, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})

	if cmd.Bool("watch-config") {
		w, err := watcher.New(configPath, reloadConfig(holder, log), log)
		if err != nil {
			log.Warn(ctx, "Config reload disabled: %v", err)
		} else {
			defer w.Stop()
			g.Go(func() error {
				if err := w.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
					return fmt.Errorf("config watcher: %w", err)
				}
				return nil
			})
		}
	}

	log.Info(ctx, "Ready: ws://%s%s/audio/ws/{client_id}", cfg.Server.Addr, cfg.Server.APIPrefix)
	runErr := g.Wait()

	// Cancelled jobs still remove their staged audio and scratch files.
	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := proc.Shutdown(drainCtx); err != nil {
		log.Warn(drainCtx, "Jobs still running at exit: %v", err)
	}

	if runErr != nil {
		return runErr
	}
	log.Info(context.Background(), "Meeting Summarizer stopped")
	return nil
}

// googleServices builds the per-job Google clients from the request token.
func googleServices(log logger.Logger) processor.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config, accessToken string) (processor.Services, error) {
		clients, err := google.NewClients(ctx, cfg, accessToken, log)
		if err != nil {
			return processor.Services{}, err
		}
		return processor.Services{
			Files:      clients.Drive,
			Calendar:   clients.Calendar,
			Stager:     clients.Storage,
			Recognizer: clients.Speech,
			Close:      clients.Close,
		}, nil
	}
}

// reloadConfig swaps in the new file contents. Running jobs keep their
// snapshot; an invalid file leaves the current config in place. Sections read
// only at startup are reported and keep their old values until restart.
func reloadConfig(holder *config.Holder, log logger.Logger) watcher.EventHandler {
	return func(ctx context.Context, path string) error {
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("reload config: %w", err)
		}
		if changed := holder.Get().StartupOnly(cfg); len(changed) > 0 {
			log.Warn(ctx, "Config sections %s changed; restart to apply them", strings.Join(changed, ", "))
		}
		holder.Set(cfg)
		log.Info(ctx, "Config reloaded from %s", path)
		return nil
	}
}
