package processor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/config"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/matcher"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/models"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/session"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/summarizer"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/transcriber"
)

// Start registers a new job on sessionID. A second start while a job is
// running is rejected with ErrAlreadyProcessing.
func (p *implProcessor) Start(ctx context.Context, sessionID string, req models.ProcessingRequest) (*session.Job, error) {
	if p.registry.ActiveJob(sessionID) != nil {
		return nil, ErrAlreadyProcessing
	}

	p.mu.Lock()
	if p.closing {
		p.mu.Unlock()
		return nil, ErrShuttingDown
	}
	p.jobs.Add(1)
	p.mu.Unlock()

	job, jobCtx := session.NewJob(ctx, uuid.NewString())
	if err := p.registry.RegisterJob(sessionID, job); err != nil {
		job.Finish()
		p.jobs.Done()
		// Lost a race with another start on the same session.
		if errors.Is(err, session.ErrJobActive) {
			return nil, ErrAlreadyProcessing
		}
		return nil, fmt.Errorf("register job: %w", err)
	}

	cfg := p.configs.Get()
	p.logger.Info(ctx, "Starting job %s for client %s", job.ID, sessionID)

	go func() {
		defer p.jobs.Done()
		p.run(jobCtx, job, sessionID, cfg, req)
	}()
	return job, nil
}

// Shutdown stops accepting jobs and waits for the running ones. Jobs are
// cancelled through their parent context, not here.
func (p *implProcessor) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.closing = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.jobs.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pipeline carries the per-job state shared by every file iteration.
type pipeline struct {
	*implProcessor

	job       *session.Job
	sessionID string
	cfg       *config.Config
	req       models.ProcessingRequest

	services    Services
	transcriber transcriber.Transcriber
	matcher     matcher.Matcher
	summarizer  summarizer.Summarizer
	events      []models.CalendarEvent
}

func (p *implProcessor) run(ctx context.Context, job *session.Job, sessionID string, cfg *config.Config, req models.ProcessingRequest) {
	startTime := time.Now()
	pl := &pipeline{implProcessor: p, job: job, sessionID: sessionID, cfg: cfg, req: req}

	defer job.Finish()
	defer p.registry.Release(sessionID, job)
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error(ctx, "Job %s panicked: %v\n%s", job.ID, r, debug.Stack())
			pl.publish(ctx, models.Error(fmt.Sprintf("Unexpected error: %v", r)))
		}
	}()

	if err := pl.execute(ctx); err != nil {
		if ctx.Err() != nil {
			p.logger.Info(ctx, "Job %s cancelled", job.ID)
			return
		}
		p.logger.Error(ctx, "Job %s failed: %v", job.ID, err)
		pl.publish(ctx, models.Error(err.Error()))
		return
	}
	p.logger.Info(ctx, "Job %s finished in %s", job.ID, time.Since(startTime))
}

// execute runs the job. A returned error is fatal to the job and its text is
// shown to the client.
func (pl *pipeline) execute(ctx context.Context) error {
	services, err := pl.factory(ctx, pl.cfg, pl.req.AccessToken)
	if err != nil {
		return &jobError{message: "Failed to initialize services", err: err}
	}
	pl.services = services
	if services.Close != nil {
		defer func() {
			if err := services.Close(); err != nil {
				pl.logger.Warn(ctx, "Closing services for job %s: %v", pl.job.ID, err)
			}
		}()
	}

	pl.status(ctx, "Validating folder access...")
	if err := pl.validate(ctx, pl.req.AudioFolderID); err != nil {
		return &jobError{message: "Cannot access audio folder: " + pl.req.AudioFolderID}
	}
	if err := pl.validate(ctx, pl.req.SummaryFolderID); err != nil {
		return &jobError{message: "Cannot access summary folder: " + pl.req.SummaryFolderID}
	}

	pl.status(ctx, "Fetching audio files...")
	files, err := services.Files.ListAudioFiles(ctx, pl.req.AudioFolderID)
	if err != nil {
		return &jobError{message: "Failed to list audio files", err: err}
	}
	if len(files) == 0 {
		pl.status(ctx, "No audio files found in the specified folder.")
		return nil
	}
	pl.logger.Info(ctx, "Job %s: %d audio files", pl.job.ID, len(files))

	pl.status(ctx, "Fetching calendar events...")
	pl.events = pl.fetchEvents(ctx)

	pl.transcriber = transcriber.New(pl.cfg, pl.executor, pl.pool, transcriber.Deps{
		Downloader: services.Files,
		Stager:     services.Stager,
		Recognizer: services.Recognizer,
	}, pl.logger)
	pl.matcher = matcher.New(pl.cfg.Matching, pl.embedder, pl.logger)
	pl.summarizer = summarizer.New(pl.cfg.Summary, pl.generator, pl.logger)

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		pl.logger.Info(ctx, "[%d/%d] %s", i+1, len(files), file.Name)
		pl.report(ctx, file, pl.processFile(ctx, file))
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	pl.status(ctx, "Processing completed")
	return nil
}

func (pl *pipeline) validate(ctx context.Context, folderID string) error {
	ok, err := pl.services.Files.ValidateAccess(ctx, folderID)
	if err != nil {
		pl.logger.Error(ctx, "Validating folder %s: %v", folderID, err)
		return err
	}
	if !ok {
		return fmt.Errorf("no access to folder %s", folderID)
	}
	return nil
}

// fetchEvents loads the calendar once per job. A failure degrades to no events.
func (pl *pipeline) fetchEvents(ctx context.Context) []models.CalendarEvent {
	now := pl.now().UTC()
	window := time.Duration(pl.cfg.Calendar.FetchWindowDays) * 24 * time.Hour

	events, err := pl.services.Calendar.ListEvents(ctx, now.Add(-window), now.Add(window))
	if err != nil {
		pl.logger.Warn(ctx, "Calendar fetch failed, continuing without events: %v", err)
		return nil
	}
	pl.logger.Info(ctx, "Fetched %d calendar events", len(events))
	return events
}

// jobError is a job-fatal failure; Error is the text shown to the client.
type jobError struct {
	message string
	err     error
}

func (e *jobError) Error() string {
	if e.err == nil {
		return e.message
	}
	return e.message + ": " + e.err.Error()
}

func (e *jobError) Unwrap() error {
	return e.err
}

// status publishes a status event unless the job was cancelled.
func (pl *pipeline) status(ctx context.Context, message string) {
	pl.publish(ctx, models.Status(message))
}

func (pl *pipeline) publish(ctx context.Context, event models.StatusEvent) {
	if ctx.Err() != nil {
		return
	}
	pl.registry.Publish(ctx, pl.sessionID, event)
}
