package processor

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/config"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/logger"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/models"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/session"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/transcriber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingChannel collects every event sent to the session.
type recordingChannel struct {
	mu     sync.Mutex
	events []models.StatusEvent
	closed bool
}

func (c *recordingChannel) Send(ctx context.Context, event models.StatusEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("channel closed")
	}
	c.events = append(c.events, event)
	return nil
}

func (c *recordingChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *recordingChannel) snapshot() []models.StatusEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.StatusEvent(nil), c.events...)
}

func (c *recordingChannel) messages() []string {
	var out []string
	for _, ev := range c.snapshot() {
		out = append(out, ev.Message)
	}
	return out
}

func (c *recordingChannel) count(typ models.EventType, prefix string) int {
	n := 0
	for _, ev := range c.snapshot() {
		if ev.Type == typ && strings.HasPrefix(ev.Message, prefix) {
			n++
		}
	}
	return n
}

type fakeFiles struct {
	mu sync.Mutex

	denied    map[string]bool
	files     []models.AudioFile
	listErr   error
	existing  map[string]bool
	uploads   []models.Upload
	downloads []string
	// onDownload, when set, replaces the default download behaviour.
	onDownload func(ctx context.Context, fileID string) (io.ReadCloser, error)
	lists      int
}

func (f *fakeFiles) ValidateAccess(ctx context.Context, folderID string) (bool, error) {
	return !f.denied[folderID], nil
}

func (f *fakeFiles) ListAudioFiles(ctx context.Context, folderID string) ([]models.AudioFile, error) {
	f.mu.Lock()
	f.lists++
	f.mu.Unlock()
	return f.files, f.listErr
}

func (f *fakeFiles) Download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	f.mu.Lock()
	f.downloads = append(f.downloads, fileID)
	hook := f.onDownload
	f.mu.Unlock()
	if hook != nil {
		return hook(ctx, fileID)
	}
	return io.NopCloser(strings.NewReader("audio")), nil
}

func (f *fakeFiles) Upload(ctx context.Context, folderID string, upload models.Upload) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, upload)
	return true, nil
}

func (f *fakeFiles) ExistsKeyedBy(ctx context.Context, folderID, fileID string) (bool, error) {
	return f.existing[fileID], nil
}

func (f *fakeFiles) downloadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.downloads)
}

type fakeCalendar struct {
	mu     sync.Mutex
	calls  int
	events []models.CalendarEvent
	err    error
}

func (c *fakeCalendar) ListEvents(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.events, c.err
}

type fakeStager struct{}

func (fakeStager) Stage(ctx context.Context, localPath, name string) (string, error) {
	return "gs://bucket/" + name, nil
}

func (fakeStager) Remove(ctx context.Context, name string) error { return nil }

// slowStager takes a while to remove a staged blob and records that it did.
type slowStager struct {
	delay time.Duration

	mu      sync.Mutex
	removed []string
}

func (s *slowStager) Stage(ctx context.Context, localPath, name string) (string, error) {
	return "gs://bucket/" + name, nil
}

func (s *slowStager) Remove(ctx context.Context, name string) error {
	time.Sleep(s.delay)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, name)
	return nil
}

func (s *slowStager) removedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.removed)
}

// blockingRecognizer waits for cancellation.
type blockingRecognizer struct {
	started chan struct{}
}

func (r blockingRecognizer) Recognize(ctx context.Context, uri string, cfg models.RecognitionConfig) ([]models.RecognitionResult, error) {
	close(r.started)
	<-ctx.Done()
	return nil, ctx.Err()
}

type fakeRecognizer struct {
	text string
}

func (r fakeRecognizer) Recognize(ctx context.Context, uri string, cfg models.RecognitionConfig) ([]models.RecognitionResult, error) {
	if r.text == "" {
		return nil, nil
	}
	return []models.RecognitionResult{{Alternatives: []string{r.text}}}, nil
}

type fakeFFmpeg struct{}

func (fakeFFmpeg) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return "", os.WriteFile(args[len(args)-1], []byte("RIFF"), 0o644)
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	err   error
	text  string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.text, nil
}

type harness struct {
	registry  *session.Registry
	channel   *recordingChannel
	files     *fakeFiles
	calendar  *fakeCalendar
	generator *fakeGenerator
	proc      Processor
	factory   ServiceFactory
	speech    string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := &config.Config{
		Google:    config.GoogleConfig{BucketName: "bucket"},
		Gemini:    config.GeminiConfig{APIKeys: []string{"k"}},
		Embedding: config.EmbeddingConfig{APIKey: "j"},
		Summary:   config.SummaryConfig{RetryDelay: time.Millisecond},
		Paths:     config.PathsConfig{Temp: t.TempDir()},
	}
	require.NoError(t, cfg.Validate())

	log := logger.New("error")
	h := &harness{
		registry:  session.NewRegistry(log),
		channel:   &recordingChannel{},
		files:     &fakeFiles{denied: map[string]bool{}, existing: map[string]bool{}},
		calendar:  &fakeCalendar{},
		generator: &fakeGenerator{text: "summary"},
		speech:    "we discussed the roadmap",
	}
	h.factory = func(ctx context.Context, cfg *config.Config, accessToken string) (Services, error) {
		return Services{
			Files:      h.files,
			Calendar:   h.calendar,
			Stager:     fakeStager{},
			Recognizer: fakeRecognizer{text: h.speech},
		}, nil
	}
	h.proc = New(config.NewHolder(cfg), Deps{
		Registry: h.registry,
		Factory: func(ctx context.Context, cfg *config.Config, token string) (Services, error) {
			return h.factory(ctx, cfg, token)
		},
		Embedder:  fakeEmbedder{},
		Generator: h.generator,
		Executor:  fakeFFmpeg{},
		Pool:      transcriber.NewPool(2),
	}, log)

	require.NoError(t, h.registry.Connect("c1", h.channel))
	return h
}

var testRequest = models.ProcessingRequest{
	AudioFolderID:   "audio",
	SummaryFolderID: "summaries",
	AccessToken:     "token",
}

func (h *harness) run(t *testing.T) {
	t.Helper()
	job, err := h.proc.Start(context.Background(), "c1", testRequest)
	require.NoError(t, err)
	select {
	case <-job.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("job did not finish")
	}
}

func audioFiles(names ...string) []models.AudioFile {
	var out []models.AudioFile
	for _, n := range names {
		out = append(out, models.AudioFile{
			ID:        "id-" + n,
			Name:      n,
			CreatedAt: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC),
		})
	}
	return out
}

func TestJobSkipsExistingSummary(t *testing.T) {
	h := newHarness(t)
	h.files.files = audioFiles("one.m4a", "two.m4a")
	h.files.existing["id-one.m4a"] = true

	h.run(t)

	assert.Equal(t, 1, h.channel.count(models.EventTypeStatus, "Skipping one.m4a - summary already exists"))
	assert.Equal(t, 1, h.channel.count(models.EventTypeStatus, "Successfully processed two.m4a"))
	assert.Equal(t, 1, h.channel.count(models.EventTypeStatus, "Processing completed"))
	assert.Equal(t, 0, h.channel.count(models.EventTypeError, ""))

	assert.Equal(t, []string{"id-two.m4a"}, h.files.downloads, "skipped file is never transcribed")
	assert.Equal(t, 1, h.generator.calls)
	require.Len(t, h.files.uploads, 1)
	assert.Equal(t, "two - Summary.txt", h.files.uploads[0].Name)
	assert.Equal(t, "id-two.m4a", h.files.uploads[0].SourceFileID)

	// The skipped file emits nothing but its skip status.
	for _, msg := range h.channel.messages() {
		if strings.Contains(msg, "one.m4a") {
			assert.Equal(t, "Skipping one.m4a - summary already exists", msg)
		}
	}

	events := h.channel.snapshot()
	last := events[len(events)-1]
	assert.Equal(t, "Processing completed", last.Message)
	assert.Equal(t, 0, h.registry.Len(), "job exit releases the session")
}

func TestJobEventOrder(t *testing.T) {
	h := newHarness(t)
	h.files.files = audioFiles("a.m4a")

	h.run(t)

	assert.Equal(t, []string{
		"Validating folder access...",
		"Fetching audio files...",
		"Fetching calendar events...",
		"Downloading a.m4a...",
		"Converting a.m4a to WAV format...",
		"Transcribing a.m4a...",
		"Transcription in progress...",
		"Matching a.m4a with calendar events...",
		"Generating summary for a.m4a...",
		"Uploading summary for a.m4a...",
		"Successfully processed a.m4a",
		"Processing completed",
	}, h.channel.messages())

	for _, ev := range h.channel.snapshot() {
		if ev.Message == "Successfully processed a.m4a" {
			assert.Equal(t, map[string]any{"file_id": "id-a.m4a"}, ev.Data)
		}
	}
}

func TestCalendarFetchedOncePerJob(t *testing.T) {
	h := newHarness(t)
	h.files.files = audioFiles("a.m4a", "b.m4a", "c.m4a")
	h.calendar.events = []models.CalendarEvent{{
		Summary: "Roadmap",
		Start:   models.EventTime{DateTime: "2024-05-10T08:00:00Z"},
	}}

	h.run(t)

	assert.Equal(t, 1, h.calendar.calls)
	assert.Equal(t, 3, h.channel.count(models.EventTypeStatus, "Successfully processed"))
}

func TestCalendarFailureIsSoft(t *testing.T) {
	h := newHarness(t)
	h.files.files = audioFiles("a.m4a")
	h.calendar.err = errors.New("calendar unavailable")

	h.run(t)

	assert.Equal(t, 1, h.channel.count(models.EventTypeStatus, "Successfully processed a.m4a"))
	assert.Equal(t, 0, h.channel.count(models.EventTypeError, ""))
}

func TestEmptyFolder(t *testing.T) {
	h := newHarness(t)

	h.run(t)

	assert.Equal(t, []string{
		"Validating folder access...",
		"Fetching audio files...",
		"No audio files found in the specified folder.",
	}, h.channel.messages())
	assert.Equal(t, 0, h.channel.count(models.EventTypeError, ""))
	assert.Equal(t, 0, h.calendar.calls)
}

func TestInaccessibleDestination(t *testing.T) {
	h := newHarness(t)
	h.files.files = audioFiles("a.m4a")
	h.files.denied["summaries"] = true

	h.run(t)

	events := h.channel.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, "Validating folder access...", events[0].Message)
	assert.Equal(t, models.EventTypeError, events[1].Type)
	assert.Equal(t, "Cannot access summary folder: summaries", events[1].Message)
	assert.Equal(t, 0, h.files.lists, "listing never happens")
	assert.Zero(t, h.files.downloadCount())
}

func TestListingFailureIsFatal(t *testing.T) {
	h := newHarness(t)
	h.files.listErr = errors.New("drive down")

	h.run(t)

	assert.Equal(t, 1, h.channel.count(models.EventTypeError, "Failed to list audio files: drive down"))
	assert.Equal(t, 0, h.channel.count(models.EventTypeStatus, "Processing completed"))
}

func TestSummaryRetryExhaustionIsPerFile(t *testing.T) {
	h := newHarness(t)
	h.files.files = audioFiles("a.m4a", "b.m4a")
	h.generator.err = errors.New("model overloaded")

	h.run(t)

	assert.Equal(t, 6, h.generator.calls, "three attempts per file, never a fourth")
	assert.Equal(t, 1, h.channel.count(models.EventTypeStatus, "Error processing a.m4a: "))
	assert.Equal(t, 1, h.channel.count(models.EventTypeStatus, "Error processing b.m4a: "))
	assert.Equal(t, 1, h.channel.count(models.EventTypeStatus, "Processing completed"))
	assert.Equal(t, 0, h.channel.count(models.EventTypeError, ""))
	assert.Empty(t, h.files.uploads)
}

func TestNoSpeechSkipsRemainingStages(t *testing.T) {
	h := newHarness(t)
	h.files.files = audioFiles("quiet.m4a")
	h.speech = ""

	h.run(t)

	assert.Equal(t, 1, h.channel.count(models.EventTypeStatus, "No speech recognized in quiet.m4a"))
	assert.Equal(t, 0, h.generator.calls)
	assert.Empty(t, h.files.uploads)
}

func TestEmptySummaryIsNotUploaded(t *testing.T) {
	h := newHarness(t)
	h.files.files = audioFiles("a.m4a")
	h.generator.text = ""

	h.run(t)

	assert.Equal(t, 1, h.channel.count(models.EventTypeStatus, "No summary generated for a.m4a"))
	assert.Empty(t, h.files.uploads)
}

func TestFactoryFailureIsFatal(t *testing.T) {
	h := newHarness(t)
	h.factory = func(ctx context.Context, cfg *config.Config, accessToken string) (Services, error) {
		return Services{}, errors.New("token rejected")
	}

	h.run(t)

	assert.Equal(t, []string{"Failed to initialize services: token rejected"}, h.channel.messages())
	assert.Equal(t, 0, h.registry.Len())
}

func TestServicesClosedOnExit(t *testing.T) {
	h := newHarness(t)
	closed := false
	base := h.factory
	h.factory = func(ctx context.Context, cfg *config.Config, accessToken string) (Services, error) {
		s, err := base(ctx, cfg, accessToken)
		s.Close = func() error { closed = true; return nil }
		return s, err
	}

	h.run(t)
	assert.True(t, closed)
}

func TestDisconnectStopsJob(t *testing.T) {
	h := newHarness(t)
	h.files.files = audioFiles("a.m4a", "b.m4a", "c.m4a")

	started := make(chan struct{})
	h.files.onDownload = func(ctx context.Context, fileID string) (io.ReadCloser, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}

	job, err := h.proc.Start(context.Background(), "c1", testRequest)
	require.NoError(t, err)

	<-started
	before := len(h.channel.snapshot())
	h.registry.Disconnect("c1")

	select {
	case <-job.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("job did not stop after disconnect")
	}

	assert.Len(t, h.channel.snapshot(), before, "no events after disconnect")
	assert.Equal(t, 1, h.files.downloadCount(), "no further files are started")
	assert.Equal(t, 0, h.channel.count(models.EventTypeStatus, "Processing completed"))
}

func TestSecondStartIsRejected(t *testing.T) {
	h := newHarness(t)
	h.files.files = audioFiles("a.m4a")

	release := make(chan struct{})
	h.files.onDownload = func(ctx context.Context, fileID string) (io.ReadCloser, error) {
		<-release
		return io.NopCloser(strings.NewReader("audio")), nil
	}

	job, err := h.proc.Start(context.Background(), "c1", testRequest)
	require.NoError(t, err)

	_, err = h.proc.Start(context.Background(), "c1", testRequest)
	assert.ErrorIs(t, err, ErrAlreadyProcessing)

	close(release)
	<-job.Done()
	assert.Equal(t, 1, h.channel.count(models.EventTypeStatus, "Processing completed"))
}

func TestShutdownWaitsForJobCleanup(t *testing.T) {
	h := newHarness(t)
	h.files.files = audioFiles("a.m4a")

	stager := &slowStager{delay: 200 * time.Millisecond}
	recognizer := blockingRecognizer{started: make(chan struct{})}
	h.factory = func(ctx context.Context, cfg *config.Config, accessToken string) (Services, error) {
		return Services{
			Files:      h.files,
			Calendar:   h.calendar,
			Stager:     stager,
			Recognizer: recognizer,
		}, nil
	}

	parent, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := h.proc.Start(parent, "c1", testRequest)
	require.NoError(t, err)

	<-recognizer.started
	cancel()

	ctx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	require.NoError(t, h.proc.Shutdown(ctx))
	assert.Equal(t, 1, stager.removedCount(), "staged audio removed before Shutdown returns")

	_, err = h.proc.Start(context.Background(), "c1", testRequest)
	assert.ErrorIs(t, err, ErrShuttingDown)
}

func TestShutdownTimesOut(t *testing.T) {
	h := newHarness(t)
	h.files.files = audioFiles("a.m4a")

	release := make(chan struct{})
	defer close(release)
	h.files.onDownload = func(ctx context.Context, fileID string) (io.ReadCloser, error) {
		<-release
		return nil, errors.New("released")
	}

	_, err := h.proc.Start(context.Background(), "c1", testRequest)
	require.NoError(t, err)

	ctx, done := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer done()
	assert.ErrorIs(t, h.proc.Shutdown(ctx), context.DeadlineExceeded)
}

func TestStartOnUnknownSession(t *testing.T) {
	h := newHarness(t)
	_, err := h.proc.Start(context.Background(), "nobody", testRequest)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}
