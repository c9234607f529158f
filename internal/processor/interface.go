package processor

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/config"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/models"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/session"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/transcriber"
)

// ErrAlreadyProcessing is returned when the session already runs a job.
var ErrAlreadyProcessing = errors.New("processing already in progress")

// ErrShuttingDown is returned by Start once Shutdown has been called.
var ErrShuttingDown = errors.New("server is shutting down")

// MessageAlreadyProcessing is the error event sent for a rejected second start.
const MessageAlreadyProcessing = "Processing already in progress"

// Processor starts summarization jobs for connected sessions.
type Processor interface {
	// Start registers a job on the session and runs it in the background.
	// The job tears the session down when it returns.
	Start(ctx context.Context, sessionID string, req models.ProcessingRequest) (*session.Job, error)
	// Shutdown refuses new jobs and waits until every running job has
	// returned, including its cleanup, or ctx is done.
	Shutdown(ctx context.Context) error
}

// FileStore is the folder storage holding recordings and summaries.
type FileStore interface {
	ValidateAccess(ctx context.Context, folderID string) (bool, error)
	ListAudioFiles(ctx context.Context, folderID string) ([]models.AudioFile, error)
	Download(ctx context.Context, fileID string) (io.ReadCloser, error)
	Upload(ctx context.Context, folderID string, upload models.Upload) (bool, error)
	ExistsKeyedBy(ctx context.Context, folderID, fileID string) (bool, error)
}

// CalendarStore lists calendar events in a time range.
type CalendarStore interface {
	ListEvents(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error)
}

// Services are the remote capabilities of one job, authorized with the
// request's access token.
type Services struct {
	Files      FileStore
	Calendar   CalendarStore
	Stager     transcriber.Stager
	Recognizer transcriber.Recognizer
	// Close releases the clients; may be nil.
	Close func() error
}

// ServiceFactory builds the services for one job.
type ServiceFactory func(ctx context.Context, cfg *config.Config, accessToken string) (Services, error)
