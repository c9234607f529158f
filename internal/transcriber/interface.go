package transcriber

import (
	"context"
	"io"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/models"
)

// Transcriber turns one remote audio file into plain text.
type Transcriber interface {
	// Transcribe returns an empty string when nothing usable was recognized.
	Transcribe(ctx context.Context, file models.AudioFile, notify Notify) (string, error)
}

// Notify reports stage progress to the client.
type Notify func(ctx context.Context, message string)

// Downloader fetches the content of a remote file.
type Downloader interface {
	Download(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// Stager makes a local file reachable by the recognizer and removes it again.
type Stager interface {
	Stage(ctx context.Context, localPath, name string) (string, error)
	Remove(ctx context.Context, name string) error
}

// Recognizer runs long-form speech recognition on a staged audio URI.
type Recognizer interface {
	Recognize(ctx context.Context, uri string, cfg models.RecognitionConfig) ([]models.RecognitionResult, error)
}
