package transcriber

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/models"
)

// Transcribe downloads, converts and recognizes one file. Every scratch
// artifact is removed before it returns.
func (t *implTranscriber) Transcribe(ctx context.Context, file models.AudioFile, notify Notify) (string, error) {
	if notify == nil {
		notify = func(context.Context, string) {}
	}

	if err := os.MkdirAll(t.tempDir, 0o755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	workDir, err := os.MkdirTemp(t.tempDir, "transcribe-*")
	if err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	defer t.cleanupWorkDir(ctx, workDir)

	localPath := filepath.Join(workDir, localName(file.Name))
	wavPath := localPath + ".wav"

	notify(ctx, fmt.Sprintf("Downloading %s...", file.Name))
	if err := t.download(ctx, file.ID, localPath); err != nil {
		return "", fmt.Errorf("download: %w", err)
	}

	notify(ctx, fmt.Sprintf("Converting %s to WAV format...", file.Name))
	if err := t.convertToWAV(ctx, localPath, wavPath); err != nil {
		return "", fmt.Errorf("convert: %w", err)
	}

	notify(ctx, fmt.Sprintf("Transcribing %s...", file.Name))
	transcript, err := t.recognize(ctx, wavPath, notify)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}

	t.logger.Info(ctx, "Transcribed %s (%d chars)", file.Name, len(transcript))
	return transcript, nil
}

func (t *implTranscriber) download(ctx context.Context, fileID, localPath string) error {
	body, err := t.downloader.Download(ctx, fileID)
	if err != nil {
		return err
	}
	defer body.Close()

	out, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create local file: %w", err)
	}
	if _, err := io.Copy(out, body); err != nil {
		out.Close()
		return fmt.Errorf("write local file: %w", err)
	}
	return out.Close()
}

func (t *implTranscriber) recognize(ctx context.Context, wavPath string, notify Notify) (string, error) {
	blobName := fmt.Sprintf("temp_audio_%s.wav", uuid.NewString())

	// Removal runs even if staging failed half way.
	defer t.removeStaged(ctx, blobName)

	uri, err := t.stager.Stage(ctx, wavPath, blobName)
	if err != nil {
		return "", fmt.Errorf("stage audio: %w", err)
	}

	notify(ctx, "Transcription in progress...")
	results, err := t.recognizer.Recognize(ctx, uri, t.recognition)
	if err != nil {
		return "", err
	}

	return joinResults(results), nil
}

// joinResults concatenates every alternative of every segment in order.
func joinResults(results []models.RecognitionResult) string {
	var parts []string
	for _, r := range results {
		for _, alt := range r.Alternatives {
			if alt = strings.TrimSpace(alt); alt != "" {
				parts = append(parts, alt)
			}
		}
	}
	return strings.Join(parts, " ")
}

// localName keeps the display name usable as a file name.
func localName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.TrimSpace(base)
	if base == "" || base == "." || base == "/" || base == ".." {
		return "audio"
	}
	return base
}
