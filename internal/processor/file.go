package processor

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/models"
)

type outcome int

const (
	outcomeProcessed outcome = iota
	outcomeSkipped
	outcomeNoSpeech
	outcomeNoSummary
	outcomeUploadFailed
	outcomeFailed
)

// fileResult is what one file iteration ended with.
type fileResult struct {
	outcome outcome
	err     error
}

// processFile runs skip-check, transcription, matching, summary and upload
// for one file. Errors never escape; they become an outcomeFailed result.
func (pl *pipeline) processFile(ctx context.Context, file models.AudioFile) fileResult {
	exists, err := pl.services.Files.ExistsKeyedBy(ctx, pl.req.SummaryFolderID, file.ID)
	if err != nil {
		return fileResult{outcome: outcomeFailed, err: fmt.Errorf("check existing summary: %w", err)}
	}
	if exists {
		return fileResult{outcome: outcomeSkipped}
	}

	transcript, err := pl.transcriber.Transcribe(ctx, file, pl.status)
	if err != nil {
		return fileResult{outcome: outcomeFailed, err: err}
	}
	if transcript == "" {
		return fileResult{outcome: outcomeNoSpeech}
	}

	pl.status(ctx, fmt.Sprintf("Matching %s with calendar events...", file.Name))
	var match *models.MatchResult
	if len(pl.events) > 0 && !file.CreatedAt.IsZero() {
		match = pl.matcher.Match(ctx, transcript, file.CreatedAt, pl.events)
	}

	pl.status(ctx, fmt.Sprintf("Generating summary for %s...", file.Name))
	summary, err := pl.summarizer.Summarize(ctx, transcript, match)
	if err != nil {
		return fileResult{outcome: outcomeFailed, err: err}
	}
	if summary == "" {
		return fileResult{outcome: outcomeNoSummary}
	}

	upload, err := pl.summarizer.Render(file, summary)
	if err != nil {
		return fileResult{outcome: outcomeFailed, err: err}
	}

	pl.status(ctx, fmt.Sprintf("Uploading summary for %s...", file.Name))
	ok, err := pl.services.Files.Upload(ctx, pl.req.SummaryFolderID, upload)
	if err != nil {
		pl.logger.Error(ctx, "Upload for %s failed: %v", file.Name, err)
		return fileResult{outcome: outcomeUploadFailed, err: err}
	}
	if !ok {
		return fileResult{outcome: outcomeUploadFailed}
	}
	return fileResult{outcome: outcomeProcessed}
}

// report turns a file result into the client-visible status event.
func (pl *pipeline) report(ctx context.Context, file models.AudioFile, res fileResult) {
	switch res.outcome {
	case outcomeProcessed:
		pl.publish(ctx, models.StatusWithData(
			fmt.Sprintf("Successfully processed %s", file.Name),
			map[string]any{"file_id": file.ID},
		))
	case outcomeSkipped:
		pl.status(ctx, fmt.Sprintf("Skipping %s - summary already exists", file.Name))
	case outcomeNoSpeech:
		pl.status(ctx, fmt.Sprintf("No speech recognized in %s, skipping", file.Name))
	case outcomeNoSummary:
		pl.status(ctx, fmt.Sprintf("No summary generated for %s", file.Name))
	case outcomeUploadFailed:
		pl.status(ctx, fmt.Sprintf("Failed to upload summary for %s", file.Name))
	case outcomeFailed:
		if ctx.Err() != nil {
			return
		}
		pl.logger.Error(ctx, "Error processing %s: %v", file.Name, res.err)
		pl.status(ctx, fmt.Sprintf("Error processing %s: %v", file.Name, res.err))
	}
}
