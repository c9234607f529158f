package summarizer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/config"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/models"
)

const (
	mimeText = "text/plain"
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Render names the upload "<base> - Summary" and keys it by the source file id.
func (s *implSummarizer) Render(sourceFile models.AudioFile, summary string) (models.Upload, error) {
	title := SummaryTitle(sourceFile.Name)

	upload := models.Upload{SourceFileID: sourceFile.ID}
	switch s.format {
	case config.SummaryFormatDocx:
		content, err := summaryToDocx(title, summary)
		if err != nil {
			return models.Upload{}, fmt.Errorf("render docx: %w", err)
		}
		upload.Name = title + ".docx"
		upload.MimeType = mimeDocx
		upload.Content = content
	default:
		upload.Name = title + ".txt"
		upload.MimeType = mimeText
		upload.Content = []byte(summary)
	}
	return upload, nil
}

// SummaryTitle drops the audio extension from name.
func SummaryTitle(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if strings.TrimSpace(base) == "" {
		base = name
	}
	return base + " - Summary"
}
