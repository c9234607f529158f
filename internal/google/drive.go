package google

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/logger"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/models"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// SourceFileProperty is the Drive appProperty that keys a summary to its audio file.
const SourceFileProperty = "source_file_id"

const listFields = "nextPageToken, files(id, name, createdTime, mimeType)"

// Drive implements the file store on top of Google Drive.
type Drive struct {
	service *drive.Service
	logger  logger.Logger
}

func NewDrive(service *drive.Service, log logger.Logger) *Drive {
	return &Drive{service: service, logger: log}
}

// ValidateAccess reports whether the folder can be read with the current token.
func (d *Drive) ValidateAccess(ctx context.Context, folderID string) (bool, error) {
	_, err := d.service.Files.Get(folderID).Fields("id").SupportsAllDrives(true).Context(ctx).Do()
	if err == nil {
		return true, nil
	}
	if isAccessDenied(err) {
		d.logger.Warn(ctx, "No access to folder %s: %v", folderID, err)
		return false, nil
	}
	return false, fmt.Errorf("get folder: %w", err)
}

// ListAudioFiles returns every non-trashed audio file directly inside folderID.
func (d *Drive) ListAudioFiles(ctx context.Context, folderID string) ([]models.AudioFile, error) {
	q := fmt.Sprintf("'%s' in parents and trashed=false and mimeType contains 'audio/'", escapeQuery(folderID))

	var files []models.AudioFile
	err := d.service.Files.List().
		Q(q).
		Fields(listFields).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				files = append(files, toAudioFile(f))
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("list audio files: %w", err)
	}
	return files, nil
}

// Download streams the file content. The caller closes the reader.
func (d *Drive) Download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	resp, err := d.service.Files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", fileID, err)
	}
	return resp.Body, nil
}

// Upload creates the summary document in folderID keyed by its source file id.
func (d *Drive) Upload(ctx context.Context, folderID string, u models.Upload) (bool, error) {
	file := &drive.File{
		Name:     u.Name,
		Parents:  []string{folderID},
		MimeType: u.MimeType,
		AppProperties: map[string]string{
			SourceFileProperty: u.SourceFileID,
		},
	}

	created, err := d.service.Files.Create(file).
		Media(bytes.NewReader(u.Content), googleapi.ContentType(u.MimeType)).
		Fields("id").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return false, fmt.Errorf("upload %s: %w", u.Name, err)
	}
	d.logger.Info(ctx, "Uploaded %s as %s", u.Name, created.Id)
	return created.Id != "", nil
}

// ExistsKeyedBy reports whether folderID already holds a summary for fileID.
func (d *Drive) ExistsKeyedBy(ctx context.Context, folderID, fileID string) (bool, error) {
	q := fmt.Sprintf("'%s' in parents and trashed=false and appProperties has { key='%s' and value='%s' }",
		escapeQuery(folderID), SourceFileProperty, escapeQuery(fileID))

	list, err := d.service.Files.List().
		Q(q).
		Fields("files(id)").
		PageSize(1).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return false, fmt.Errorf("query existing summary: %w", err)
	}
	return len(list.Files) > 0, nil
}

func isAccessDenied(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusForbidden || apiErr.Code == http.StatusUnauthorized
	}
	return false
}

// escapeQuery escapes a value placed inside single quotes in a Drive query.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
