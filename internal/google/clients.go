package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/storage"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/config"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/logger"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// Clients bundles every Google service a job talks to. All of them are
// authorized with the user's access token.
type Clients struct {
	Drive    *Drive
	Calendar *Calendar
	Storage  *Storage
	Speech   *Speech

	closers []func() error
}

// NewClients builds the per-job Google clients from an OAuth access token.
func NewClients(ctx context.Context, cfg *config.Config, accessToken string, log logger.Logger) (*Clients, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, fmt.Errorf("access token is required")
	}
	opt := option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	driveSvc, err := drive.NewService(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	calendarSvc, err := calendar.NewService(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	c := &Clients{
		Drive:    NewDrive(driveSvc, log),
		Calendar: NewCalendar(calendarSvc, cfg.Calendar.CalendarID),
	}

	storageClient, err := storage.NewClient(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	c.closers = append(c.closers, storageClient.Close)
	c.Storage = NewStorage(storageClient, cfg.Google.BucketName)

	speechClient, err := speech.NewClient(ctx, opt)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	c.closers = append(c.closers, speechClient.Close)
	c.Speech = NewSpeech(speechClient)

	return c, nil
}

// Close releases the gRPC connections held by the storage and speech clients.
func (c *Clients) Close() error {
	var errs []error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
