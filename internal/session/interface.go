package session

import (
	"context"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/models"
)

// Channel is the duplex transport of one connected client.
type Channel interface {
	Send(ctx context.Context, event models.StatusEvent) error
	Close() error
}
