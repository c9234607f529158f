package watcher

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/logger"
)

// defaultSettle is how long writes must stop before the handler runs.
const defaultSettle = 500 * time.Millisecond

// New watches filePath. The parent directory is watched so editors that
// replace the file by rename are still seen.
func New(filePath string, handler EventHandler, log logger.Logger) (Watcher, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	return &implWatcher{
		path:    abs,
		handler: handler,
		logger:  log,
		watcher: watcher,
		settle:  defaultSettle,
	}, nil
}
