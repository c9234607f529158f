package transcriber

import (
	"context"
	"os"
)

// cleanupWorkDir removes the per-file scratch directory, logs warning if fails
func (t *implTranscriber) cleanupWorkDir(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		t.logger.Warn(ctx, "Failed to cleanup scratch dir %s: %v", dir, err)
	} else {
		t.logger.Debug(ctx, "Cleaned up scratch dir: %s", dir)
	}
}

// removeStaged deletes the staged recognition input. It runs even when the
// job was cancelled.
func (t *implTranscriber) removeStaged(ctx context.Context, name string) {
	ctx = context.WithoutCancel(ctx)
	if err := t.stager.Remove(ctx, name); err != nil {
		t.logger.Warn(ctx, "Failed to remove staged audio %s: %v", name, err)
	}
}
