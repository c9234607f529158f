package transcriber

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

// convertToWAV transcodes the download to mono 16-bit PCM WAV at the
// configured sample rate. The recognizer is configured for exactly this encoding.
func (t *implTranscriber) convertToWAV(ctx context.Context, inputPath, outputPath string) error {
	if err := t.pool.acquire(ctx); err != nil {
		return fmt.Errorf("wait for transcode slot: %w", err)
	}
	defer t.pool.release()

	// -vn: drop any video stream
	// -ac 1: mono
	// -ar: sample rate expected by recognition
	// -c:a pcm_s16le: 16-bit little-endian linear PCM
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-loglevel", "warning",
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(t.sampleRate),
		"-c:a", "pcm_s16le",
		outputPath,
	}

	t.logger.Debug(ctx, "Converting %s -> %s", inputPath, outputPath)
	if _, err := t.executor.Execute(ctx, t.ffmpegPath, args...); err != nil {
		return fmt.Errorf("ffmpeg convert: %w", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("ffmpeg completed but output is missing: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("ffmpeg produced an empty file")
	}
	return nil
}
