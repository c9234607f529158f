package transcriber

import (
	"github.com/nguyentantai21042004/meeting-summarizer/internal/config"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/logger"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/models"
	"github.com/nguyentantai21042004/meeting-summarizer/pkg/executor"
)

type implTranscriber struct {
	tempDir     string
	ffmpegPath  string
	sampleRate  int
	recognition models.RecognitionConfig

	executor   executor.Executor
	pool       *Pool
	downloader Downloader
	stager     Stager
	recognizer Recognizer
	logger     logger.Logger
}

// Deps are the remote capabilities one job's transcriber works with.
type Deps struct {
	Downloader Downloader
	Stager     Stager
	Recognizer Recognizer
}

// New creates a Transcriber. pool is shared by every job of the process.
func New(cfg *config.Config, exec executor.Executor, pool *Pool, deps Deps, log logger.Logger) Transcriber {
	return &implTranscriber{
		tempDir:     cfg.Paths.Temp,
		ffmpegPath:  cfg.FFmpeg.BinaryPath,
		sampleRate:  cfg.FFmpeg.SampleRate,
		recognition: RecognitionConfig(cfg.Speech),
		executor:    exec,
		pool:        pool,
		downloader:  deps.Downloader,
		stager:      deps.Stager,
		recognizer:  deps.Recognizer,
		logger:      log,
	}
}

// RecognitionConfig builds the recognizer settings: 16-bit linear PCM with
// punctuation and speaker diarization.
func RecognitionConfig(cfg config.SpeechConfig) models.RecognitionConfig {
	enhanced := true
	if cfg.UseEnhanced != nil {
		enhanced = *cfg.UseEnhanced
	}
	return models.RecognitionConfig{
		Encoding:                   "LINEAR16",
		SampleRateHertz:            cfg.SampleRateHertz,
		LanguageCode:               cfg.LanguageCode,
		EnableAutomaticPunctuation: true,
		Model:                      cfg.Model,
		UseEnhanced:                enhanced,
		EnableSpeakerDiarization:   true,
		MinSpeakerCount:            cfg.MinSpeakers,
		MaxSpeakerCount:            cfg.MaxSpeakers,
	}
}
