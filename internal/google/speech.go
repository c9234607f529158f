package google

import (
	"context"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/models"
)

// Speech runs long-running recognition on Cloud Speech-to-Text.
type Speech struct {
	client *speech.Client
}

func NewSpeech(client *speech.Client) *Speech {
	return &Speech{client: client}
}

// Recognize submits the staged audio and blocks until the operation completes.
func (s *Speech) Recognize(ctx context.Context, uri string, cfg models.RecognitionConfig) ([]models.RecognitionResult, error) {
	req := &speechpb.LongRunningRecognizeRequest{
		Config: toRecognitionConfig(cfg),
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Uri{Uri: uri},
		},
	}

	op, err := s.client.LongRunningRecognize(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("submit recognition: %w", err)
	}
	resp, err := op.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("wait for recognition: %w", err)
	}
	return fromRecognizeResponse(resp), nil
}
