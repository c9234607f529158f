package google

import (
	"time"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/models"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/drive/v3"
)

func toAudioFile(f *drive.File) models.AudioFile {
	af := models.AudioFile{
		ID:       f.Id,
		Name:     f.Name,
		MimeType: f.MimeType,
	}
	// A garbled createdTime leaves CreatedAt zero and disables matching.
	if ts, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
		af.CreatedAt = ts.UTC()
	}
	return af
}

func toCalendarEvent(e *calendar.Event) models.CalendarEvent {
	ev := models.CalendarEvent{
		ID:          e.Id,
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
	}
	if e.Start != nil {
		ev.Start = models.EventTime{DateTime: e.Start.DateTime, Date: e.Start.Date}
	}
	if e.Organizer != nil {
		ev.Organizer = e.Organizer.Email
	}
	for _, a := range e.Attendees {
		if a == nil {
			continue
		}
		ev.Attendees = append(ev.Attendees, models.Attendee{Email: a.Email, DisplayName: a.DisplayName})
	}
	return ev
}

func toRecognitionConfig(cfg models.RecognitionConfig) *speechpb.RecognitionConfig {
	encoding := speechpb.RecognitionConfig_LINEAR16
	if v, ok := speechpb.RecognitionConfig_AudioEncoding_value[cfg.Encoding]; ok {
		encoding = speechpb.RecognitionConfig_AudioEncoding(v)
	}

	return &speechpb.RecognitionConfig{
		Encoding:                   encoding,
		SampleRateHertz:            int32(cfg.SampleRateHertz),
		LanguageCode:               cfg.LanguageCode,
		EnableAutomaticPunctuation: cfg.EnableAutomaticPunctuation,
		Model:                      cfg.Model,
		UseEnhanced:                cfg.UseEnhanced,
		DiarizationConfig: &speechpb.SpeakerDiarizationConfig{
			EnableSpeakerDiarization: cfg.EnableSpeakerDiarization,
			MinSpeakerCount:          int32(cfg.MinSpeakerCount),
			MaxSpeakerCount:          int32(cfg.MaxSpeakerCount),
		},
	}
}

func fromRecognizeResponse(resp *speechpb.LongRunningRecognizeResponse) []models.RecognitionResult {
	if resp == nil {
		return nil
	}
	out := make([]models.RecognitionResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		var alts []string
		for _, alt := range r.Alternatives {
			alts = append(alts, alt.Transcript)
		}
		out = append(out, models.RecognitionResult{Alternatives: alts})
	}
	return out
}
