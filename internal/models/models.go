package models

import (
	"fmt"
	"strings"
	"time"
)

// AudioFile is one audio entry from the source folder listing.
type AudioFile struct {
	ID       string
	Name     string
	MimeType string
	// CreatedAt is zero when the listing did not carry a usable creation time.
	CreatedAt time.Time
}

// Attendee is one invited participant of a calendar event.
type Attendee struct {
	Email       string
	DisplayName string
}

// EventTime mirrors the calendar start field: either a date-time or an all-day date.
type EventTime struct {
	DateTime string
	Date     string
}

// Instant returns the UTC start instant. All-day events start at midnight UTC.
func (t EventTime) Instant() (time.Time, error) {
	if t.DateTime != "" {
		ts, err := time.Parse(time.RFC3339, t.DateTime)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse event date-time %q: %w", t.DateTime, err)
		}
		return ts.UTC(), nil
	}
	if t.Date != "" {
		ts, err := time.ParseInLocation(time.DateOnly, t.Date, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse event date %q: %w", t.Date, err)
		}
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("event has no start time")
}

// String renders the raw start value.
func (t EventTime) String() string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

// CalendarEvent is a calendar entry fetched once per job.
type CalendarEvent struct {
	ID          string
	Summary     string
	Description string
	Location    string
	Start       EventTime
	Organizer   string
	Attendees   []Attendee
}

// MatchText is the text embedded for semantic ranking.
func (e CalendarEvent) MatchText() string {
	return e.Summary + " " + e.Description
}

// AttendeeList renders attendees as a comma separated list.
func (e CalendarEvent) AttendeeList() string {
	names := make([]string, 0, len(e.Attendees))
	for _, a := range e.Attendees {
		switch {
		case a.DisplayName != "" && a.Email != "":
			names = append(names, fmt.Sprintf("%s <%s>", a.DisplayName, a.Email))
		case a.Email != "":
			names = append(names, a.Email)
		case a.DisplayName != "":
			names = append(names, a.DisplayName)
		}
	}
	return strings.Join(names, ", ")
}

// MatchResult is the event judged most relevant to a transcript.
type MatchResult struct {
	Event CalendarEvent
	Score float64
}

// Upload describes a summary document written to the destination folder.
type Upload struct {
	Name     string
	MimeType string
	Content  []byte
	// SourceFileID keys the upload so later runs can detect it.
	SourceFileID string
}

// ProcessingRequest is the payload of a start_processing command.
type ProcessingRequest struct {
	AudioFolderID   string `json:"audio_folder_id"`
	SummaryFolderID string `json:"summary_folder_id"`
	AccessToken     string `json:"access_token"`
}

func (r ProcessingRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.AudioFolderID) == "" {
		missing = append(missing, "audio_folder_id")
	}
	if strings.TrimSpace(r.SummaryFolderID) == "" {
		missing = append(missing, "summary_folder_id")
	}
	if strings.TrimSpace(r.AccessToken) == "" {
		missing = append(missing, "access_token")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// RecognitionConfig is the speech recognition request configuration.
type RecognitionConfig struct {
	Encoding                   string
	SampleRateHertz            int
	LanguageCode               string
	EnableAutomaticPunctuation bool
	Model                      string
	UseEnhanced                bool
	EnableSpeakerDiarization   bool
	MinSpeakerCount            int
	MaxSpeakerCount            int
}

// RecognitionResult is one recognized segment with its alternatives, best first.
type RecognitionResult struct {
	Alternatives []string
}
