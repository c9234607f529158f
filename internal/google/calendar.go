package google

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/models"
	"google.golang.org/api/calendar/v3"
)

// Calendar implements the calendar store on top of Google Calendar.
type Calendar struct {
	service    *calendar.Service
	calendarID string
}

func NewCalendar(service *calendar.Service, calendarID string) *Calendar {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &Calendar{service: service, calendarID: calendarID}
}

// ListEvents returns single events starting in [from, to], ordered by start time.
func (c *Calendar) ListEvents(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	err := c.service.Events.List(c.calendarID).
		TimeMin(from.UTC().Format(time.RFC3339)).
		TimeMax(to.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Pages(ctx, func(page *calendar.Events) error {
			for _, item := range page.Items {
				events = append(events, toCalendarEvent(item))
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}
	return events, nil
}
