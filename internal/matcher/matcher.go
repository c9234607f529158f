package matcher

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/models"
)

type candidate struct {
	event models.CalendarEvent
	delta time.Duration
}

func (m *implMatcher) Match(ctx context.Context, transcript string, recordedAt time.Time, events []models.CalendarEvent) *models.MatchResult {
	if strings.TrimSpace(transcript) == "" || len(events) == 0 {
		return nil
	}

	candidates := m.filterByTime(ctx, recordedAt, events)
	if len(candidates) == 0 {
		m.logger.Debug(ctx, "No events within %s of %s", m.window, recordedAt.Format(time.RFC3339))
		return nil
	}

	transcriptVec, err := m.embedder.Embed(ctx, transcript)
	if err != nil || len(transcriptVec) == 0 {
		m.logger.Warn(ctx, "Transcript embedding failed, skipping match: %v", err)
		return nil
	}

	var best *models.MatchResult
	for _, c := range candidates {
		text := strings.TrimSpace(c.event.MatchText())
		if text == "" {
			continue
		}

		eventVec, err := m.embedder.Embed(ctx, text)
		if err != nil {
			m.logger.Warn(ctx, "Embedding failed for event %q: %v", c.event.Summary, err)
			continue
		}

		score := Similarity(transcriptVec, eventVec)
		m.logger.Debug(ctx, "Event %q scored %.4f", c.event.Summary, score)

		// Strictly greater: on ties the temporally closer event stays.
		if score >= m.minSimilarity && (best == nil || score > best.Score) {
			best = &models.MatchResult{Event: c.event, Score: score}
		}
	}

	if best != nil {
		m.logger.Info(ctx, "Matched event %q (score %.4f)", best.Event.Summary, best.Score)
	}
	return best
}

// filterByTime keeps events within the window of recordedAt, closest first.
func (m *implMatcher) filterByTime(ctx context.Context, recordedAt time.Time, events []models.CalendarEvent) []candidate {
	recordedAt = recordedAt.UTC()

	var out []candidate
	for _, ev := range events {
		start, err := ev.Start.Instant()
		if err != nil {
			m.logger.Debug(ctx, "Dropping event %q: %v", ev.Summary, err)
			continue
		}
		delta := start.Sub(recordedAt)
		if delta < 0 {
			delta = -delta
		}
		if delta <= m.window {
			out = append(out, candidate{event: ev, delta: delta})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].delta < out[j].delta })
	return out
}
