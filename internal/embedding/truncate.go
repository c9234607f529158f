package embedding

import (
	"context"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/logger"
	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

// Truncator caps input length in tokens. With no encoding it passes text through.
type Truncator struct {
	encoding  *tiktoken.Tiktoken
	maxTokens int
}

// NewTruncator loads the cl100k_base encoding. Long transcripts are otherwise
// rejected by the embedding APIs; when the encoding cannot be loaded
// (offline, no cache) truncation is skipped.
func NewTruncator(maxTokens int, log logger.Logger) *Truncator {
	if maxTokens <= 0 {
		return &Truncator{}
	}
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		log.Warn(context.Background(), "Token truncation disabled: %v", err)
		return &Truncator{}
	}
	return &Truncator{encoding: encoding, maxTokens: maxTokens}
}

// Truncate returns text cut to at most maxTokens tokens.
func (t *Truncator) Truncate(text string) string {
	if t == nil || t.encoding == nil || t.maxTokens <= 0 {
		return text
	}
	tokens := t.encoding.Encode(text, nil, nil)
	if len(tokens) <= t.maxTokens {
		return text
	}
	return t.encoding.Decode(tokens[:t.maxTokens])
}
