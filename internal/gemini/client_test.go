package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGemini answers generate and embed calls; keys listed in limited get 429.
type fakeGemini struct {
	mu      sync.Mutex
	limited map[string]bool
	keys    []string
	status  int
	// generate, when set, replaces the generate response body.
	generate string
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("x-goog-api-key")
	if key == "" {
		key = r.URL.Query().Get("key")
	}
	f.mu.Lock()
	f.keys = append(f.keys, key)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if f.limited[key] {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`)
		return
	}
	if f.status != 0 {
		w.WriteHeader(f.status)
		fmt.Fprintf(w, `{"error":{"code":%d,"message":"bad request","status":"INVALID_ARGUMENT"}}`, f.status)
		return
	}

	if strings.Contains(r.URL.Path, "mbed") {
		fmt.Fprint(w, `{"embeddings":[{"values":[0.5,0.25]}],"embedding":{"values":[0.5,0.25]}}`)
		return
	}
	if f.generate != "" {
		fmt.Fprint(w, f.generate)
		return
	}
	fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"hello "},{"text":"world"}]}}]}`)
}

func (f *fakeGemini) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...)
}

func newTestClient(t *testing.T, fake *fakeGemini, keys ...string) *implClient {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return &implClient{
		apiKeys: keys,
		model:   "gemini-2.5-flash",
		baseURL: srv.URL,
		logger:  logger.New("error"),
	}
}

func TestGenerateRotatesOnQuota(t *testing.T) {
	fake := &fakeGemini{limited: map[string]bool{"k1": true}}
	c := newTestClient(t, fake, "k1", "k2")

	text, err := c.Generate(context.Background(), "summarize")
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
	assert.Contains(t, fake.seen(), "k1")
	assert.Equal(t, "k2", fake.seen()[len(fake.seen())-1])

	// The rotated key stays current for the next call.
	key, _ := c.key()
	assert.Equal(t, "k2", key)
}

func TestGenerateAllKeysExhausted(t *testing.T) {
	fake := &fakeGemini{limited: map[string]bool{"k1": true, "k2": true}}
	c := newTestClient(t, fake, "k1", "k2")

	_, err := c.Generate(context.Background(), "summarize")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all API keys exhausted")
}

func TestGenerateNonQuotaErrorDoesNotRotate(t *testing.T) {
	fake := &fakeGemini{status: http.StatusBadRequest}
	c := newTestClient(t, fake, "k1", "k2")

	_, err := c.Generate(context.Background(), "summarize")
	require.Error(t, err)
	key, _ := c.key()
	assert.Equal(t, "k1", key)
}

func TestGenerateWithoutCandidates(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no candidates", body: `{"candidates":[]}`},
		{name: "candidate without content", body: `{"candidates":[{"finishReason":"SAFETY"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeGemini{generate: tt.body}
			c := newTestClient(t, fake, "k1")

			text, err := c.Generate(context.Background(), "summarize")
			require.NoError(t, err)
			assert.Empty(t, text)
			assert.Len(t, fake.seen(), 1)
		})
	}
}

func TestEmbed(t *testing.T) {
	c := newTestClient(t, &fakeGemini{}, "k1")

	values, err := c.Embed(context.Background(), "text-embedding-004", "weekly sync")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, values)
}

func TestRotateKeyOnlyOncePerFailure(t *testing.T) {
	c := &implClient{apiKeys: []string{"a", "b", "c"}}

	c.rotateKey(0)
	c.rotateKey(0) // stale index from a concurrent caller
	key, index := c.key()
	assert.Equal(t, "b", key)
	assert.Equal(t, 1, index)

	c.rotateKey(1)
	c.rotateKey(2)
	key, _ = c.key()
	assert.Equal(t, "a", key)
}

func TestIsQuotaError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{errors.New("Error 429: too many requests"), true},
		{errors.New("quota exceeded for project"), true},
		{errors.New("RESOURCE_EXHAUSTED"), true},
		{errors.New("invalid argument"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isQuotaError(tt.err), tt.err.Error())
	}
}
