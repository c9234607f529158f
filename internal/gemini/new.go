package gemini

import (
	"sync"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/config"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/logger"
	"google.golang.org/genai"
)

type implClient struct {
	mu         sync.Mutex
	apiKeys    []string
	currentKey int

	project  string
	location string
	model    string
	baseURL  string
	logger   logger.Logger
}

// New creates a Client. Without API keys it falls back to Vertex AI using
// the project and location from the Google section.
func New(cfg *config.Config, log logger.Logger) Client {
	return &implClient{
		apiKeys:  cfg.Gemini.APIKeys,
		project:  cfg.Google.ProjectID,
		location: cfg.Google.Location,
		model:    cfg.Gemini.Model,
		logger:   log,
	}
}

// clientConfig builds the genai config for one attempt.
func (c *implClient) clientConfig(key string) *genai.ClientConfig {
	cc := &genai.ClientConfig{}
	if key != "" {
		cc.APIKey = key
		cc.Backend = genai.BackendGeminiAPI
	} else {
		cc.Project = c.project
		cc.Location = c.location
		cc.Backend = genai.BackendVertexAI
	}
	if c.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	return cc
}
