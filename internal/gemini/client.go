package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when an embedding call answers without values.
var ErrEmptyResponse = errors.New("empty response from Gemini")

// Generate sends the prompt and returns the concatenated candidate text.
// An empty string with a nil error means the model produced no text,
// including a response without candidates.
func (c *implClient) Generate(ctx context.Context, prompt string) (string, error) {
	var text string
	err := c.withRotation(ctx, func(client *genai.Client) error {
		result, err := client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
		if err != nil {
			return err
		}
		if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
			return nil
		}
		var sb strings.Builder
		for _, part := range result.Candidates[0].Content.Parts {
			if part != nil && part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
		text = sb.String()
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// Embed returns the embedding of text computed by model.
func (c *implClient) Embed(ctx context.Context, model, text string) ([]float32, error) {
	var values []float32
	err := c.withRotation(ctx, func(client *genai.Client) error {
		result, err := client.Models.EmbedContent(ctx, model, genai.Text(text), nil)
		if err != nil {
			return err
		}
		if result == nil || len(result.Embeddings) == 0 || result.Embeddings[0] == nil {
			return ErrEmptyResponse
		}
		values = result.Embeddings[0].Values
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// withRotation runs call once per configured key, moving to the next key on
// 429 / quota errors. Any other error is returned immediately.
func (c *implClient) withRotation(ctx context.Context, call func(*genai.Client) error) error {
	attempts := len(c.apiKeys)
	if attempts == 0 {
		attempts = 1
	}

	var lastErr error
	for range attempts {
		key, index := c.key()

		client, err := genai.NewClient(ctx, c.clientConfig(key))
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			c.rotateKey(index)
			continue
		}

		err = call(client)
		if err == nil {
			return nil
		}
		if !isQuotaError(err) {
			return fmt.Errorf("gemini request: %w", err)
		}

		c.logger.Warn(ctx, "Key %d rate limited, rotating...", index+1)
		c.rotateKey(index)
		lastErr = err
	}

	return fmt.Errorf("all API keys exhausted: %w", lastErr)
}

// key returns the current key and its index, or "" when using Vertex AI.
func (c *implClient) key() (string, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.apiKeys) == 0 {
		return "", 0
	}
	return c.apiKeys[c.currentKey], c.currentKey
}

// rotateKey advances past index unless another caller already has.
func (c *implClient) rotateKey(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.apiKeys) == 0 || c.currentKey != index {
		return
	}
	c.currentKey = (c.currentKey + 1) % len(c.apiKeys)
}

func isQuotaError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == 429 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
