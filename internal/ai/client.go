// Package ai asks a language model for wording suggestions. Suggestions
// are advisory: callers treat any failure as "no suggestion".
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Config selects the provider and carries its credentials
type Config struct {
	Provider     string
	Model        string
	OllamaURL    string
	LMStudioURL  string
	OpenAIKey    string
	AnthropicKey string
	GeminiKey    string

	// Base URLs of the hosted APIs; overridden in tests
	OpenAIURL    string
	AnthropicURL string
	GeminiURL    string
}

// Client talks to one provider
type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.OpenAIURL == "" {
		cfg.OpenAIURL = "https://api.openai.com"
	}
	if cfg.AnthropicURL == "" {
		cfg.AnthropicURL = "https://api.anthropic.com"
	}
	if cfg.GeminiURL == "" {
		cfg.GeminiURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.OllamaURL == "" {
		cfg.OllamaURL = "http://localhost:11434"
	}
	if cfg.LMStudioURL == "" {
		cfg.LMStudioURL = "http://localhost:1234"
	}
	return &Client{cfg: cfg, http: httpClient, log: logger}
}

// Complete sends prompt to the configured provider and returns the trimmed answer
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	c.log.Debug("requesting completion", "provider", c.cfg.Provider, "model", c.cfg.Model)

	switch c.cfg.Provider {
	case "openai":
		return c.completeOpenAI(ctx, prompt)
	case "anthropic":
		return c.completeAnthropic(ctx, prompt)
	case "gemini":
		return c.completeGemini(ctx, prompt)
	case "ollama":
		return c.completeOllama(ctx, prompt)
	case "lmstudio":
		return c.completeLMStudio(ctx, prompt)
	default:
		return "", fmt.Errorf("unsupported AI provider: %s", c.cfg.Provider)
	}
}

func (c *Client) model(fallback string) string {
	if c.cfg.Model == "" {
		return fallback
	}
	return c.cfg.Model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) completeOpenAI(ctx context.Context, prompt string) (string, error) {
	if c.cfg.OpenAIKey == "" {
		return "", fmt.Errorf("OpenAI API key not configured. Run: cvbuilder config set openai_key YOUR_KEY")
	}
	return c.chat(ctx, "OpenAI", c.cfg.OpenAIURL+"/v1/chat/completions", c.model("gpt-4o-mini"),
		prompt, map[string]string{"Authorization": "Bearer " + c.cfg.OpenAIKey})
}

func (c *Client) completeLMStudio(ctx context.Context, prompt string) (string, error) {
	return c.chat(ctx, "LMStudio", c.cfg.LMStudioURL+"/v1/chat/completions", c.model("local-model"), prompt, nil)
}

// chat speaks the OpenAI chat completions dialect shared by OpenAI and LMStudio
func (c *Client) chat(ctx context.Context, name, url, model, prompt string, headers map[string]string) (string, error) {
	req := chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.7,
		MaxTokens:   1000,
	}
	var result chatResponse
	if err := c.postJSON(ctx, name, url, headers, req, &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("unexpected response format from %s", name)
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

func (c *Client) completeAnthropic(ctx context.Context, prompt string) (string, error) {
	if c.cfg.AnthropicKey == "" {
		return "", fmt.Errorf("Anthropic API key not configured. Run: cvbuilder config set anthropic_key YOUR_KEY")
	}

	req := struct {
		Model     string        `json:"model"`
		MaxTokens int           `json:"max_tokens"`
		Messages  []chatMessage `json:"messages"`
	}{
		Model:     c.model("claude-3-5-haiku-latest"),
		MaxTokens: 1000,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
	}
	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	headers := map[string]string{
		"x-api-key":         c.cfg.AnthropicKey,
		"anthropic-version": "2023-06-01",
	}
	if err := c.postJSON(ctx, "Anthropic", c.cfg.AnthropicURL+"/v1/messages", headers, req, &result); err != nil {
		return "", err
	}
	for _, block := range result.Content {
		if block.Type == "text" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", fmt.Errorf("unexpected response format from Anthropic")
}

func (c *Client) completeGemini(ctx context.Context, prompt string) (string, error) {
	if c.cfg.GeminiKey == "" {
		return "", fmt.Errorf("Gemini API key not configured. Run: cvbuilder config set gemini_key YOUR_KEY")
	}

	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Parts []part `json:"parts"`
	}
	req := struct {
		Contents []content `json:"contents"`
	}{Contents: []content{{Parts: []part{{Text: prompt}}}}}

	var result struct {
		Candidates []struct {
			Content content `json:"content"`
		} `json:"candidates"`
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.cfg.GeminiURL, c.model("gemini-2.5-pro"))
	headers := map[string]string{"x-goog-api-key": c.cfg.GeminiKey}
	if err := c.postJSON(ctx, "Gemini", url, headers, req, &result); err != nil {
		return "", err
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}
	return strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text), nil
}

func (c *Client) completeOllama(ctx context.Context, prompt string) (string, error) {
	req := struct {
		Model  string `json:"model"`
		Prompt string `json:"prompt"`
		Stream bool   `json:"stream"`
	}{Model: c.model("llama3.2"), Prompt: prompt}

	var result struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "Ollama", c.cfg.OllamaURL+"/api/generate", nil, req, &result); err != nil {
		return "", err
	}
	if result.Response == "" {
		return "", fmt.Errorf("unexpected response format from Ollama")
	}
	return strings.TrimSpace(result.Response), nil
}

func (c *Client) postJSON(ctx context.Context, name, url string, headers map[string]string, in, out any) error {
	jsonData, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s API error: %s", name, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", name, err)
	}
	return nil
}
