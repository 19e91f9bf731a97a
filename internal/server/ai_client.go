package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aselo/backend/internal/config"
)

type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CompletionRequest struct {
	SystemPrompt string
	Conversation []ChatTurn
	UserPrompt   string
}

// AIClient is the completion provider boundary: prompt in, text out.
type AIClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// OpenRouterClient talks to an OpenAI-compatible chat completions endpoint.
type OpenRouterClient struct {
	apiKey     string
	baseURL    string
	model      string
	siteURL    string
	siteName   string
	maxTokens  int
	httpClient *http.Client
}

func NewOpenRouterClient(cfg config.Config) *OpenRouterClient {
	timeoutSeconds := cfg.AITimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}
	return &OpenRouterClient{
		apiKey:    strings.TrimSpace(cfg.OpenRouterAPIKey),
		baseURL:   strings.TrimRight(strings.TrimSpace(cfg.OpenRouterBaseURL), "/"),
		model:     strings.TrimSpace(cfg.OpenRouterModel),
		siteURL:   strings.TrimSpace(cfg.SiteURL),
		siteName:  strings.TrimSpace(cfg.SiteName),
		maxTokens: cfg.AIMaxTokens,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

func (c *OpenRouterClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("OPENROUTER_API_KEY is not configured")
	}
	if c.baseURL == "" {
		return "", errors.New("OPENROUTER_BASE_URL is not configured")
	}
	if c.model == "" {
		return "", errors.New("OPENROUTER_MODEL is not configured")
	}

	type apiMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	messages := make([]apiMessage, 0, len(req.Conversation)+2)
	if strings.TrimSpace(req.SystemPrompt) != "" {
		messages = append(messages, apiMessage{Role: "system", Content: strings.TrimSpace(req.SystemPrompt)})
	}
	for _, turn := range req.Conversation {
		role := strings.ToLower(strings.TrimSpace(turn.Role))
		if role != "user" && role != "assistant" {
			continue
		}
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		messages = append(messages, apiMessage{Role: role, Content: content})
	}
	if userPrompt := strings.TrimSpace(req.UserPrompt); userPrompt != "" {
		messages = append(messages, apiMessage{Role: "user", Content: userPrompt})
	}
	if len(messages) == 0 {
		return "", errors.New("completion request input is empty")
	}

	maxTokens := c.maxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	payload := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"temperature": 0.7,
		"max_tokens":  maxTokens,
		"top_p":       1,
	}
	bodyRaw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	request, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/chat/completions",
		bytes.NewReader(bodyRaw),
	)
	if err != nil {
		return "", err
	}
	request.Header.Set("Authorization", "Bearer "+c.apiKey)
	request.Header.Set("Content-Type", "application/json")
	// OpenRouter attribution headers.
	if c.siteURL != "" {
		request.Header.Set("HTTP-Referer", c.siteURL)
	}
	if c.siteName != "" {
		request.Header.Set("X-Title", c.siteName)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return "", err
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return "", fmt.Errorf(
			"openrouter error (%d): %s",
			response.StatusCode,
			truncateForLog(string(responseBody), 600),
		)
	}

	parsed := parseJSONStringMap(responseBody)
	answer := extractChoiceContent(parsed)
	if strings.TrimSpace(answer) == "" {
		return "", errors.New("completion response content is empty")
	}
	return answer, nil
}

func extractChoiceContent(data map[string]any) string {
	choices, ok := data["choices"].([]any)
	if !ok || len(choices) == 0 {
		return ""
	}
	choice, ok := choices[0].(map[string]any)
	if !ok {
		return ""
	}
	message, ok := choice["message"].(map[string]any)
	if !ok {
		return ""
	}
	return strings.TrimSpace(toString(message["content"]))
}

// MockAIClient serves keyless development and tests. Chat turns get a
// canned guidance reply, extraction requests get an empty envelope so no
// garbage lands in the form, summaries get a fixed line.
type MockAIClient struct{}

func (MockAIClient) Complete(_ context.Context, req CompletionRequest) (string, error) {
	system := strings.ToLower(req.SystemPrompt)
	switch {
	case strings.Contains(system, "json object"):
		return `{"success": true, "message": "mock extraction"}`, nil
	case strings.Contains(system, "summarize"):
		return "Summary unavailable: completion provider is not configured.", nil
	default:
		question := strings.TrimSpace(req.UserPrompt)
		if question == "" {
			question = "your situation"
		}
		return "Mock response: thanks for sharing about " + truncateForLog(question, 120) +
			". Could you tell me the child's name and age?", nil
	}
}
