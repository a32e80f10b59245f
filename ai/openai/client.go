// Package openai implements a chat-completions client for the OpenAI API
// and for any server that speaks the same wire protocol (Ollama, llamafile,
// vLLM). Local inference reuses this client with a different base URL.
package openai

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/promptcrafter/promptcrafter/ai/tracker"
	"github.com/promptcrafter/promptcrafter/errors"
	"github.com/promptcrafter/promptcrafter/internal/httpclient"
)

const (
	// DefaultModel is the fallback model when none is specified
	// Should match the default in config/defaults.go for consistency
	DefaultModel = "gpt-4o-mini"

	// DefaultBaseURL is the OpenAI API endpoint
	DefaultBaseURL = "https://api.openai.com/v1"
)

// Client is an OpenAI-compatible chat completions client
type Client struct {
	apiKey       string
	baseURL      string
	httpClient   *httpclient.SaferClient
	config       Config
	usageTracker *tracker.UsageTracker
	logger       *zap.SugaredLogger
}

// Config holds AI client configuration
type Config struct {
	APIKey            string
	BaseURL           string        // Endpoint base URL (default: api.openai.com/v1)
	Model             string
	Timeout           time.Duration // Per-request HTTP timeout (default: 120s; local models may need hours)
	Temperature       *float64      // nil = use default (0.2)
	MaxTokens         *int          // nil = use default (1000)
	Provider          string   // Provider label for usage tracking (default: "openai")
	Logger            *zap.SugaredLogger // Structured logger (nil = nop logger)
	DB                *sql.DB  // Database for automatic cost/usage tracking (strongly recommended)
	OperationType     string   // Operation type for tracking context (e.g. "generate", "schedule")
	AllowPrivateHosts bool     // Permit localhost/private-IP endpoints (local inference only)
}

// NewClient creates a new chat completions client with defaults applied
func NewClient(config Config) *Client {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Temperature == nil {
		defaultTemp := 0.2
		config.Temperature = &defaultTemp
	}
	if config.MaxTokens == nil {
		defaultTokens := 1000
		config.MaxTokens = &defaultTokens
	}
	if config.Provider == "" {
		config.Provider = "openai"
	}
	if config.Timeout <= 0 {
		config.Timeout = 120 * time.Second
	}

	// Initialize usage tracker if database is provided
	var usageTracker *tracker.UsageTracker
	if config.DB != nil {
		usageTracker = tracker.NewUsageTracker(config.DB)
	}

	// Initialize logger (nop if not provided)
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	// Create SSRF-safer HTTP client with redirect protection.
	// Blocks private IPs, localhost, AWS metadata endpoint, dangerous schemes.
	// Local inference endpoints are private by definition, so the block is
	// lifted only when the config explicitly asks for it.
	blockPrivateIP := !config.AllowPrivateHosts
	saferClient := httpclient.NewSaferClientWithOptions(config.Timeout, httpclient.SaferClientOptions{
		BlockPrivateIP: &blockPrivateIP,
	})

	return &Client{
		apiKey:       config.APIKey,
		baseURL:      strings.TrimRight(config.BaseURL, "/"),
		httpClient:   saferClient,
		config:       config,
		usageTracker: usageTracker,
		logger:       logger,
	}
}

// ChatCompletionRequest represents a request to the chat completions endpoint
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// ChatRequest represents a high-level request to the AI
type ChatRequest struct {
	SystemPrompt string
	UserPrompt   string
	ParamName    string   // Template placeholder being generated, recorded with usage
	Temperature  *float64 // Override default temperature
	MaxTokens    *int     // Override default max tokens
	Model        *string  // Override default model
}

// ChatResponse represents the AI response
type ChatResponse struct {
	Content string
	Model   string
	Usage   Usage
}

// Message represents a message in a chat completion
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionResponse represents the response from chat completions
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice represents a completion choice
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage represents token usage information
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CreateChatCompletion sends a single chat completion request without retries
func (c *Client) CreateChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	// Local inference servers typically run without authentication
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errors.Wrapf(errors.ErrRateLimited, "status %d: %s", resp.StatusCode, string(respBody))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal response")
	}

	return &chatResp, nil
}

// Chat sends a chat completion request with retry logic and usage tracking
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	// Prepare request parameters (dereference config defaults, allow per-request overrides)
	temperature := *c.config.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	maxTokens := *c.config.MaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	model := c.config.Model
	if req.Model != nil {
		model = *req.Model
	}

	c.logger.Debugw("AI Chat Request",
		"provider", c.config.Provider,
		"model", model,
		"temperature", temperature,
		"max_tokens", maxTokens,
		"param", req.ParamName,
	)

	messages := []Message{{Role: "user", Content: req.UserPrompt}}
	if req.SystemPrompt != "" {
		messages = append([]Message{{Role: "system", Content: req.SystemPrompt}}, messages...)
	}

	completionReq := ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	requestTime := time.Now()

	maxRetries := 3
	var resp *ChatCompletionResponse
	var err error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * time.Second
			c.logger.Debugw("Retrying chat completion request",
				"attempt", attempt, "max_retries", maxRetries-1, "delay", delay)
			select {
			case <-ctx.Done():
				c.trackFailedRequest(requestTime, req.ParamName, model, ctx.Err())
				return nil, errors.Wrap(ctx.Err(), "chat completion cancelled")
			case <-time.After(delay):
			}
		}

		resp, err = c.CreateChatCompletion(ctx, completionReq)

		// Success
		if err == nil {
			if attempt > 0 {
				c.logger.Infow("Request succeeded after retries", "attempts", attempt+1, "model", model)
			}
			break
		}

		c.logger.Warnw("Chat completion error",
			"attempt", attempt+1, "max_retries", maxRetries,
			"error", err, "model", model,
			"url", c.baseURL+"/chat/completions")

		if c.isRetryableError(err) {
			continue
		}

		c.trackFailedRequest(requestTime, req.ParamName, model, err)
		return nil, errors.Wrapf(err, "%s API error", c.config.Provider)
	}

	if err != nil {
		c.trackFailedRequest(requestTime, req.ParamName, model, err)
		return nil, errors.Wrapf(err, "%s API error after %d retries", c.config.Provider, maxRetries)
	}

	// Validate response before accessing
	if len(resp.Choices) == 0 {
		c.trackFailedRequest(requestTime, req.ParamName, model, errors.ErrEmptyResponse)
		return nil, errors.Wrapf(errors.ErrEmptyResponse, "no choices from %s", c.config.Provider)
	}

	responseText := strings.TrimSpace(resp.Choices[0].Message.Content)
	if responseText == "" {
		c.trackFailedRequest(requestTime, req.ParamName, model, errors.ErrEmptyResponse)
		return nil, errors.Wrapf(errors.ErrEmptyResponse, "empty content from %s", c.config.Provider)
	}

	c.logger.Debugw("Chat completion response",
		"content_length", len(responseText),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"total_tokens", resp.Usage.TotalTokens,
	)

	// Track successful usage
	if c.usageTracker != nil {
		responseTime := time.Now()
		promptTokens := resp.Usage.PromptTokens
		completionTokens := resp.Usage.CompletionTokens
		tokensUsed := resp.Usage.TotalTokens
		cost := CalculateCost(c.config.Provider, model, promptTokens, completionTokens)

		usage := &tracker.ModelUsage{
			OperationType:     c.config.OperationType,
			ParamName:         req.ParamName,
			ModelName:         model,
			ModelProvider:     c.config.Provider,
			RequestTimestamp:  requestTime,
			ResponseTimestamp: &responseTime,
			PromptTokens:      &promptTokens,
			CompletionTokens:  &completionTokens,
			TokensUsed:        &tokensUsed,
			CostUSD:           &cost,
			Success:           true,
		}

		if err := c.usageTracker.TrackUsage(usage); err != nil {
			// Always log tracking errors (budget enforcement relies on this data)
			c.logger.Warnw("Failed to track usage", "error", err, "model", model, "tokens", tokensUsed)
		}
	}

	return &ChatResponse{
		Content: responseText,
		Model:   resp.Model,
		Usage:   resp.Usage,
	}, nil
}

// isRetryableError checks if an error is worth retrying (network-related)
func (c *Client) isRetryableError(err error) bool {
	if errors.Is(err, errors.ErrRateLimited) {
		return true
	}

	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return true
	}

	if syscallErr, ok := err.(*net.OpError); ok {
		if errno, ok := syscallErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ETIMEDOUT:
				return true
			}
		}
	}

	// Check for common network error strings
	errStr := strings.ToLower(err.Error())
	networkErrors := []string{
		"connection reset by peer",
		"connection refused",
		"timeout",
		"temporary failure",
		"network is unreachable",
		"i/o timeout",
	}

	for _, netErr := range networkErrors {
		if strings.Contains(errStr, netErr) {
			return true
		}
	}

	return false
}

// trackFailedRequest tracks a failed API request
func (c *Client) trackFailedRequest(requestTime time.Time, paramName, model string, err error) {
	if c.usageTracker == nil {
		return
	}

	responseTime := time.Now()
	errMsg := err.Error()

	usage := &tracker.ModelUsage{
		OperationType:     c.config.OperationType,
		ParamName:         paramName,
		ModelName:         model,
		ModelProvider:     c.config.Provider,
		RequestTimestamp:  requestTime,
		ResponseTimestamp: &responseTime,
		Success:           false,
		ErrorMessage:      &errMsg,
	}

	if trackErr := c.usageTracker.TrackUsage(usage); trackErr != nil {
		c.logger.Warnw("Failed to track failed request", "error", trackErr, "model", model, "original_error", err.Error())
	}
}

// IsConfigured returns true if the client has a valid API key
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.config.Model
}

// Provider returns the provider label used for tracking
func (c *Client) Provider() string {
	return c.config.Provider
}

// SetHTTPClient allows overriding the HTTP client for testing
// ⚠️ WARNING: Only use this in tests. Production code should use the default SSRF-safer client.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = httpclient.WrapClient(client)
}
