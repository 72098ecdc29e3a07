package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient calls an OpenAI-compatible chat completion endpoint. This
// covers OpenAI itself and aggregators such as OpenRouter.
type OpenAIClient struct {
	client  *openai.Client
	tasks   *TaskTable
	timeout time.Duration
	logger  *zap.Logger
}

// ClientConfig holds the settings needed to build a provider client.
type ClientConfig struct {
	BaseURL string
	APIKey  string // required
	Timeout time.Duration
	// ModelOverrides replaces the default model per task. Empty values keep
	// the defaults.
	ModelOverrides map[TaskType]string
}

// NewOpenAIClient creates a client for an OpenAI-compatible endpoint.
func NewOpenAIClient(cfg *ClientConfig, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(clientConfig),
		tasks:   NewTaskTable(cfg.ModelOverrides),
		timeout: timeout,
		logger:  logger.Named("llm"),
	}, nil
}

// Complete implements Client. It makes exactly one provider attempt; retry
// policy belongs to the caller.
func (c *OpenAIClient) Complete(ctx context.Context, task TaskType, systemMessage string, prompt string) (*CompletionResult, error) {
	settings := c.tasks.Settings(task)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug("completion request",
		zap.String("task", string(task)),
		zap.String("model", settings.Model),
		zap.Int("prompt_len", len(prompt)),
		zap.Float32("temperature", settings.Temperature))

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: settings.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   settings.MaxTokens,
		Temperature: settings.Temperature,
	})
	if err != nil {
		c.logger.Error("completion request failed",
			zap.String("task", string(task)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		llmErr := ClassifyError(err)
		llmErr.Model = settings.Model
		return nil, llmErr
	}

	if len(resp.Choices) == 0 {
		return nil, NewError(ErrorTypeUnknown, "no choices in response", false, nil)
	}

	c.logger.Info("completion request completed",
		zap.String("task", string(task)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return &CompletionResult{
		Content:          resp.Choices[0].Message.Content,
		Model:            settings.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// Model implements Client.
func (c *OpenAIClient) Model(task TaskType) string {
	return c.tasks.Settings(task).Model
}

// Ensure OpenAIClient implements Client at compile time.
var _ Client = (*OpenAIClient)(nil)
