// ABOUTME: OpenAI-compatible client for chat completions and embeddings
// ABOUTME: Works against OpenAI or Groq (or any compatible endpoint) through BaseURL, with retry
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harper/wodsmith/internal/models"
	"github.com/harper/wodsmith/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultChatModel is the default model for chat completions
	DefaultChatModel = "gpt-4o-mini"
	// DefaultEmbeddingModel is the default model for embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
)

// ErrEmptyCompletion is returned when the API answers without any choice content
var ErrEmptyCompletion = errors.New("no completion choices returned")

// CompletionRequest is a single chat completion call
type CompletionRequest struct {
	System      string
	Messages    []models.Message
	MaxTokens   int
	Temperature float32
}

// Completer turns a prompt into raw completion text
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ClientConfig holds configuration for the OpenAI-compatible client
type ClientConfig struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel openai.EmbeddingModel
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:         apiKey,
		ChatModel:      DefaultChatModel,
		EmbeddingModel: DefaultEmbeddingModel,
		Timeout:        60 * time.Second,
		MaxRetries:     0,
		RetryDelay:     2 * time.Second,
	}
}

// OpenAIClient wraps the go-openai client with timeout and retry
type OpenAIClient struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	timeout        time.Duration
	maxRetries     int
	retryDelay     time.Duration
}

// NewOpenAIClient creates a new client with the given API key using default configuration
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	return NewOpenAIClientWithConfig(DefaultConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a new client with custom configuration
func NewOpenAIClientWithConfig(config *ClientConfig) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("LLM API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	chatModel := config.ChatModel
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	embeddingModel := config.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &OpenAIClient{
		client:         openai.NewClientWithConfig(clientConfig),
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		timeout:        timeout,
		maxRetries:     config.MaxRetries,
		retryDelay:     config.RetryDelay,
	}, nil
}

// ChatModel returns the configured chat model name
func (c *OpenAIClient) ChatModel() string {
	return c.chatModel
}

// Complete sends the system prompt, history and user turns and returns the first choice text
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    chatRole(m.Role),
			Content: m.Content,
		})
	}

	var content string
	err := util.Retry(ctx, c.maxRetries, c.retryDelay, func(int) error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model:       c.chatModel,
			Messages:    messages,
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			return ErrEmptyCompletion
		}

		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	return content, nil
}

// Embed generates one embedding per input text, in order
func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts provided for embedding")
	}

	var vectors [][]float64
	err := util.Retry(ctx, c.maxRetries, c.retryDelay, func(int) error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateEmbeddings(callCtx, openai.EmbeddingRequestStrings{
			Input: texts,
			Model: c.embeddingModel,
		})
		if err != nil {
			return err
		}
		if len(resp.Data) != len(texts) {
			return fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
		}

		vectors = make([][]float64, len(resp.Data))
		for _, d := range resp.Data {
			if d.Index < 0 || d.Index >= len(vectors) {
				return fmt.Errorf("embedding index %d out of range", d.Index)
			}
			// Convert []float32 to []float64
			v := make([]float64, len(d.Embedding))
			for i, f := range d.Embedding {
				v[i] = float64(f)
			}
			vectors[d.Index] = v
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings: %w", err)
	}
	return vectors, nil
}

// EmbeddingModel returns the configured embedding model name
func (c *OpenAIClient) EmbeddingModel() string {
	return string(c.embeddingModel)
}

func chatRole(role string) string {
	switch role {
	case models.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	case models.RoleSystem:
		return openai.ChatMessageRoleSystem
	}
	return openai.ChatMessageRoleUser
}
