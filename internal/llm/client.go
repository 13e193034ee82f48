// Package llm wraps an OpenAI-compatible inference endpoint for text
// generation and embeddings. The default configuration targets a local
// Ollama server, which exposes the same /v1 API.
package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultTemperature matches the generation temperature used for
	// answer drafting and critique.
	DefaultTemperature = 0.75
)

var (
	// ErrEmptyPrompt is returned when the prompt is empty
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
	// ErrEmptyText is returned when text to embed is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when an embedding has unexpected dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoChoices is returned when the completion response is empty
	ErrNoChoices = errors.New("no completion choices returned")
)

// ChatAPI is the slice of the upstream client used for generation.
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// EmbeddingAPI is the slice of the upstream client used for embeddings.
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

type Config struct {
	BaseURL             string
	APIKey              string
	Model               string
	EmbeddingModel      string
	EmbeddingDimensions int
	Temperature         float32
}

// Client exposes Generate and Embed against a single inference endpoint.
type Client struct {
	chat       ChatAPI
	embeddings EmbeddingAPI
	cfg        Config
}

// NewClient creates a Client for the configured endpoint.
func NewClient(cfg Config) *Client {
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	api := openai.NewClientWithConfig(clientCfg)

	return &Client{
		chat:       api,
		embeddings: api,
		cfg:        cfg,
	}
}

// NewClientWithAPIs wires explicit API implementations; used by tests.
func NewClientWithAPIs(chat ChatAPI, embeddings EmbeddingAPI, cfg Config) *Client {
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	return &Client{chat: chat, embeddings: embeddings, cfg: cfg}
}

// Generate runs a single chat completion with the given system role
// instructions and user prompt, returning the generated text.
func (c *Client) Generate(ctx context.Context, instructions, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if instructions != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: instructions,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := c.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}

// GenerateEmbedding generates an embedding for the given text.
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	resp, err := c.embeddings.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.cfg.EmbeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	embedding := resp.Data[0].Embedding
	if c.cfg.EmbeddingDimensions > 0 && len(embedding) != c.cfg.EmbeddingDimensions {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrWrongDimensions, c.cfg.EmbeddingDimensions, len(embedding))
	}

	return embedding, nil
}
