// Package openai provides a thin wrapper around the official OpenAI Go SDK
// for embeddings and chat completions.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
)

var (
	// ErrEmptyInput is returned when CreateEmbedding or Complete is called with empty input.
	ErrEmptyInput = errors.New("openai: input text is empty")
	// ErrInvalidDims is returned when dimensions is not positive.
	ErrInvalidDims = errors.New("openai: embedding dimensions must be positive")
	// ErrNoEmbeddingInResponse is returned when the API response contains no embedding data.
	ErrNoEmbeddingInResponse = errors.New("openai: no embedding in response")
	// ErrDimensionMismatch is returned when the response embedding length does not match configured dimensions.
	ErrDimensionMismatch = errors.New("openai: embedding dimension mismatch")
	// ErrNoCompletionInResponse is returned when the API response contains no choices.
	ErrNoCompletionInResponse = errors.New("openai: no completion in response")
)

const (
	defaultDimension      = 1536
	defaultRequestTimeout = 30 * time.Second
)

// Client calls the OpenAI embeddings and chat completions APIs via the official SDK.
// Every request carries a bounded timeout; no retries are built in, callers
// decide whether to skip a unit or abort a batch.
type Client struct {
	sdk             openaisdk.Client
	embeddingModel  openaisdk.EmbeddingModel
	completionModel openaisdk.ChatModel
	dimensions      int
}

// ClientOption configures the Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	embeddingModel  openaisdk.EmbeddingModel
	completionModel openaisdk.ChatModel
	dimensions      int
	timeout         time.Duration
}

// WithEmbeddingModel sets the embedding model name.
func WithEmbeddingModel(model string) ClientOption {
	return func(c *clientConfig) {
		if model != "" {
			c.embeddingModel = openaisdk.EmbeddingModel(model)
		}
	}
}

// WithCompletionModel sets the chat completion model name.
func WithCompletionModel(model string) ClientOption {
	return func(c *clientConfig) {
		if model != "" {
			c.completionModel = openaisdk.ChatModel(model)
		}
	}
}

// WithDimensions sets the requested embedding dimension (must match the DB column).
func WithDimensions(dim int) ClientOption {
	return func(c *clientConfig) {
		c.dimensions = dim
	}
}

// WithRequestTimeout bounds each outbound API call.
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(c *clientConfig) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewClient creates an OpenAI client using the official SDK.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	cfg := clientConfig{
		embeddingModel:  openaisdk.EmbeddingModelTextEmbedding3Small,
		completionModel: openaisdk.ChatModelGPT4oMini,
		dimensions:      defaultDimension,
		timeout:         defaultRequestTimeout,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &Client{
		sdk: openaisdk.NewClient(
			option.WithAPIKey(apiKey),
			option.WithRequestTimeout(cfg.timeout),
		),
		embeddingModel:  cfg.embeddingModel,
		completionModel: cfg.completionModel,
		dimensions:      cfg.dimensions,
	}
}

// CreateEmbedding returns the embedding vector for the given text.
// The returned slice length equals the configured dimensions.
func (c *Client) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	if c.dimensions <= 0 {
		return nil, ErrInvalidDims
	}

	resp, err := c.sdk.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfString: param.NewOpt(input),
		},
		Model:      c.embeddingModel,
		Dimensions: param.NewOpt(int64(c.dimensions)),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, ErrNoEmbeddingInResponse
	}

	emb := resp.Data[0].Embedding
	if len(emb) != c.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(emb), c.dimensions)
	}

	out := make([]float32, len(emb))
	for i := range emb {
		out[i] = float32(emb[i])
	}

	return out, nil
}

// Complete sends a single-turn prompt to the chat completions API and returns the reply text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyInput
	}

	resp, err := c.sdk.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(prompt),
		},
		Model: c.completionModel,
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoCompletionInResponse
	}

	return resp.Choices[0].Message.Content, nil
}
