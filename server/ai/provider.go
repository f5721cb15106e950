package ai

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/curiocodex/curiocodex/internal/profile"
)

// Enricher is the AI gateway capability consumed by the collection
// service: text in, category/tags/embedding out. The backing model is a
// black box behind this interface.
type Enricher interface {
	// Embed generates an embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Categorize derives a category for a record from its name and
	// description, always one of Categories.
	Categorize(ctx context.Context, name, description string) (string, error)

	// ExtractTags derives up to MaxTags short tags. The result may be
	// empty but is never nil.
	ExtractTags(ctx context.Context, name, description string) ([]string, error)
}

// MaxTags bounds the tag set stored per record.
const MaxTags = 5

// Config holds the AI provider configuration.
type Config struct {
	BaseURL        string
	APIKey         string
	EmbeddingModel string
	ChatModel      string
	MaxRetries     int
	Timeout        time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "https://api.openai.com/v1",
		APIKey:         "",
		EmbeddingModel: "text-embedding-3-small",
		ChatModel:      "gpt-4o-mini",
		MaxRetries:     3,
		Timeout:        30 * time.Second,
	}
}

// ConfigFromProfile builds the provider configuration from the server profile.
func ConfigFromProfile(p *profile.Profile) *Config {
	cfg := DefaultConfig()
	if p.AIBaseURL != "" {
		cfg.BaseURL = p.AIBaseURL
	}
	cfg.APIKey = p.AIAPIKey
	if p.AIEmbeddingModel != "" {
		cfg.EmbeddingModel = p.AIEmbeddingModel
	}
	if p.AIChatModel != "" {
		cfg.ChatModel = p.AIChatModel
	}
	return cfg
}

// Provider provides AI capabilities backed by an OpenAI-compatible API.
type Provider struct {
	client *openai.Client
	config *Config
}

// NewProvider creates a new AI provider.
func NewProvider(cfg *Config) (*Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o-mini"
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Provider{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}, nil
}

// Embed generates an embedding vector for the given text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	var result []float32
	err := p.doWithRetry(ctx, func() error {
		resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(p.config.EmbeddingModel),
		})
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 {
			return fmt.Errorf("empty embedding response")
		}
		result = resp.Data[0].Embedding
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	return result, nil
}

// Categorize derives a category from name and description.
func (p *Provider) Categorize(ctx context.Context, name, description string) (string, error) {
	prompt := categorizePrompt(name, description)

	raw, err := p.chat(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to categorize: %w", err)
	}
	return NormalizeCategory(raw), nil
}

// ExtractTags derives up to MaxTags tags from name and description.
func (p *Provider) ExtractTags(ctx context.Context, name, description string) ([]string, error) {
	prompt := extractTagsPrompt(name, description)

	raw, err := p.chat(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to extract tags: %w", err)
	}
	return ParseTags(raw), nil
}

func (p *Provider) chat(ctx context.Context, prompt string) (string, error) {
	var result string
	err := p.doWithRetry(ctx, func() error {
		resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: p.config.ChatModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty chat response")
		}
		result = resp.Choices[0].Message.Content
		return nil
	})
	return result, err
}

// Validate validates the provider configuration by testing API connectivity.
func (p *Provider) Validate(ctx context.Context) error {
	if p.config.APIKey == "" {
		return fmt.Errorf("API key is required, set CURIOCODEX_AI_API_KEY environment variable")
	}

	if _, err := p.Embed(ctx, "test"); err != nil {
		return fmt.Errorf("embedding validation failed: %w", err)
	}

	slog.Info("AI provider validated successfully",
		"embedding_model", p.config.EmbeddingModel,
		"chat_model", p.config.ChatModel)

	return nil
}

// doWithRetry executes a function with exponential backoff retry.
func (p *Provider) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < p.config.MaxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if attempt < p.config.MaxRetries-1 {
				waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				slog.Debug("AI request failed, retrying",
					"attempt", attempt+1,
					"wait_time", waitTime,
					"error", err)
				select {
				case <-time.After(waitTime):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return lastErr
}

// Ensure Provider implements Enricher
var _ Enricher = (*Provider)(nil)
