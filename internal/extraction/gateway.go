package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/example/bomflow/internal/config"
	"github.com/example/bomflow/pkg/formatting"
)

type gateway struct {
	llm         llms.Model
	logger      *slog.Logger
	timeout     time.Duration
	maxAttempts int
}

// NewGateway creates a Capability backed by an OpenAI-compatible gateway.
func NewGateway(cfg *config.ExtractorConfig, logger *slog.Logger) (Capability, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create extraction model: %w", err)
	}

	return &gateway{
		llm:         model,
		logger:      logger.With("system", "extraction"),
		timeout:     cfg.TimeoutDuration(),
		maxAttempts: cfg.MaxAttempts,
	}, nil
}

func (g *gateway) Extract(ctx context.Context, input Input) ([]Item, error) {
	userPrompt := buildUserPrompt(input)

	var lastErr error
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Second << (attempt - 1)
			g.logger.Warn(
				"extraction attempt failed, retrying",
				"attempt", attempt,
				"backoff", backoff,
				"error", lastErr,
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
			}
		}

		items, err := g.call(ctx, userPrompt)
		if err == nil {
			return items, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrUnavailable, lastErr)
}

func (g *gateway) call(ctx context.Context, userPrompt string) ([]Item, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	response, err := g.llm.GenerateContent(callCtx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("%w: no response choices", ErrMalformedResponse)
	}

	return DecodeItems(response.Choices[0].Content)
}

type itemsResponse struct {
	Items []Item `json:"items"`
}

// DecodeItems parses gateway response content into items, accepting either
// raw JSON or JSON inside a markdown code fence. Labels are clamped to the
// 1-5 range (unknown values become 5) and scores to [0, 1].
func DecodeItems(content string) ([]Item, error) {
	parsed, err := formatting.Parse[itemsResponse](content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	items := parsed.Items
	for i := range items {
		if items[i].Label < 1 || items[i].Label > 5 {
			items[i].Label = 5
		}
		if items[i].Score < 0 {
			items[i].Score = 0
		}
		if items[i].Score > 1 {
			items[i].Score = 1
		}
	}
	return items, nil
}
