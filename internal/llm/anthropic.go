package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/raysh454/web2api/internal/logging"
	"github.com/raysh454/web2api/internal/synth"
)

const defaultAnthropicModel = "claude-sonnet-4-5"

// Anthropic generates through the Messages API.
type Anthropic struct {
	client anthropic.Client
	cfg    Config
	model  string
	logger logging.Logger
}

func newAnthropic(_ context.Context, cfg Config, logger logging.Logger) (synth.Generator, error) {
	key := apiKey(cfg, "ANTHROPIC_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("anthropic: set ANTHROPIC_API_KEY: %w", ErrMissingCredentials)
	}
	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Anthropic{
		client: anthropic.NewClient(opts...),
		cfg:    cfg,
		model:  cfg.ModelOr(defaultAnthropicModel),
		logger: logging.OrNop(logger),
	}, nil
}

func (a *Anthropic) Generate(ctx context.Context, req synth.Request) (string, error) {
	maxTokens := int64(a.cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = int64(DefaultConfig().MaxTokens)
	}
	params := anthropic.MessageNewParams{
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt.User)),
		},
		Model:       anthropic.Model(a.model),
		System:      []anthropic.TextBlockParam{{Text: req.Prompt.System}},
		Temperature: anthropic.Float(a.cfg.Temperature),
	}

	start := time.Now()
	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}

	a.logger.Debug("generation finished",
		logging.Field{Key: "model", Value: a.model},
		logging.Field{Key: "index", Value: req.Index},
		logging.Field{Key: "chars", Value: sb.Len()},
		logging.Field{Key: "took", Value: time.Since(start).String()})
	return sb.String(), nil
}
