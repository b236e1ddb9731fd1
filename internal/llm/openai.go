package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"github.com/raysh454/web2api/internal/logging"
	"github.com/raysh454/web2api/internal/synth"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAI generates through the Chat Completions API. Any compatible endpoint
// works through Config.BaseURL.
type OpenAI struct {
	client openai.Client
	cfg    Config
	model  string
	logger logging.Logger
}

func newOpenAI(_ context.Context, cfg Config, logger logging.Logger) (synth.Generator, error) {
	key := apiKey(cfg, "OPENAI_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("openai: set OPENAI_API_KEY: %w", ErrMissingCredentials)
	}
	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAI{
		client: openai.NewClient(opts...),
		cfg:    cfg,
		model:  cfg.ModelOr(defaultOpenAIModel),
		logger: logging.OrNop(logger),
	}, nil
}

func (o *OpenAI) Generate(ctx context.Context, req synth.Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.Prompt.System),
			openai.UserMessage(req.Prompt.User),
		},
		Model:       shared.ChatModel(o.model),
		Temperature: openai.Float(o.cfg.Temperature),
	}
	if o.cfg.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(o.cfg.MaxTokens))
	}
	if o.cfg.Seed != 0 {
		params.Seed = openai.Int(o.cfg.Seed)
	}

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}

	text := resp.Choices[0].Message.Content
	o.logger.Debug("generation finished",
		logging.Field{Key: "model", Value: o.model},
		logging.Field{Key: "index", Value: req.Index},
		logging.Field{Key: "chars", Value: len(text)},
		logging.Field{Key: "took", Value: time.Since(start).String()})
	return text, nil
}
