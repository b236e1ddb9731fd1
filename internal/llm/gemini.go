package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/raysh454/web2api/internal/logging"
	"github.com/raysh454/web2api/internal/synth"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// Gemini generates through the Gemini API.
type Gemini struct {
	client *genai.Client
	cfg    Config
	model  string
	logger logging.Logger
}

func newGemini(ctx context.Context, cfg Config, logger logging.Logger) (synth.Generator, error) {
	key := apiKey(cfg, "GEMINI_API_KEY", "GOOGLE_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("gemini: set GEMINI_API_KEY: %w", ErrMissingCredentials)
	}
	cc := &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Gemini{
		client: client,
		cfg:    cfg,
		model:  cfg.ModelOr(defaultGeminiModel),
		logger: logging.OrNop(logger),
	}, nil
}

func (g *Gemini) Generate(ctx context.Context, req synth.Request) (string, error) {
	gc := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.Prompt.System, genai.RoleUser),
		Temperature:       genai.Ptr(float32(g.cfg.Temperature)),
	}
	if g.cfg.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(g.cfg.MaxTokens)
	}
	if g.cfg.Seed != 0 {
		gc.Seed = genai.Ptr(int32(g.cfg.Seed))
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt.User), gc)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}

	g.logger.Debug("generation finished",
		logging.Field{Key: "model", Value: g.model},
		logging.Field{Key: "index", Value: req.Index},
		logging.Field{Key: "chars", Value: len(text)},
		logging.Field{Key: "took", Value: time.Since(start).String()})
	return text, nil
}
