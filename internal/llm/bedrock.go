package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/raysh454/web2api/internal/logging"
	"github.com/raysh454/web2api/internal/synth"
)

const defaultBedrockModel = "anthropic.claude-3-5-haiku-20241022-v1:0"

// Bedrock generates through the Bedrock Converse API with the default AWS
// credential chain.
type Bedrock struct {
	client *bedrockruntime.Client
	cfg    Config
	model  string
	logger logging.Logger
}

func newBedrock(ctx context.Context, cfg Config, logger logging.Logger) (synth.Generator, error) {
	region := cfg.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("bedrock: load aws config: %w", err)
	}
	if cfg.MaxRetries > 0 {
		awsCfg.RetryMaxAttempts = cfg.MaxRetries + 1
	}

	credCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := awsCfg.Credentials.Retrieve(credCtx); err != nil {
		return nil, fmt.Errorf("bedrock: %v: %w", err, ErrMissingCredentials)
	}

	client := bedrockruntime.NewFromConfig(awsCfg, func(o *bedrockruntime.Options) {
		if cfg.BaseURL != "" {
			o.BaseEndpoint = aws.String(cfg.BaseURL)
		}
	})
	return &Bedrock{
		client: client,
		cfg:    cfg,
		model:  cfg.ModelOr(defaultBedrockModel),
		logger: logging.OrNop(logger),
	}, nil
}

func (b *Bedrock) Generate(ctx context.Context, req synth.Request) (string, error) {
	if b.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.Timeout)
		defer cancel()
	}

	temperature := float32(b.cfg.Temperature)
	inference := &types.InferenceConfiguration{Temperature: &temperature}
	if b.cfg.MaxTokens > 0 {
		inference.MaxTokens = aws.Int32(int32(b.cfg.MaxTokens))
	}

	start := time.Now()
	out, err := b.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(b.model),
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: req.Prompt.User}},
		}},
		System:          []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: req.Prompt.System}},
		InferenceConfig: inference,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock converse: %w", err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", ErrEmptyResponse
	}
	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if t, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(t.Value)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}

	b.logger.Debug("generation finished",
		logging.Field{Key: "model", Value: b.model},
		logging.Field{Key: "index", Value: req.Index},
		logging.Field{Key: "chars", Value: sb.Len()},
		logging.Field{Key: "took", Value: time.Since(start).String()})
	return sb.String(), nil
}
