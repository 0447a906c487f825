package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	"github.com/fieldline/fieldline/internal/config"
)

// ErrMissingAPIKey means no AI provider credential is configured. The
// advisory services fall back to deterministic output in that case.
var ErrMissingAPIKey = errors.New("missing_ai_api_key")

const (
	defaultModel       = "gpt-4o-mini"
	openRouterBaseURL  = "https://openrouter.ai/api/v1"
	defaultTemperature = 0.2
	defaultMaxTokens   = 2048
)

type CompletionRequest struct {
	System string
	User   string
}

// Client is the minimal LLM surface the advisory services need.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type openAIClient struct {
	client openai.Client
	model  string
}

// NewClient builds the LLM client. OpenRouter credentials win over
// OpenAI ones so self-hosters can pick models freely.
func NewClient(cfg config.Config) (Client, error) {
	model := strings.TrimSpace(cfg.AIModel)
	if model == "" {
		model = defaultModel
	}

	switch {
	case strings.TrimSpace(cfg.OpenRouterAPIKey) != "":
		return &openAIClient{
			client: openai.NewClient(
				option.WithAPIKey(cfg.OpenRouterAPIKey),
				option.WithBaseURL(openRouterBaseURL),
			),
			model: model,
		}, nil
	case strings.TrimSpace(cfg.OpenAIAPIKey) != "":
		return &openAIClient{
			client: openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey)),
			model:  model,
		}, nil
	default:
		return nil, ErrMissingAPIKey
	}
}

func (c *openAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		Temperature: param.NewOpt(defaultTemperature),
		MaxTokens:   param.NewOpt[int64](defaultMaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}
