package generator

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultOpenAIURL is used when no base URL is configured
const DefaultOpenAIURL = "https://api.openai.com/v1"

// OpenAI works with any OpenAI-compatible chat completion API
type OpenAI struct {
	client *openai.Client
	cfg    Config
}

// NewOpenAI creates an OpenAI-compatible provider
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenAIURL
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	opts := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	client := openai.NewClient(opts...)
	return &OpenAI{client: &client, cfg: cfg}, nil
}

func (o *OpenAI) Name() string {
	return ProviderOpenAI
}

func (o *OpenAI) Generate(ctx context.Context, source string) (string, error) {
	if err := validateInput(source, ""); err != nil {
		return "", err
	}
	return o.complete(ctx, SuiteInstruction, suitePrompt(source))
}

func (o *OpenAI) GenerateWithInstruction(ctx context.Context, source, instruction string) (string, error) {
	if err := validateInput(source, instruction); err != nil {
		return "", err
	}
	return o.complete(ctx, CaseInstruction, casePrompt(source, instruction))
}

func (o *OpenAI) complete(ctx context.Context, system, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: o.cfg.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(o.cfg.Temperature),
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", ErrEmptyOutput
	}
	return CleanOutput(completion.Choices[0].Message.Content), nil
}
