package llm

import (
	"context"
	"strings"

	errors "github.com/Laisky/errors/v2"
	"github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

// defaultAnthropicMaxTokens is required by the messages API when the caller sets none.
const defaultAnthropicMaxTokens = 1024

// Anthropic talks to the Anthropic messages API.
type Anthropic struct {
	client anthropic.Client
	model  string
}

// NewAnthropic creates an Anthropic provider with retries disabled.
func NewAnthropic(cfg Config) (*Anthropic, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("missing api key")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("model is required for anthropic")
	}

	opts := []anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		anthropicopt.WithMaxRetries(0),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, anthropicopt.WithBaseURL(baseURL))
	}

	return &Anthropic{
		client: anthropic.NewClient(opts...),
		model:  strings.TrimSpace(cfg.Model),
	}, nil
}

// Complete sends one messages request and concatenates the text blocks.
func (p *Anthropic) Complete(ctx context.Context, req ChatRequest) (string, error) {
	if p == nil {
		return "", errors.New("anthropic provider is nil")
	}
	if err := req.validate(); err != nil {
		return "", err
	}

	var system []anthropic.TextBlockParam
	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	model := p.model
	if m := strings.TrimSpace(req.Model); m != "" {
		model = m
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   maxTokens,
		Messages:    messages,
		Temperature: anthropic.Float(req.Temperature),
	}
	if len(system) > 0 {
		params.System = system
	}

	var reqOpts []anthropicopt.RequestOption
	if req.Timeout > 0 {
		reqOpts = append(reqOpts, anthropicopt.WithRequestTimeout(req.Timeout))
	}

	resp, err := p.client.Messages.New(ctx, params, reqOpts...)
	if err != nil {
		return "", errors.Wrap(err, "anthropic messages")
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.New("anthropic response has no text")
	}
	return text, nil
}
