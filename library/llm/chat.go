// Package llm wraps chat-completion providers behind one small interface.
package llm

import (
	"context"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4"
	// DefaultAnthropicModel replaces DefaultModel for the anthropic provider.
	DefaultAnthropicModel = "claude-3-5-haiku-latest"

	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Role tags a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged chat message.
type Message struct {
	Role    Role
	Content string
}

// ChatRequest describes one chat-completion call.
type ChatRequest struct {
	// Model overrides the provider's configured model when set.
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	// Timeout bounds this call only, 0 keeps the client default.
	Timeout time.Duration
}

// Completer returns a single text completion for a chat request.
type Completer interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// Config configures a provider.
type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
}

// New builds the provider named by cfg.Provider.
func New(cfg Config) (Completer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOpenAI, "":
		return NewOpenAI(cfg)
	case ProviderAnthropic:
		return NewAnthropic(cfg)
	default:
		return nil, errors.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

// validate checks the provider-independent parts of a request.
func (r ChatRequest) validate() error {
	if len(r.Messages) == 0 {
		return errors.New("missing messages")
	}
	for i, m := range r.Messages {
		switch m.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		default:
			return errors.Errorf("message %d has unknown role %q", i, m.Role)
		}
	}
	if strings.TrimSpace(r.Messages[len(r.Messages)-1].Content) == "" {
		return errors.New("missing input")
	}
	if r.Temperature < 0 {
		return errors.Errorf("invalid temperature %v", r.Temperature)
	}
	return nil
}

// DefaultModelFor returns the model used by provider when none is configured.
func DefaultModelFor(provider string) string {
	if strings.EqualFold(strings.TrimSpace(provider), ProviderAnthropic) {
		return DefaultAnthropicModel
	}
	return DefaultModel
}

func pickModel(requested, configured string) string {
	if m := strings.TrimSpace(requested); m != "" {
		return m
	}
	if m := strings.TrimSpace(configured); m != "" {
		return m
	}
	return DefaultModel
}
