package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewSelectsProvider(t *testing.T) {
	t.Parallel()

	c, err := New(Config{APIKey: "sk-test"})
	require.NoError(t, err)
	require.IsType(t, &OpenAI{}, c)

	c, err = New(Config{Provider: "Anthropic", APIKey: "sk-test", Model: "claude-test"})
	require.NoError(t, err)
	require.IsType(t, &Anthropic{}, c)

	_, err = New(Config{Provider: "gemini", APIKey: "sk-test"})
	require.ErrorContains(t, err, "unsupported llm provider")

	_, err = New(Config{Provider: "openai"})
	require.ErrorContains(t, err, "missing api key")

	_, err = New(Config{Provider: "anthropic", APIKey: "sk-test"})
	require.ErrorContains(t, err, "model is required")
}

func TestChatRequestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		req  ChatRequest
		want string
	}{
		{name: "no messages", req: ChatRequest{}, want: "missing messages"},
		{name: "unknown role", req: ChatRequest{Messages: []Message{{Role: "tool", Content: "x"}}}, want: "unknown role"},
		{name: "blank input", req: ChatRequest{Messages: []Message{{Role: RoleUser, Content: "  "}}}, want: "missing input"},
		{name: "negative temperature", req: ChatRequest{Messages: []Message{{Role: RoleUser, Content: "x"}}, Temperature: -1}, want: "invalid temperature"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorContains(t, tc.req.validate(), tc.want)
		})
	}

	require.NoError(t, ChatRequest{Messages: []Message{{Role: RoleSystem, Content: "s"}, {Role: RoleUser, Content: "u"}}}.validate())
}

func TestPickModel(t *testing.T) {
	t.Parallel()

	require.Equal(t, "a", pickModel(" a ", "b"))
	require.Equal(t, "b", pickModel("", "b"))
	require.Equal(t, DefaultModel, pickModel("", ""))
}

func TestDefaultModelFor(t *testing.T) {
	t.Parallel()

	require.Equal(t, DefaultModel, DefaultModelFor(""))
	require.Equal(t, DefaultModel, DefaultModelFor(ProviderOpenAI))
	require.Equal(t, DefaultAnthropicModel, DefaultModelFor(" Anthropic "))
}

// TestOpenAIComplete verifies the request shape and that the first choice is returned.
func TestOpenAIComplete(t *testing.T) {
	t.Parallel()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "gpt-test", payload["model"])
		require.EqualValues(t, 0, payload["temperature"])
		require.EqualValues(t, 400, payload["max_tokens"])

		messages, ok := payload["messages"].([]any)
		require.True(t, ok)
		require.Len(t, messages, 2)
		first := messages[0].(map[string]any)
		require.Equal(t, "system", first["role"])
		second := messages[1].(map[string]any)
		require.Equal(t, "user", second["role"])
		require.Equal(t, "find books", second["content"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-test",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  {\"q\":\"books\"}\n"}}]}`))
	}))
	defer server.Close()

	p, err := NewOpenAI(Config{APIKey: "sk-test", BaseURL: server.URL + "/v1/", Model: "gpt-test"})
	require.NoError(t, err)

	text, err := p.Complete(context.Background(), ChatRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "translate"},
			{Role: RoleUser, Content: "find books"},
		},
		MaxTokens: 400,
		Timeout:   2 * time.Second,
	})
	require.NoError(t, err)
	require.Equal(t, `{"q":"books"}`, text)
	require.Equal(t, 1, calls)
}

// TestOpenAICompleteNoRetry verifies a failing upstream is called exactly once.
func TestOpenAICompleteNoRetry(t *testing.T) {
	t.Parallel()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	p, err := NewOpenAI(Config{APIKey: "sk-test", BaseURL: server.URL + "/v1/"})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})
	require.ErrorContains(t, err, "openai chat completion")
	require.Equal(t, 1, calls)
}

func TestOpenAICompleteNoChoices(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4","choices":[]}`))
	}))
	defer server.Close()

	p, err := NewOpenAI(Config{APIKey: "sk-test", BaseURL: server.URL + "/v1/"})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})
	require.ErrorContains(t, err, "no choices")
}

// TestAnthropicComplete verifies system prompts move to the system field and text blocks are joined.
func TestAnthropicComplete(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.Equal(t, "sk-ant", r.Header.Get("X-Api-Key"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "claude-test", payload["model"])
		require.EqualValues(t, defaultAnthropicMaxTokens, payload["max_tokens"])
		require.NotEmpty(t, payload["system"])

		messages, ok := payload["messages"].([]any)
		require.True(t, ok)
		require.Len(t, messages, 1)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-test",
			"content":[{"type":"text","text":"Three "},{"type":"text","text":"sentences."}],
			"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":2}}`))
	}))
	defer server.Close()

	p, err := NewAnthropic(Config{APIKey: "sk-ant", BaseURL: server.URL, Model: "claude-test"})
	require.NoError(t, err)

	text, err := p.Complete(context.Background(), ChatRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "summarize"},
			{Role: RoleUser, Content: "records"},
		},
		Temperature: 0.2,
	})
	require.NoError(t, err)
	require.Equal(t, "Three sentences.", text)
}
