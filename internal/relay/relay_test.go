package relay

import (
	"context"
	"sync"

	errors "github.com/Laisky/errors/v2"

	"github.com/UB-Mannheim/maidisco/library/llm"
)

// scriptedCompleter replays canned completions in order and records every request.
type scriptedCompleter struct {
	mu      sync.Mutex
	replies []reply
	calls   []llm.ChatRequest
}

type reply struct {
	text string
	err  error
}

func newScripted(replies ...reply) *scriptedCompleter {
	return &scriptedCompleter{replies: replies}
}

func (c *scriptedCompleter) Complete(_ context.Context, req llm.ChatRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, req)
	if len(c.replies) == 0 {
		return "", errors.New("no scripted reply left")
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	return r.text, r.err
}

func (c *scriptedCompleter) Calls() []llm.ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]llm.ChatRequest(nil), c.calls...)
}
