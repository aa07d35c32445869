package voice

import (
	"context"
	"errors"
	"net"

	"grant-assistant-be/pkg/llm"
)

// LLMCompleter adapts an llm.LLMProvider to the Completer contract.
type LLMCompleter struct {
	provider llm.LLMProvider
	options  []llm.Option
}

func NewLLMCompleter(provider llm.LLMProvider, options ...llm.Option) *LLMCompleter {
	return &LLMCompleter{provider: provider, options: options}
}

func (c *LLMCompleter) Complete(ctx context.Context, history []llm.Message) (string, error) {
	reply, err := c.provider.Chat(ctx, history, c.options...)
	if err == nil {
		return reply, nil
	}

	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		return "", &UpstreamError{Service: "chat completion", StatusCode: statusErr.StatusCode, Body: statusErr.Body}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && !errors.Is(err, context.DeadlineExceeded) {
		return "", &NetworkError{Err: err}
	}
	return "", err
}
