package chat

import "context"

// Responder produces the assistant reply for a user message.
type Responder interface {
	Reply(ctx context.Context, text string) (string, error)
}

const echoPrefix = "You said: "

// Echo answers every message by repeating it back verbatim.
type Echo struct{}

func (Echo) Reply(_ context.Context, text string) (string, error) {
	return echoPrefix + text, nil
}
