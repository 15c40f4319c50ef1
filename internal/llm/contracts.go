package llm

import "context"

// ChatCompleter is the narrow LLM contract the parser depends on: a single
// system+user exchange returning one non-streamed completion.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
}
