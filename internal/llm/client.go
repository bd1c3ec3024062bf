package llm

import "context"

type Message struct {
	Role    string
	Content string
}

// Options tune a single completion. Zero values fall back to the
// provider defaults.
type Options struct {
	Temperature float32
	MaxTokens   int
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Client interface {
	Generate(ctx context.Context, messages []Message, opts Options) (Response, error)
}
