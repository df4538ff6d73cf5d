package ai

// Embedding is the result of one embedding call.
type Embedding struct {
	Vector []float32
	// Tokens is the size of the embedded text in model tokens.
	Tokens int
}

// Completion is the result of one chat completion call.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// TotalTokens is the sum of prompt and completion tokens.
func (c Completion) TotalTokens() int {
	return c.PromptTokens + c.CompletionTokens
}
