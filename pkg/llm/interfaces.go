// Package llm provides provider-backed completion clients for analysis tasks.
package llm

import (
	"context"
)

// CompletionResult holds the text and usage stats of a completion call.
type CompletionResult struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client defines the interface for completion operations.
// Each call makes exactly one provider attempt; retry policy belongs to the
// caller. Use this interface for dependency injection to enable mocking in
// tests.
type Client interface {
	// Complete runs a single completion for the given task. Token budget,
	// temperature and model come from the task table.
	Complete(ctx context.Context, task TaskType, systemMessage string, prompt string) (*CompletionResult, error)

	// Model returns the model name used for the given task.
	Model(task TaskType) string
}
