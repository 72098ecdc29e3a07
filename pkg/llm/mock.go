package llm

import (
	"context"
)

// MockClient is a configurable mock for testing completion consumers.
// Set the function field to control behavior in tests.
type MockClient struct {
	// CompleteFunc is called when Complete is invoked.
	// If nil, returns an empty result and nil error.
	CompleteFunc func(ctx context.Context, task TaskType, systemMessage string, prompt string) (*CompletionResult, error)

	// ModelName is returned by Model for every task. Defaults to "mock-model".
	ModelName string

	// Call tracking for verification
	CompleteCalls []MockCompleteCall
}

// MockCompleteCall records a call to Complete.
type MockCompleteCall struct {
	Task          TaskType
	SystemMessage string
	Prompt        string
}

// NewMockClient creates a new mock with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		ModelName: "mock-model",
	}
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, task TaskType, systemMessage string, prompt string) (*CompletionResult, error) {
	m.CompleteCalls = append(m.CompleteCalls, MockCompleteCall{
		Task:          task,
		SystemMessage: systemMessage,
		Prompt:        prompt,
	})
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, task, systemMessage, prompt)
	}
	return &CompletionResult{Model: m.Model(task)}, nil
}

// Model implements Client.
func (m *MockClient) Model(task TaskType) string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

// Reset clears call tracking.
func (m *MockClient) Reset() {
	m.CompleteCalls = nil
}

// Ensure MockClient implements Client at compile time.
var _ Client = (*MockClient)(nil)
