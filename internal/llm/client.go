// Package llm provides LLM client interfaces and implementations.
package llm

import (
	"context"
	"fmt"
)

// Message represents a chat message for the model. Parts, when set, replaces
// Content with multi-part content (text plus image references).
type Message struct {
	Role       string
	Content    string
	Parts      []ContentPart
	ToolCalls  []ToolCall
	ToolCallID string
}

// ContentPart is one element of a multi-part message.
type ContentPart struct {
	Type     string // "text" or "image_url"
	Text     string
	ImageURL string
}

// ToolCall is a function-call request emitted by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Tool declares a callable operation exposed to the model. Parameters is a
// JSON-schema object; it is the serialization boundary only.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// CompletionRequest represents a completion request.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Tools       []Tool
	MaxTokens   int
	Temperature float64
}

// CompletionResponse represents a completion response. ToolCalls is non-empty
// when the model requested a function call instead of answering.
type CompletionResponse struct {
	Content      string
	ToolCalls    []ToolCall
	Model        string
	TokensIn     int
	TokensOut    int
	FinishReason string
	LatencyMs    int64
}

// Client is the interface for LLM providers.
type Client interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string
}

// ProviderError tags any failure of the model call itself (network, auth,
// malformed response). It aborts the whole request; it is never retried.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
