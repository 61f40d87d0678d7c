package model

// Role represents the role of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Turn is one element of the ordered conversation history submitted by the
// caller. Turns are ephemeral; the service never persists them.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// FileDescriptor identifies an uploaded attachment by MIME type and storage
// path. The file itself lives outside the service.
type FileDescriptor struct {
	MIMEType string `json:"mime_type"`
	Path     string `json:"path"`
}

// ChatRequest is the inbound payload for a chat exchange.
type ChatRequest struct {
	PropertyID string          `json:"property_id"`
	Messages   []Turn          `json:"messages"`
	File       *FileDescriptor `json:"file,omitempty"`
}

// Usage holds token accounting for one chat exchange.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is returned to the caller after the exchange completes. The
// message may be empty when the function-call ceiling cut the loop short.
type ChatResponse struct {
	Message       string `json:"message"`
	Usage         Usage  `json:"usage"`
	FunctionCalls int    `json:"function_calls"`
}
