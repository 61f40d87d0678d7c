package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Part types for multi-part message content.
const (
	PartTypeText     = "text"
	PartTypeImageURL = "image_url"
)

// OpenAIClient is the OpenAI LLM client.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	return &OpenAIClient{
		client: openai.NewClient(apiKey),
	}, nil
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string {
	return "openai"
}

// Complete sends a completion request. Tool choice is automatic whenever
// tools are supplied.
func (c *OpenAIClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = "gpt-4o"
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    convertMessages(req.Messages),
		MaxTokens:   maxTokens,
		Temperature: float32(req.Temperature),
	}

	if len(req.Tools) > 0 {
		chatReq.Tools = convertTools(req.Tools)
		chatReq.ToolChoice = "auto"
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, &ProviderError{Provider: "openai", Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Provider: "openai", Err: errors.New("empty choices in response")}
	}

	choice := resp.Choices[0]

	return &CompletionResponse{
		Content:      choice.Message.Content,
		ToolCalls:    convertToolCalls(choice.Message.ToolCalls),
		Model:        resp.Model,
		TokensIn:     resp.Usage.PromptTokens,
		TokensOut:    resp.Usage.CompletionTokens,
		FinishReason: string(choice.FinishReason),
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}

func convertMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		m := openai.ChatCompletionMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
		}

		if len(msg.Parts) > 0 {
			m.Content = ""
			m.MultiContent = make([]openai.ChatMessagePart, 0, len(msg.Parts))
			for _, part := range msg.Parts {
				switch part.Type {
				case PartTypeImageURL:
					m.MultiContent = append(m.MultiContent, openai.ChatMessagePart{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    part.ImageURL,
							Detail: openai.ImageURLDetailAuto,
						},
					})
				default:
					m.MultiContent = append(m.MultiContent, openai.ChatMessagePart{
						Type: openai.ChatMessagePartTypeText,
						Text: part.Text,
					})
				}
			}
		}

		if len(msg.ToolCalls) > 0 {
			m.ToolCalls = make([]openai.ToolCall, len(msg.ToolCalls))
			for j, call := range msg.ToolCalls {
				m.ToolCalls[j] = openai.ToolCall{
					ID:   call.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      call.Name,
						Arguments: call.Arguments,
					},
				}
			}
		}

		out[i] = m
	}
	return out
}

func convertTools(tools []Tool) []openai.Tool {
	out := make([]openai.Tool, len(tools))
	for i, t := range tools {
		out[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return out
}

func convertToolCalls(calls []openai.ToolCall) []ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]ToolCall, len(calls))
	for i, call := range calls {
		out[i] = ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		}
	}
	return out
}
