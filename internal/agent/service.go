// Package agent drives the bounded function-calling exchange between the
// chat caller and the model.
package agent

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/venueworks/av-concierge/internal/attachment"
	"github.com/venueworks/av-concierge/internal/events"
	"github.com/venueworks/av-concierge/internal/llm"
	"github.com/venueworks/av-concierge/internal/model"
	"github.com/venueworks/av-concierge/internal/prompt"
	"github.com/venueworks/av-concierge/pkg/logger"
	"github.com/venueworks/av-concierge/pkg/metrics"
)

// Fixed analysis instructions appended when an attachment is injected into
// the conversation.
const (
	imageInstructions    = "Analyze the attached image in the context of this AV consultation. Identify any equipment, room layout, or staging details relevant to the request."
	documentInstructions = "Use the attached document content above when answering. Call out any equipment or staffing requirements it implies."
)

// syntheticParallelCallResult answers extra tool calls in a single model turn
// so the wire stays valid while dispatch remains strictly sequential.
const syntheticParallelCallResult = `{"error":"parallel tool calls are not supported"}`

// Options configures the orchestration loop.
type Options struct {
	Model            string
	Temperature      float64
	MaxTokens        int
	MaxFunctionCalls int
}

// ChatInput is one inbound chat exchange.
type ChatInput struct {
	PropertyID string
	Turns      []model.Turn
	Attachment *attachment.Payload
}

// Service orchestrates prompt assembly, the model exchange, and function
// dispatch for chat requests.
type Service struct {
	store     PropertyReader
	assembler *prompt.Assembler
	llmClient llm.Client
	executors *Executors
	publisher *events.Publisher
	logger    *logger.Logger
	opts      Options
}

// NewService creates the chat orchestration service. The publisher may be
// nil when event publishing is disabled.
func NewService(
	reader PropertyReader,
	assembler *prompt.Assembler,
	llmClient llm.Client,
	executors *Executors,
	publisher *events.Publisher,
	log *logger.Logger,
	opts Options,
) *Service {
	if opts.MaxFunctionCalls <= 0 {
		opts.MaxFunctionCalls = 5
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1000
	}
	return &Service{
		store:     reader,
		assembler: assembler,
		llmClient: llmClient,
		executors: executors,
		publisher: publisher,
		logger:    log,
		opts:      opts,
	}
}

// Chat runs one full exchange: fetch property context, assemble the system
// prompt, and drive the model until it answers or the function-call ceiling
// is reached. Provider errors abort the exchange; executor errors are fed
// back to the model as data.
func (s *Service) Chat(ctx context.Context, in ChatInput) (*model.ChatResponse, error) {
	start := time.Now()

	pctx, err := s.store.PropertyContext(ctx, in.PropertyID)
	if err != nil {
		return nil, err
	}

	system := s.assembler.Build(pctx.Property, pctx.Rooms, prompt.InventoryOf(pctx.Inventory))

	messages := make([]llm.Message, 0, len(in.Turns)+1)
	messages = append(messages, llm.Message{Role: string(model.RoleSystem), Content: system})
	for _, turn := range in.Turns {
		messages = append(messages, llm.Message{Role: string(turn.Role), Content: turn.Content})
	}

	if in.Attachment != nil {
		messages = s.attachToFirstUserTurn(messages, in.Attachment, in.PropertyID)
	}

	var (
		usage model.Usage
		calls int
		resp  *llm.CompletionResponse
	)

	for {
		resp, err = s.llmClient.Complete(ctx, &llm.CompletionRequest{
			Model:       s.opts.Model,
			Messages:    messages,
			Tools:       Catalog(),
			MaxTokens:   s.opts.MaxTokens,
			Temperature: s.opts.Temperature,
		})
		if err != nil {
			metrics.ChatRequestsTotal.WithLabelValues(in.PropertyID, "provider_error").Inc()
			return nil, err
		}

		usage.PromptTokens += resp.TokensIn
		usage.CompletionTokens += resp.TokensOut
		usage.TotalTokens += resp.TokensIn + resp.TokensOut
		metrics.RecordLLMRequest(resp.Model, "success", float64(resp.LatencyMs)/1000.0, resp.TokensIn, resp.TokensOut)

		if len(resp.ToolCalls) == 0 || calls >= s.opts.MaxFunctionCalls {
			break
		}

		// Preserve the model's own call signature in its context.
		messages = append(messages, llm.Message{
			Role:      string(model.RoleAssistant),
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		call := resp.ToolCalls[0]
		messages = append(messages, llm.Message{
			Role:       string(model.RoleTool),
			ToolCallID: call.ID,
			Content:    s.dispatch(ctx, in.PropertyID, call),
		})
		calls++

		for _, extra := range resp.ToolCalls[1:] {
			messages = append(messages, llm.Message{
				Role:       string(model.RoleTool),
				ToolCallID: extra.ID,
				Content:    syntheticParallelCallResult,
			})
		}
	}

	metrics.ChatRequestsTotal.WithLabelValues(in.PropertyID, "success").Inc()

	if s.publisher != nil {
		s.publisher.PublishChatCompleted(ctx, &events.ChatCompleted{
			PropertyID:       in.PropertyID,
			FunctionCalls:    calls,
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			LatencyMs:        time.Since(start).Milliseconds(),
			CreatedAt:        time.Now(),
		})
	}

	return &model.ChatResponse{
		Message:       resp.Content,
		Usage:         usage,
		FunctionCalls: calls,
	}, nil
}

// dispatch executes one function call and serializes the result. Executor
// failures become {"error": ...} payloads visible to the model only.
func (s *Service) dispatch(ctx context.Context, propertyID string, call llm.ToolCall) string {
	result, err := s.executors.Execute(ctx, propertyID, call.Name, json.RawMessage(call.Arguments))
	if err != nil {
		metrics.RecordFunctionCall(call.Name, "error")
		s.logger.Warn("function call failed",
			zap.String("function", call.Name),
			zap.String("property_id", propertyID),
			zap.Error(err),
		)
		b, _ := json.Marshal(map[string]string{"error": err.Error()})
		return string(b)
	}

	metrics.RecordFunctionCall(call.Name, "success")

	b, err := json.Marshal(result)
	if err != nil {
		metrics.RecordFunctionCall(call.Name, "marshal_error")
		return `{"error":"failed to serialize function result"}`
	}
	return string(b)
}

// attachToFirstUserTurn rewrites the first user turn after the system prompt
// with the attachment payload. When no such turn exists the payload is
// dropped and the turns stay untouched.
func (s *Service) attachToFirstUserTurn(messages []llm.Message, payload *attachment.Payload, propertyID string) []llm.Message {
	for i := 1; i < len(messages); i++ {
		if messages[i].Role != string(model.RoleUser) {
			continue
		}

		switch payload.Kind {
		case attachment.KindImage:
			messages[i].Parts = []llm.ContentPart{
				{Type: llm.PartTypeText, Text: messages[i].Content + "\n\n" + imageInstructions},
				{Type: llm.PartTypeImageURL, ImageURL: payload.DataURL},
			}
			messages[i].Content = ""
		case attachment.KindDocument:
			messages[i].Content = messages[i].Content +
				"\n\n[Attached document content]\n" + payload.Text +
				"\n\n" + documentInstructions
		}
		return messages
	}

	s.logger.Warn("attachment dropped: no user turn to attach to",
		zap.String("property_id", propertyID),
		zap.String("kind", string(payload.Kind)),
	)
	return messages
}
