package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venueworks/av-concierge/internal/attachment"
	"github.com/venueworks/av-concierge/internal/llm"
	"github.com/venueworks/av-concierge/internal/model"
	"github.com/venueworks/av-concierge/internal/prompt"
	"github.com/venueworks/av-concierge/internal/store"
	"github.com/venueworks/av-concierge/pkg/logger"
)

// scriptedClient replays canned completions and records every request it
// receives, with the message slices copied so later loop iterations cannot
// mutate what was captured.
type scriptedClient struct {
	responses []*llm.CompletionResponse
	err       error

	requests [][]llm.Message
}

func (c *scriptedClient) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	captured := make([]llm.Message, len(req.Messages))
	copy(captured, req.Messages)
	c.requests = append(c.requests, captured)

	if c.err != nil {
		return nil, c.err
	}
	if len(c.responses) == 0 {
		return nil, errors.New("scripted client exhausted")
	}
	resp := c.responses[0]
	c.responses = c.responses[1:]
	return resp, nil
}

func (c *scriptedClient) Name() string { return "scripted" }

func testPropertyContext() *model.PropertyContext {
	return &model.PropertyContext{
		Property: &model.Property{ID: "prop-1", Name: "Harborview Conference Center", Location: "Seattle, WA"},
		Rooms: []model.Room{
			{Name: "Bayview Hall", Capacity: 200, BuiltInAV: "Projection screen, house audio"},
		},
		Inventory: []model.InventoryItem{
			{Name: "Wireless Microphone", Model: "SM58", QuantityAvailable: 8, Category: "audio"},
		},
	}
}

func newTestService(reader *fakeReader, client *scriptedClient) *Service {
	return NewService(
		reader,
		prompt.NewAssembler("You are an AV consultant."),
		client,
		newTestExecutors(reader),
		nil,
		logger.NewNop(),
		Options{Model: "gpt-4o", MaxFunctionCalls: 5},
	)
}

func finalAnswer(content string) *llm.CompletionResponse {
	return &llm.CompletionResponse{Content: content, Model: "gpt-4o", TokensIn: 10, TokensOut: 5}
}

func toolCallResponse(calls ...llm.ToolCall) *llm.CompletionResponse {
	return &llm.CompletionResponse{ToolCalls: calls, Model: "gpt-4o", TokensIn: 10, TokensOut: 5}
}

func TestChatDirectAnswer(t *testing.T) {
	client := &scriptedClient{responses: []*llm.CompletionResponse{finalAnswer("We have 8 wireless microphones available.")}}
	svc := newTestService(&fakeReader{pctx: testPropertyContext()}, client)

	resp, err := svc.Chat(context.Background(), ChatInput{
		PropertyID: "prop-1",
		Turns:      []model.Turn{{Role: model.RoleUser, Content: "How many mics do you have?"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "We have 8 wireless microphones available.", resp.Message)
	assert.Equal(t, 0, resp.FunctionCalls)
	assert.Equal(t, 15, resp.Usage.TotalTokens)

	require.Len(t, client.requests, 1)
	msgs := client.requests[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Harborview Conference Center")
	assert.Contains(t, msgs[0].Content, "You are an AV consultant.")
	assert.Equal(t, "user", msgs[1].Role)
}

func TestChatToolRoundTrip(t *testing.T) {
	client := &scriptedClient{responses: []*llm.CompletionResponse{
		toolCallResponse(llm.ToolCall{ID: "call_1", Name: FuncFetchInventory, Arguments: `{"category": "audio"}`}),
		finalAnswer("Here is the audio inventory."),
	}}
	svc := newTestService(&fakeReader{
		pctx:      testPropertyContext(),
		inventory: []model.InventoryItem{{Name: "Wireless Microphone", QuantityAvailable: 8}},
	}, client)

	resp, err := svc.Chat(context.Background(), ChatInput{
		PropertyID: "prop-1",
		Turns:      []model.Turn{{Role: model.RoleUser, Content: "What audio gear is available?"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Here is the audio inventory.", resp.Message)
	assert.Equal(t, 1, resp.FunctionCalls)
	assert.Equal(t, 30, resp.Usage.TotalTokens)

	// The second request carries the assistant's call and the tool result.
	require.Len(t, client.requests, 2)
	msgs := client.requests[1]
	require.Len(t, msgs, 4)

	assistant := msgs[2]
	assert.Equal(t, "assistant", assistant.Role)
	require.Len(t, assistant.ToolCalls, 1)
	assert.Equal(t, "call_1", assistant.ToolCalls[0].ID)

	toolMsg := msgs[3]
	assert.Equal(t, "tool", toolMsg.Role)
	assert.Equal(t, "call_1", toolMsg.ToolCallID)
	assert.Contains(t, toolMsg.Content, `"count":1`)
}

func TestChatFunctionCallCeiling(t *testing.T) {
	var responses []*llm.CompletionResponse
	for i := 0; i < 6; i++ {
		responses = append(responses, toolCallResponse(
			llm.ToolCall{ID: fmt.Sprintf("call_%d", i), Name: FuncFetchInventory, Arguments: `{}`},
		))
	}
	client := &scriptedClient{responses: responses}
	svc := newTestService(&fakeReader{pctx: testPropertyContext()}, client)

	resp, err := svc.Chat(context.Background(), ChatInput{
		PropertyID: "prop-1",
		Turns:      []model.Turn{{Role: model.RoleUser, Content: "Plan my event."}},
	})
	require.NoError(t, err)

	// Five calls dispatch; the sixth response is returned as-is even though
	// it asked for another call.
	assert.Equal(t, 5, resp.FunctionCalls)
	assert.Len(t, client.requests, 6)
	assert.Empty(t, resp.Message)
}

func TestChatExecutorErrorFedBack(t *testing.T) {
	client := &scriptedClient{responses: []*llm.CompletionResponse{
		toolCallResponse(llm.ToolCall{ID: "call_1", Name: "nonexistent_function", Arguments: `{}`}),
		finalAnswer("Let me try a different approach."),
	}}
	svc := newTestService(&fakeReader{pctx: testPropertyContext()}, client)

	resp, err := svc.Chat(context.Background(), ChatInput{
		PropertyID: "prop-1",
		Turns:      []model.Turn{{Role: model.RoleUser, Content: "Hello"}},
	})
	require.NoError(t, err)

	// The failure reaches the model as data, not the caller as an error.
	assert.Equal(t, "Let me try a different approach.", resp.Message)

	toolMsg := client.requests[1][3]
	assert.Equal(t, "tool", toolMsg.Role)
	assert.Contains(t, toolMsg.Content, "unknown function")
	assert.True(t, strings.HasPrefix(toolMsg.Content, `{"error":`))
}

func TestChatParallelCallsAnsweredSynthetically(t *testing.T) {
	client := &scriptedClient{responses: []*llm.CompletionResponse{
		toolCallResponse(
			llm.ToolCall{ID: "call_1", Name: FuncFetchInventory, Arguments: `{}`},
			llm.ToolCall{ID: "call_2", Name: FuncFetchInventory, Arguments: `{}`},
		),
		finalAnswer("Done."),
	}}
	svc := newTestService(&fakeReader{pctx: testPropertyContext()}, client)

	resp, err := svc.Chat(context.Background(), ChatInput{
		PropertyID: "prop-1",
		Turns:      []model.Turn{{Role: model.RoleUser, Content: "Hello"}},
	})
	require.NoError(t, err)

	// Only the first call dispatched.
	assert.Equal(t, 1, resp.FunctionCalls)

	msgs := client.requests[1]
	require.Len(t, msgs, 5)
	assert.Equal(t, "call_1", msgs[3].ToolCallID)
	assert.Equal(t, "call_2", msgs[4].ToolCallID)
	assert.Equal(t, syntheticParallelCallResult, msgs[4].Content)
}

func TestChatProviderErrorAborts(t *testing.T) {
	client := &scriptedClient{err: &llm.ProviderError{Provider: "openai", Err: errors.New("rate limited")}}
	svc := newTestService(&fakeReader{pctx: testPropertyContext()}, client)

	_, err := svc.Chat(context.Background(), ChatInput{
		PropertyID: "prop-1",
		Turns:      []model.Turn{{Role: model.RoleUser, Content: "Hello"}},
	})
	require.Error(t, err)

	var provErr *llm.ProviderError
	assert.ErrorAs(t, err, &provErr)
	// No retry.
	assert.Len(t, client.requests, 1)
}

func TestChatPropertyNotFound(t *testing.T) {
	client := &scriptedClient{}
	svc := newTestService(&fakeReader{pctxErr: store.ErrNotFound}, client)

	_, err := svc.Chat(context.Background(), ChatInput{PropertyID: "missing"})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, client.requests)
}

func TestChatImageAttachment(t *testing.T) {
	client := &scriptedClient{responses: []*llm.CompletionResponse{finalAnswer("That looks like a ballroom stage.")}}
	svc := newTestService(&fakeReader{pctx: testPropertyContext()}, client)

	_, err := svc.Chat(context.Background(), ChatInput{
		PropertyID: "prop-1",
		Turns: []model.Turn{
			{Role: model.RoleUser, Content: "What do you see in this photo?"},
			{Role: model.RoleAssistant, Content: "Let me take a look."},
		},
		Attachment: &attachment.Payload{
			Kind:    attachment.KindImage,
			DataURL: "data:image/png;base64,aGVsbG8=",
		},
	})
	require.NoError(t, err)

	userMsg := client.requests[0][1]
	require.Len(t, userMsg.Parts, 2)
	assert.Equal(t, llm.PartTypeText, userMsg.Parts[0].Type)
	assert.Contains(t, userMsg.Parts[0].Text, "What do you see in this photo?")
	assert.Equal(t, llm.PartTypeImageURL, userMsg.Parts[1].Type)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", userMsg.Parts[1].ImageURL)
	assert.Empty(t, userMsg.Content)

	// The later assistant turn stays untouched.
	assert.Empty(t, client.requests[0][2].Parts)
}

func TestChatDocumentAttachment(t *testing.T) {
	client := &scriptedClient{responses: []*llm.CompletionResponse{finalAnswer("The rider calls for two mic packages.")}}
	svc := newTestService(&fakeReader{pctx: testPropertyContext()}, client)

	_, err := svc.Chat(context.Background(), ChatInput{
		PropertyID: "prop-1",
		Turns:      []model.Turn{{Role: model.RoleUser, Content: "Review this technical rider."}},
		Attachment: &attachment.Payload{
			Kind: attachment.KindDocument,
			Text: "Stage requires 2x wireless handheld microphones.",
		},
	})
	require.NoError(t, err)

	userMsg := client.requests[0][1]
	assert.Contains(t, userMsg.Content, "Review this technical rider.")
	assert.Contains(t, userMsg.Content, "2x wireless handheld microphones")
	assert.Empty(t, userMsg.Parts)
}

func TestChatAttachmentDroppedWithoutUserTurn(t *testing.T) {
	client := &scriptedClient{responses: []*llm.CompletionResponse{finalAnswer("Hello.")}}
	svc := newTestService(&fakeReader{pctx: testPropertyContext()}, client)

	_, err := svc.Chat(context.Background(), ChatInput{
		PropertyID: "prop-1",
		Turns:      []model.Turn{{Role: model.RoleAssistant, Content: "Welcome back."}},
		Attachment: &attachment.Payload{Kind: attachment.KindImage, DataURL: "data:image/png;base64,xx"},
	})
	require.NoError(t, err)

	// The exchange proceeds with the payload silently dropped.
	for _, msg := range client.requests[0] {
		assert.Empty(t, msg.Parts)
	}
}
