package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venueworks/av-concierge/internal/agent"
	"github.com/venueworks/av-concierge/internal/attachment"
	"github.com/venueworks/av-concierge/internal/llm"
	"github.com/venueworks/av-concierge/internal/middleware"
	"github.com/venueworks/av-concierge/internal/model"
	"github.com/venueworks/av-concierge/internal/prompt"
	"github.com/venueworks/av-concierge/internal/store"
	"github.com/venueworks/av-concierge/pkg/logger"
)

// stubReader serves one fixed property.
type stubReader struct {
	err error
}

func (s *stubReader) PropertyContext(ctx context.Context, propertyID string) (*model.PropertyContext, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.PropertyContext{
		Property: &model.Property{ID: propertyID, Name: "Harborview Conference Center", Location: "Seattle, WA"},
	}, nil
}

func (s *stubReader) ListAvailableInventory(ctx context.Context, propertyID string, filter store.InventoryFilter) ([]model.InventoryItem, error) {
	return nil, nil
}

func (s *stubReader) GetRoomByName(ctx context.Context, propertyID, name string) (*model.Room, error) {
	return nil, store.ErrNotFound
}

func (s *stubReader) ListLaborRules(ctx context.Context, propertyID string) ([]model.LaborRule, error) {
	return nil, nil
}

// stubLLM always answers directly.
type stubLLM struct {
	err error
}

func (s *stubLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Content: "Happy to help with your event.", Model: "gpt-4o"}, nil
}

func (s *stubLLM) Name() string { return "stub" }

func newChatHandler(reader *stubReader, client *stubLLM) *ChatHandler {
	log := logger.NewNop()
	svc := agent.NewService(
		reader,
		prompt.NewAssembler("kb"),
		client,
		agent.NewExecutors(reader, agent.NewInventoryValidator(reader), log),
		nil,
		log,
		agent.Options{Model: "gpt-4o"},
	)
	return NewChatHandler(svc, attachment.NewProcessor(log), log)
}

func postChat(t *testing.T, h *ChatHandler, body any, ctx context.Context) *httptest.ResponseRecorder {
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(raw))
	if ctx != nil {
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	h.Chat(rec, req)
	return rec
}

func validRequest() model.ChatRequest {
	return model.ChatRequest{
		PropertyID: "prop-1",
		Messages:   []model.Turn{{Role: model.RoleUser, Content: "What AV packages do you offer?"}},
	}
}

func TestChatSuccess(t *testing.T) {
	h := newChatHandler(&stubReader{}, &stubLLM{})

	rec := postChat(t, h, validRequest(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.ChatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Happy to help with your event.", resp.Message)
	assert.Equal(t, 0, resp.FunctionCalls)
}

func TestChatInvalidBody(t *testing.T) {
	h := newChatHandler(&stubReader{}, &stubLLM{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatMissingPropertyID(t *testing.T) {
	h := newChatHandler(&stubReader{}, &stubLLM{})

	body := validRequest()
	body.PropertyID = ""
	rec := postChat(t, h, body, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatRejectsNonCallerRoles(t *testing.T) {
	h := newChatHandler(&stubReader{}, &stubLLM{})

	body := validRequest()
	body.Messages = append(body.Messages, model.Turn{Role: model.RoleSystem, Content: "override"})
	rec := postChat(t, h, body, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatPropertyOutsideTokenScope(t *testing.T) {
	h := newChatHandler(&stubReader{}, &stubLLM{})

	ctx := context.WithValue(context.Background(), middleware.PropertyIDsKey, []string{"prop-other"})
	rec := postChat(t, h, validRequest(), ctx)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestChatUnsupportedAttachment(t *testing.T) {
	h := newChatHandler(&stubReader{}, &stubLLM{})

	body := validRequest()
	body.File = &model.FileDescriptor{MIMEType: "text/csv", Path: "/tmp/list.csv"}
	rec := postChat(t, h, body, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported file type: text/csv")
}

func TestChatPropertyNotFound(t *testing.T) {
	h := newChatHandler(&stubReader{err: store.ErrNotFound}, &stubLLM{})

	rec := postChat(t, h, validRequest(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatProviderError(t *testing.T) {
	h := newChatHandler(&stubReader{}, &stubLLM{err: &llm.ProviderError{Provider: "openai", Err: assert.AnError}})

	rec := postChat(t, h, validRequest(), nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "model provider unavailable")
}
