// Package handler provides HTTP handlers for the API server.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/venueworks/av-concierge/internal/agent"
	"github.com/venueworks/av-concierge/internal/attachment"
	"github.com/venueworks/av-concierge/internal/llm"
	"github.com/venueworks/av-concierge/internal/middleware"
	"github.com/venueworks/av-concierge/internal/model"
	"github.com/venueworks/av-concierge/internal/store"
	"github.com/venueworks/av-concierge/pkg/logger"
)

// ChatHandler handles the chat endpoint.
type ChatHandler struct {
	chatService *agent.Service
	processor   *attachment.Processor
	logger      *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chatService *agent.Service, processor *attachment.Processor, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		processor:   processor,
		logger:      log,
	}
}

// Chat handles POST /api/v1/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidatePropertyID(req.PropertyID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateTurns(req.Messages); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !middleware.CanAccessProperty(ctx, req.PropertyID) {
		writeError(w, http.StatusForbidden, "property not covered by token")
		return
	}

	// Attachments fail fast, before any model call.
	var payload *attachment.Payload
	if req.File != nil {
		p, err := h.processor.Process(ctx, *req.File)
		if err != nil {
			var unsupported *attachment.UnsupportedTypeError
			if errors.As(err, &unsupported) {
				writeError(w, http.StatusBadRequest, unsupported.Error())
				return
			}
			h.logger.Error("attachment processing failed",
				zap.String("property_id", req.PropertyID),
				zap.Error(err),
			)
			writeError(w, http.StatusBadRequest, "failed to process file")
			return
		}
		payload = p
	}

	resp, err := h.chatService.Chat(ctx, agent.ChatInput{
		PropertyID: req.PropertyID,
		Turns:      req.Messages,
		Attachment: payload,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "property not found")
			return
		}
		var providerErr *llm.ProviderError
		if errors.As(err, &providerErr) {
			h.logger.Error("model provider failed",
				zap.String("property_id", req.PropertyID),
				zap.Error(err),
			)
			writeError(w, http.StatusBadGateway, "model provider unavailable")
			return
		}
		h.logger.Error("chat exchange failed",
			zap.String("property_id", req.PropertyID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "chat exchange failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
