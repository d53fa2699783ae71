package inbox

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/furnistudio/lead-inbox/internal/dialog"
	"github.com/furnistudio/lead-inbox/internal/models"
	"github.com/furnistudio/lead-inbox/internal/storage"
)

// Handler serves the operator's web inbox: conversation list, per-chat
// message log, replies and read receipts.
type Handler struct {
	store    storage.Storage
	notifier dialog.Notifier
	logger   *zap.Logger
}

func NewHandler(store storage.Storage, notifier dialog.Notifier, logger *zap.Logger) *Handler {
	return &Handler{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// ListMessages handles GET /api/messages. Without a chatId query parameter
// it returns every conversation, newest first; with one it returns that
// chat's message log.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("chatId"); raw != "" {
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid chatId", http.StatusBadRequest)
			return
		}
		messages, err := h.store.MessagesByChat(r.Context(), chatID)
		if err != nil {
			h.logger.Error("failed to load messages", zap.Error(err), zap.Int64("chat_id", chatID))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if messages == nil {
			messages = []*models.Message{}
		}
		writeJSON(w, map[string]any{"messages": messages})
		return
	}

	conversations, err := h.store.ListConversations(r.Context())
	if err != nil {
		h.logger.Error("failed to list conversations", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if conversations == nil {
		conversations = []*models.Conversation{}
	}
	writeJSON(w, map[string]any{"conversations": conversations})
}

type sendRequest struct {
	Text string `json:"text"`
}

type sendResponse struct {
	Success bool            `json:"success"`
	Message *models.Message `json:"message"`
}

// SendReply handles POST /api/messages/{chatID}/send. A reply hands the
// thread to the operator: the conversation goes active and the bot stops
// responding to this lead.
func (h *Handler) SendReply(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid chat id", http.StatusBadRequest)
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	conv, err := h.store.GetConversation(r.Context(), chatID)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "conversation not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load conversation", zap.Error(err), zap.Int64("chat_id", chatID))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.notifier.Notify(r.Context(), chatID, req.Text); err != nil {
		http.Error(w, "failed to deliver message", http.StatusBadGateway)
		return
	}

	now := time.Now().UnixMilli()
	msg := &models.Message{
		ID:          "msg-out-" + uuid.NewString(),
		ChatID:      chatID,
		From:        models.Sender{FirstName: "Admin"},
		Text:        req.Text,
		Timestamp:   now,
		Direction:   models.DirectionOutgoing,
		DialogState: models.StateActive,
	}
	if err := h.store.SaveMessage(r.Context(), msg); err != nil {
		h.logger.Error("failed to save outgoing message", zap.Error(err), zap.Int64("chat_id", chatID))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	conv.State = models.StateActive
	conv.UnreadCount = 0
	if err := h.store.UpsertConversation(r.Context(), conv); err != nil {
		h.logger.Error("failed to save conversation", zap.Error(err), zap.Int64("chat_id", chatID))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, sendResponse{Success: true, Message: msg})
}

// MarkRead handles POST /api/messages/{chatID}/read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid chat id", http.StatusBadRequest)
		return
	}
	if err := h.store.MarkConversationRead(r.Context(), chatID); err != nil {
		h.logger.Error("failed to mark conversation read", zap.Error(err), zap.Int64("chat_id", chatID))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
