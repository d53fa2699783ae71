package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/furnistudio/lead-inbox/internal/dialog"
	"github.com/furnistudio/lead-inbox/internal/models"
	"github.com/furnistudio/lead-inbox/internal/storage"
	"github.com/furnistudio/lead-inbox/internal/telegram"
)

const (
	photoPlaceholder    = "📷 Фото отправлено"
	documentPlaceholder = "📎 Документ отправлен"
)

// Handler is the Telegram webhook ingress: it loads or creates the
// conversation record, logs the raw message, and delegates to the dialog
// state machine.
type Handler struct {
	store       storage.Storage
	machine     *dialog.Machine
	notifier    dialog.Notifier
	secretToken string
	logger      *zap.Logger
}

func NewHandler(store storage.Storage, machine *dialog.Machine, notifier dialog.Notifier, secretToken string, logger *zap.Logger) *Handler {
	return &Handler{
		store:       store,
		machine:     machine,
		notifier:    notifier,
		secretToken: secretToken,
		logger:      logger,
	}
}

// HandleUpdate processes POST /api/telegram/webhook. Telegram retries on
// non-2xx, so malformed payloads are acknowledged rather than rejected.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if h.secretToken != "" && r.Header.Get(telegram.SecretTokenHeader) != h.secretToken {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.logger.Warn("malformed webhook payload", zap.Error(err))
		writeOK(w)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		writeOK(w)
		return
	}

	ctx := r.Context()
	msg := update.Message
	chatID := msg.Chat.ID
	receivedAt := int64(msg.Date) * 1000

	from := models.Sender{
		ID:        msg.From.ID,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
		Username:  msg.From.UserName,
	}

	conv, err := h.store.GetConversation(ctx, chatID)
	switch {
	case err == nil:
		conv.LastMessageAt = receivedAt
		conv.UnreadCount++
	case errors.Is(err, storage.ErrNotFound):
		conv = models.NewConversation(chatID, from, receivedAt)
		conv.UnreadCount = 1
		if err := h.notifier.Notify(ctx, chatID, dialog.GreetingMessage); err != nil {
			h.logger.Error("failed to send greeting", zap.Error(err), zap.Int64("chat_id", chatID))
		}
	default:
		h.logger.Error("failed to load conversation", zap.Error(err), zap.Int64("chat_id", chatID))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if msg.Contact != nil {
		h.machine.ApplyContact(ctx, conv, dialog.ContactShare{
			PhoneNumber: msg.Contact.PhoneNumber,
			FirstName:   msg.Contact.FirstName,
			LastName:    msg.Contact.LastName,
		})
	}

	record := &models.Message{
		ID:        fmt.Sprintf("msg-%d-%d", msg.MessageID, chatID),
		ChatID:    chatID,
		MessageID: msg.MessageID,
		From:      from,
		Text:      incomingText(msg),
		Timestamp: receivedAt,
		Direction: models.DirectionIncoming,
		// Photos and documents are only attached through the web UI, so no
		// file URLs are resolved here.
		DialogState: conv.State,
	}
	if err := h.store.SaveMessage(ctx, record); err != nil {
		h.logger.Error("failed to save message", zap.Error(err), zap.Int64("chat_id", chatID))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	switch {
	case msg.Text != "" && conv.State != models.StateActive && conv.State != models.StateHandover:
		h.machine.Advance(ctx, conv, msg.Text)
	case msg.Text == "" && conv.State == models.StateGreeting:
		// Photo-only opener: skip the greeting exchange and start the script.
		conv.State = models.StateQualify
		conv.CurrentQuestion = 0
		if err := h.notifier.Notify(ctx, chatID, dialog.PhotoIntroMessage); err != nil {
			h.logger.Error("failed to send photo intro", zap.Error(err), zap.Int64("chat_id", chatID))
		}
	}

	if err := h.store.UpsertConversation(ctx, conv); err != nil {
		h.logger.Error("failed to save conversation", zap.Error(err), zap.Int64("chat_id", chatID))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeOK(w)
}

// Confirm answers Telegram's GET probe during webhook registration.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	writeOK(w)
}

func incomingText(msg *tgbotapi.Message) string {
	switch {
	case msg.Text != "":
		return msg.Text
	case msg.Photo != nil:
		return photoPlaceholder
	case msg.Document != nil:
		return documentPlaceholder
	default:
		return ""
	}
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
