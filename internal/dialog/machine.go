package dialog

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/furnistudio/lead-inbox/internal/models"
)

// Notifier delivers one text message to a Telegram chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// ContactShare is a platform-native "share contact" payload.
type ContactShare struct {
	PhoneNumber string
	FirstName   string
	LastName    string
}

// Machine drives a conversation through the fixed qualification dialog:
// greeting → qualify → contact → handover. It mutates the conversation in
// place and sends at most one scripted message per inbound text; the caller
// persists the record afterwards.
type Machine struct {
	notifier Notifier
	logger   *zap.Logger
}

func NewMachine(notifier Notifier, logger *zap.Logger) *Machine {
	return &Machine{
		notifier: notifier,
		logger:   logger,
	}
}

// Advance processes one inbound text message and returns the new state.
// Send failures never block a transition.
func (m *Machine) Advance(ctx context.Context, conv *models.Conversation, text string) models.DialogState {
	switch conv.State {
	case models.StateGreeting:
		conv.State = models.StateQualify
		conv.CurrentQuestion = 0
		m.send(ctx, conv.ChatID, Questions[0])

	case models.StateQualify:
		idx := conv.CurrentQuestion
		if conv.Answers == nil {
			conv.Answers = make(map[string]string)
		}
		conv.Answers[fmt.Sprintf("question_%d", idx)] = text

		if idx < len(Questions)-1 {
			conv.CurrentQuestion = idx + 1
			m.send(ctx, conv.ChatID, Questions[idx+1])
		} else {
			conv.State = models.StateContact
			m.send(ctx, conv.ChatID, ContactMessage)
		}

	case models.StateContact:
		// First writer wins: extracted values never overwrite fields
		// already harvested from an earlier message.
		if phone := ExtractPhone(text); phone != "" && conv.Phone == "" {
			conv.Phone = phone
		}
		if name := ExtractName(StripPhone(text)); name != "" && conv.Name == "" {
			conv.Name = name
		}

		if conv.Phone != "" && conv.Name != "" {
			conv.State = models.StateHandover
			m.send(ctx, conv.ChatID, HandoverMessage)
		} else {
			m.send(ctx, conv.ChatID, missingFieldsPrompt(conv))
		}

	case models.StateHandover, models.StateActive:
		// The operator owns the thread, the bot stays silent.

	default:
		// Unknown or corrupted state on a loaded record: restart the script.
		m.logger.Warn("unknown dialog state, resetting to greeting",
			zap.String("state", string(conv.State)),
			zap.Int64("chat_id", conv.ChatID))
		conv.State = models.StateGreeting
	}

	return conv.State
}

// ApplyContact merges a shared contact into the conversation. Unlike text
// extraction it trusts the platform payload and overwrites both fields.
// Arriving while collecting contact data, a complete share triggers the
// handover immediately.
func (m *Machine) ApplyContact(ctx context.Context, conv *models.Conversation, contact ContactShare) models.DialogState {
	conv.Phone = contact.PhoneNumber
	conv.Name = contact.FirstName
	if contact.LastName != "" {
		conv.Name += " " + contact.LastName
	}

	if conv.State == models.StateContact && conv.Phone != "" && conv.Name != "" {
		conv.State = models.StateHandover
		m.send(ctx, conv.ChatID, HandoverMessage)
	}
	return conv.State
}

func missingFieldsPrompt(conv *models.Conversation) string {
	var missing []string
	if conv.Phone == "" {
		missing = append(missing, "телефон")
	}
	if conv.Name == "" {
		missing = append(missing, "имя")
	}
	return fmt.Sprintf("Пожалуйста, укажите %s.", strings.Join(missing, " и "))
}

func (m *Machine) send(ctx context.Context, chatID int64, text string) {
	if err := m.notifier.Notify(ctx, chatID, text); err != nil {
		m.logger.Error("failed to send scripted message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
