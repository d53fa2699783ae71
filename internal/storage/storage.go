package storage

import (
	"context"
	"errors"

	"github.com/furnistudio/lead-inbox/internal/models"
)

// ErrNotFound is returned when no conversation exists for a chat ID.
var ErrNotFound = errors.New("conversation not found")

// Storage persists conversations and their append-only message logs.
// No cross-process locking is provided: concurrent read-modify-write on the
// same chat is last-write-wins.
type Storage interface {
	GetConversation(ctx context.Context, chatID int64) (*models.Conversation, error)
	UpsertConversation(ctx context.Context, conv *models.Conversation) error
	// ListConversations returns every conversation, newest LastMessageAt first.
	ListConversations(ctx context.Context) ([]*models.Conversation, error)
	// MarkConversationRead resets the unread counter for a chat.
	MarkConversationRead(ctx context.Context, chatID int64) error

	SaveMessage(ctx context.Context, msg *models.Message) error
	// MessagesByChat returns the message log for one chat in insertion order.
	MessagesByChat(ctx context.Context, chatID int64) ([]*models.Message, error)

	Close() error
}
