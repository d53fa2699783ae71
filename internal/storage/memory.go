package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/furnistudio/lead-inbox/internal/models"
)

// MemoryStorage is a map-backed Storage for tests and local development.
type MemoryStorage struct {
	mu            sync.RWMutex
	conversations map[int64]*models.Conversation
	messages      []*models.Message
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		conversations: make(map[int64]*models.Conversation),
	}
}

func (s *MemoryStorage) GetConversation(ctx context.Context, chatID int64) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, exists := s.conversations[chatID]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *conv
	return &copied, nil
}

func (s *MemoryStorage) UpsertConversation(ctx context.Context, conv *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *conv
	s.conversations[conv.ChatID] = &copied
	return nil
}

func (s *MemoryStorage) ListConversations(ctx context.Context) ([]*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		copied := *conv
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastMessageAt > result[j].LastMessageAt
	})
	return result, nil
}

func (s *MemoryStorage) MarkConversationRead(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conv, exists := s.conversations[chatID]; exists {
		conv.UnreadCount = 0
	}
	return nil
}

func (s *MemoryStorage) SaveMessage(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *msg
	s.messages = append(s.messages, &copied)
	return nil
}

func (s *MemoryStorage) MessagesByChat(ctx context.Context, chatID int64) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Message
	for _, msg := range s.messages {
		if msg.ChatID == chatID {
			copied := *msg
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
