package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/furnistudio/lead-inbox/internal/models"
)

const (
	conversationsFile = "conversations.json"
	messagesFile      = "messages.json"
)

// FileStorage keeps conversations and messages in two JSON files under a
// data directory. Every mutation is a whole-file read-modify-write guarded
// by an in-process mutex; concurrent processes are not coordinated.
type FileStorage struct {
	mu  sync.Mutex
	dir string
}

func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

func (s *FileStorage) GetConversation(ctx context.Context, chatID int64) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversations, err := s.loadConversations()
	if err != nil {
		return nil, err
	}
	for _, conv := range conversations {
		if conv.ChatID == chatID {
			return conv, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileStorage) UpsertConversation(ctx context.Context, conv *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversations, err := s.loadConversations()
	if err != nil {
		return err
	}

	replaced := false
	for i, existing := range conversations {
		if existing.ChatID == conv.ChatID {
			conversations[i] = conv
			replaced = true
			break
		}
	}
	if !replaced {
		conversations = append(conversations, conv)
	}
	return s.writeJSON(conversationsFile, conversations)
}

func (s *FileStorage) ListConversations(ctx context.Context) ([]*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversations, err := s.loadConversations()
	if err != nil {
		return nil, err
	}
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastMessageAt > conversations[j].LastMessageAt
	})
	return conversations, nil
}

func (s *FileStorage) MarkConversationRead(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversations, err := s.loadConversations()
	if err != nil {
		return err
	}
	for _, conv := range conversations {
		if conv.ChatID == chatID {
			conv.UnreadCount = 0
			return s.writeJSON(conversationsFile, conversations)
		}
	}
	return nil
}

func (s *FileStorage) SaveMessage(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages, err := s.loadMessages()
	if err != nil {
		return err
	}
	messages = append(messages, msg)
	return s.writeJSON(messagesFile, messages)
}

func (s *FileStorage) MessagesByChat(ctx context.Context, chatID int64) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages, err := s.loadMessages()
	if err != nil {
		return nil, err
	}
	var result []*models.Message
	for _, msg := range messages {
		if msg.ChatID == chatID {
			result = append(result, msg)
		}
	}
	return result, nil
}

func (s *FileStorage) Close() error {
	return nil
}

func (s *FileStorage) loadConversations() ([]*models.Conversation, error) {
	var conversations []*models.Conversation
	if err := s.readJSON(conversationsFile, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

func (s *FileStorage) loadMessages() ([]*models.Message, error) {
	var messages []*models.Message
	if err := s.readJSON(messagesFile, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// readJSON treats a missing file as an empty collection.
func (s *FileStorage) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (s *FileStorage) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
