package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/furnistudio/lead-inbox/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db}
	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}
	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}
	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GetConversation(ctx context.Context, chatID int64) (*models.Conversation, error) {
	query := `
		SELECT chat_id, user_id, first_name, last_name, username, phone, name,
		       ai_state, current_question, answers, last_message_at, created_at, unread_count
		FROM conversations
		WHERE chat_id = $1`

	var conv models.Conversation
	var answers []byte
	err := s.db.QueryRowContext(ctx, query, chatID).Scan(
		&conv.ChatID,
		&conv.UserID,
		&conv.FirstName,
		&conv.LastName,
		&conv.Username,
		&conv.Phone,
		&conv.Name,
		&conv.State,
		&conv.CurrentQuestion,
		&answers,
		&conv.LastMessageAt,
		&conv.CreatedAt,
		&conv.UnreadCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying conversation: %w", err)
	}
	if err := json.Unmarshal(answers, &conv.Answers); err != nil {
		return nil, fmt.Errorf("error decoding answers: %w", err)
	}
	return &conv, nil
}

func (s *PostgresStorage) UpsertConversation(ctx context.Context, conv *models.Conversation) error {
	answers, err := json.Marshal(conv.Answers)
	if err != nil {
		return fmt.Errorf("error encoding answers: %w", err)
	}

	query := `
		INSERT INTO conversations (
			chat_id, user_id, first_name, last_name, username, phone, name,
			ai_state, current_question, answers, last_message_at, created_at, unread_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (chat_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			username = EXCLUDED.username,
			phone = EXCLUDED.phone,
			name = EXCLUDED.name,
			ai_state = EXCLUDED.ai_state,
			current_question = EXCLUDED.current_question,
			answers = EXCLUDED.answers,
			last_message_at = EXCLUDED.last_message_at,
			unread_count = EXCLUDED.unread_count`

	_, err = s.db.ExecContext(ctx, query,
		conv.ChatID,
		conv.UserID,
		conv.FirstName,
		conv.LastName,
		conv.Username,
		conv.Phone,
		conv.Name,
		conv.State,
		conv.CurrentQuestion,
		answers,
		conv.LastMessageAt,
		conv.CreatedAt,
		conv.UnreadCount,
	)
	if err != nil {
		return fmt.Errorf("error upserting conversation: %w", err)
	}
	return nil
}

func (s *PostgresStorage) ListConversations(ctx context.Context) ([]*models.Conversation, error) {
	query := `
		SELECT chat_id, user_id, first_name, last_name, username, phone, name,
		       ai_state, current_question, answers, last_message_at, created_at, unread_count
		FROM conversations
		ORDER BY last_message_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing conversations: %w", err)
	}
	defer rows.Close()

	var result []*models.Conversation
	for rows.Next() {
		var conv models.Conversation
		var answers []byte
		if err := rows.Scan(
			&conv.ChatID,
			&conv.UserID,
			&conv.FirstName,
			&conv.LastName,
			&conv.Username,
			&conv.Phone,
			&conv.Name,
			&conv.State,
			&conv.CurrentQuestion,
			&answers,
			&conv.LastMessageAt,
			&conv.CreatedAt,
			&conv.UnreadCount,
		); err != nil {
			return nil, fmt.Errorf("error scanning conversation: %w", err)
		}
		if err := json.Unmarshal(answers, &conv.Answers); err != nil {
			return nil, fmt.Errorf("error decoding answers: %w", err)
		}
		result = append(result, &conv)
	}
	return result, rows.Err()
}

func (s *PostgresStorage) MarkConversationRead(ctx context.Context, chatID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET unread_count = 0 WHERE chat_id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("error resetting unread count: %w", err)
	}
	return nil
}

func (s *PostgresStorage) SaveMessage(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (
			id, chat_id, message_id, from_id, from_first_name, from_last_name,
			from_username, text, photo_url, document_url, sent_at, direction, ai_state
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING`

	_, err := s.db.ExecContext(ctx, query,
		msg.ID,
		msg.ChatID,
		msg.MessageID,
		msg.From.ID,
		msg.From.FirstName,
		msg.From.LastName,
		msg.From.Username,
		msg.Text,
		msg.PhotoURL,
		msg.DocumentURL,
		msg.Timestamp,
		msg.Direction,
		msg.DialogState,
	)
	if err != nil {
		return fmt.Errorf("error saving message: %w", err)
	}
	return nil
}

func (s *PostgresStorage) MessagesByChat(ctx context.Context, chatID int64) ([]*models.Message, error) {
	query := `
		SELECT id, chat_id, message_id, from_id, from_first_name, from_last_name,
		       from_username, text, photo_url, document_url, sent_at, direction, ai_state
		FROM messages
		WHERE chat_id = $1
		ORDER BY sent_at`

	rows, err := s.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	var result []*models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.ChatID,
			&msg.MessageID,
			&msg.From.ID,
			&msg.From.FirstName,
			&msg.From.LastName,
			&msg.From.Username,
			&msg.Text,
			&msg.PhotoURL,
			&msg.DocumentURL,
			&msg.Timestamp,
			&msg.Direction,
			&msg.DialogState,
		); err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		result = append(result, &msg)
	}
	return result, rows.Err()
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
