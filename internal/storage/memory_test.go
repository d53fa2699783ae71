package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furnistudio/lead-inbox/internal/models"
)

func TestMemoryStorageImplementsStorage(t *testing.T) {
	var _ Storage = NewMemoryStorage()
	var _ Storage = &FileStorage{}
	var _ Storage = &PostgresStorage{}
}

func TestMemoryStorageUpsertAndGet(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	_, err := store.GetConversation(ctx, 5)
	assert.ErrorIs(t, err, ErrNotFound)

	conv := models.NewConversation(5, models.Sender{ID: 5, FirstName: "Olga"}, 100)
	require.NoError(t, store.UpsertConversation(ctx, conv))

	got, err := store.GetConversation(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Olga", got.FirstName)

	// The stored record is insulated from later caller mutation.
	conv.FirstName = "changed"
	again, err := store.GetConversation(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Olga", again.FirstName)
}

func TestMemoryStorageListOrderAndRead(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	older := models.NewConversation(1, models.Sender{ID: 1}, 100)
	older.UnreadCount = 2
	newer := models.NewConversation(2, models.Sender{ID: 2}, 900)
	require.NoError(t, store.UpsertConversation(ctx, older))
	require.NoError(t, store.UpsertConversation(ctx, newer))

	list, err := store.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].ChatID)

	require.NoError(t, store.MarkConversationRead(ctx, 1))
	got, err := store.GetConversation(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, got.UnreadCount)
}

func TestMemoryStorageMessages(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	require.NoError(t, store.SaveMessage(ctx, &models.Message{ID: "x", ChatID: 3, Text: "hi"}))
	require.NoError(t, store.SaveMessage(ctx, &models.Message{ID: "y", ChatID: 4, Text: "other"}))

	msgs, err := store.MessagesByChat(ctx, 3)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi", msgs[0].Text)

	empty, err := store.MessagesByChat(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
