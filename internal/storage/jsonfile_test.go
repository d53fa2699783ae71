package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furnistudio/lead-inbox/internal/models"
)

func TestFileStorageConversationRoundTrip(t *testing.T) {
	store, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.GetConversation(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	conv := models.NewConversation(42, models.Sender{ID: 7, FirstName: "Ivan"}, 1000)
	conv.Answers["question_0"] = "кухня"
	require.NoError(t, store.UpsertConversation(ctx, conv))

	got, err := store.GetConversation(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, models.StateGreeting, got.State)
	assert.Equal(t, "Ivan", got.FirstName)
	assert.Equal(t, "кухня", got.Answers["question_0"])

	got.State = models.StateQualify
	got.UnreadCount = 3
	require.NoError(t, store.UpsertConversation(ctx, got))

	updated, err := store.GetConversation(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, models.StateQualify, updated.State)
	assert.Equal(t, 3, updated.UnreadCount)
}

func TestFileStorageSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewFileStorage(dir)
	require.NoError(t, err)
	conv := models.NewConversation(1, models.Sender{ID: 1, FirstName: "Anna"}, 500)
	require.NoError(t, store.UpsertConversation(ctx, conv))
	require.NoError(t, store.SaveMessage(ctx, &models.Message{
		ID: "msg-1-1", ChatID: 1, Text: "привет", Timestamp: 500,
		Direction: models.DirectionIncoming,
	}))
	require.NoError(t, store.Close())

	reopened, err := NewFileStorage(dir)
	require.NoError(t, err)
	got, err := reopened.GetConversation(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Anna", got.FirstName)

	msgs, err := reopened.MessagesByChat(ctx, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "привет", msgs[0].Text)
}

func TestFileStorageListsNewestFirst(t *testing.T) {
	store, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for i, at := range []int64{100, 300, 200} {
		conv := models.NewConversation(int64(i+1), models.Sender{ID: int64(i + 1)}, at)
		require.NoError(t, store.UpsertConversation(ctx, conv))
	}

	list, err := store.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, int64(2), list[0].ChatID)
	assert.Equal(t, int64(3), list[1].ChatID)
	assert.Equal(t, int64(1), list[2].ChatID)
}

func TestFileStorageMarkRead(t *testing.T) {
	store, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	conv := models.NewConversation(9, models.Sender{ID: 9}, 100)
	conv.UnreadCount = 4
	require.NoError(t, store.UpsertConversation(ctx, conv))

	require.NoError(t, store.MarkConversationRead(ctx, 9))
	got, err := store.GetConversation(ctx, 9)
	require.NoError(t, err)
	assert.Zero(t, got.UnreadCount)

	// Unknown chat is a no-op, not an error.
	assert.NoError(t, store.MarkConversationRead(ctx, 404))
}

func TestFileStorageMessagesFilteredByChat(t *testing.T) {
	store, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, m := range []*models.Message{
		{ID: "a", ChatID: 1, Text: "один", Direction: models.DirectionIncoming},
		{ID: "b", ChatID: 2, Text: "два", Direction: models.DirectionIncoming},
		{ID: "c", ChatID: 1, Text: "три", Direction: models.DirectionOutgoing},
	} {
		require.NoError(t, store.SaveMessage(ctx, m))
	}

	msgs, err := store.MessagesByChat(ctx, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "один", msgs[0].Text)
	assert.Equal(t, "три", msgs[1].Text)
}
