package inmemory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gh-network/publications/internal/domain"
	"github.com/gh-network/publications/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertComment(t *testing.T, store *CommentStore, publicationID, content string, replyTo *string) string {
	t.Helper()
	id, err := store.InsertOne(context.Background(), &domain.Comment{
		PublicationID:  publicationID,
		ReplyCommentID: replyTo,
		AuthorID:       "user-2",
		Content:        content,
		CreatedOn:      time.Now().UTC(),
	})
	require.NoError(t, err)
	return id
}

func TestCommentStore_InsertAndFind(t *testing.T) {
	store := NewCommentStore()
	ctx := context.Background()

	id := insertComment(t, store, "pub-1", "First comment!", nil)

	comment, err := store.FindOneByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "First comment!", comment.Content)
	assert.Equal(t, "pub-1", comment.PublicationID)

	_, err = store.FindOneByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCommentStore_IsCommentInPublication(t *testing.T) {
	store := NewCommentStore()
	ctx := context.Background()

	parent := insertComment(t, store, "pub-1", "Parent", nil)

	ok, err := store.IsCommentInPublication(ctx, parent, "pub-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.IsCommentInPublication(ctx, parent, "pub-2")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.IsCommentInPublication(ctx, "missing", "pub-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCommentStore_Pagination(t *testing.T) {
	store := NewCommentStore()
	ctx := context.Background()

	// Создаем 5 комментариев
	for i := 0; i < 5; i++ {
		insertComment(t, store, "pub-1", fmt.Sprintf("comment %d", i), nil)
	}
	insertComment(t, store, "pub-2", "other", nil)

	firstPage, total, err := store.FindMany(ctx, "pub-1", 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, firstPage, 2)
	assert.Equal(t, "comment 0", firstPage[0].Content)

	secondPage, _, err := store.FindMany(ctx, "pub-1", 2, 3)
	require.NoError(t, err)
	require.Len(t, secondPage, 3)
	assert.Equal(t, "comment 2", secondPage[0].Content)

	// Убеждаемся, что ID не пересекаются
	assert.NotEqual(t, firstPage[1].ID, secondPage[0].ID)
}

func TestCommentStore_DeleteOneLeavesRepliesDangling(t *testing.T) {
	store := NewCommentStore()
	ctx := context.Background()

	parent := insertComment(t, store, "pub-1", "Parent", nil)
	child := insertComment(t, store, "pub-1", "Child", &parent)

	require.NoError(t, store.DeleteOne(ctx, parent))
	assert.NoError(t, store.DeleteOne(ctx, parent))

	reply, err := store.FindOneByID(ctx, child)
	require.NoError(t, err)
	assert.Equal(t, parent, *reply.ReplyCommentID)

	_, total, err := store.FindMany(ctx, "pub-1", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestCommentStore_DeleteByPublicationIsIdempotent(t *testing.T) {
	store := NewCommentStore()
	ctx := context.Background()

	insertComment(t, store, "pub-1", "a", nil)
	insertComment(t, store, "pub-1", "b", nil)
	kept := insertComment(t, store, "pub-2", "c", nil)

	for i := 0; i < 2; i++ {
		require.NoError(t, store.DeleteByPublication(ctx, "pub-1"))
		_, total, err := store.FindMany(ctx, "pub-1", 0, 10)
		require.NoError(t, err)
		assert.Zero(t, total)
	}

	_, err := store.FindOneByID(ctx, kept)
	assert.NoError(t, err)
}

func TestCommentStore_FindFeatured(t *testing.T) {
	store := NewCommentStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		insertComment(t, store, "pub-1", fmt.Sprintf("comment %d", i), nil)
	}
	insertComment(t, store, "pub-2", "single", nil)

	featured, err := store.FindFeatured(ctx, []string{"pub-1", "pub-2", "pub-3", "pub-1"}, 3)
	require.NoError(t, err)
	require.Len(t, featured, 3)

	assert.EqualValues(t, 5, featured["pub-1"].TotalCount)
	require.Len(t, featured["pub-1"].Comments, 3)
	assert.Equal(t, "comment 2", featured["pub-1"].Comments[0].Content)
	assert.Equal(t, "comment 4", featured["pub-1"].Comments[2].Content)

	assert.EqualValues(t, 1, featured["pub-2"].TotalCount)
	assert.Len(t, featured["pub-2"].Comments, 1)

	assert.Zero(t, featured["pub-3"].TotalCount)
	assert.Empty(t, featured["pub-3"].Comments)
}
