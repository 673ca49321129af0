package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/gh-network/publications/internal/content"
	"github.com/gh-network/publications/internal/storage"
	"github.com/gh-network/publications/internal/storage/inmemory"

	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend unavailable")

type testEnv struct {
	publications *inmemory.PublicationStore
	comments     *inmemory.CommentStore
	images       *inmemory.ImageStore

	publicationService *PublicationService
	commentService     *CommentService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEnv собирает сервисы поверх in-memory хранилищ, минимальная длина текста - 3.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	validator, err := content.NewLengthValidator(3, 0)
	require.NoError(t, err)

	env := &testEnv{
		publications: inmemory.NewPublicationStore(),
		comments:     inmemory.NewCommentStore(),
		images:       inmemory.NewImageStore(),
	}
	env.commentService = NewCommentService(discardLogger(), validator, env.comments, env.publications)
	env.publicationService = NewPublicationService(discardLogger(), validator, content.Hashtags,
		env.publications, env.commentService, env.images)
	return env
}

// recorder записывает порядок вызовов хранилищ при каскадном удалении.
type recorder struct {
	calls []string
}

type recordingImages struct {
	storage.ImageStore
	rec *recorder
	err error
}

func (r *recordingImages) Delete(ctx context.Context, url string) error {
	r.rec.calls = append(r.rec.calls, "images.Delete")
	if r.err != nil {
		return r.err
	}
	return r.ImageStore.Delete(ctx, url)
}

type recordingComments struct {
	storage.CommentStore
	rec *recorder
}

func (r *recordingComments) DeleteByPublication(ctx context.Context, publicationID string) error {
	r.rec.calls = append(r.rec.calls, "comments.DeleteByPublication")
	return r.CommentStore.DeleteByPublication(ctx, publicationID)
}

type recordingPublications struct {
	storage.PublicationStore
	rec *recorder
	// lostRace заставляет UpdateImagesURL сообщить, что изображение уже записано другим вызовом
	lostRace bool
}

func (r *recordingPublications) DeleteOne(ctx context.Context, id string) error {
	r.rec.calls = append(r.rec.calls, "publications.DeleteOne")
	return r.PublicationStore.DeleteOne(ctx, id)
}

func (r *recordingPublications) UpdateImagesURL(ctx context.Context, id, url string) (bool, error) {
	if r.lostRace {
		return false, nil
	}
	return r.PublicationStore.UpdateImagesURL(ctx, id, url)
}

type failingImages struct{}

func (failingImages) Upload(context.Context, io.Reader, string) (string, error) {
	return "", errBackend
}

func (failingImages) Delete(context.Context, string) error {
	return errBackend
}
