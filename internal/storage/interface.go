package storage

import (
	"context"
	"errors"
	"io"

	"github.com/gh-network/publications/internal/domain"
)

// ErrNotFound возвращается хранилищами, когда запись отсутствует.
var ErrNotFound = errors.New("record not found")

// SearchArgs - аргументы для пагинации и фильтрации публикаций.
type SearchArgs struct {
	Skip  int
	Take  int
	Order domain.Ordering
}

// PublicationStore определяет контракт хранилища публикаций.
type PublicationStore interface {
	InsertOne(ctx context.Context, publication *domain.Publication) (string, error)
	FindOneByID(ctx context.Context, id string) (*domain.Publication, error)
	// FindMany возвращает публикации, содержащие все теги из tags, и общее число таких публикаций.
	FindMany(ctx context.Context, tags []string, args SearchArgs) ([]*domain.Publication, int64, error)
	FindManyByAuthor(ctx context.Context, authorID string, args SearchArgs) ([]*domain.Publication, int64, error)
	UpdateOne(ctx context.Context, publication *domain.Publication) error

	// UpdateImagesURL записывает url, только если у публикации еще нет изображения.
	// Возвращает false, если изображение уже есть.
	UpdateImagesURL(ctx context.Context, id, url string) (bool, error)
	DeleteImagesURL(ctx context.Context, id string) error
	DeleteOne(ctx context.Context, id string) error
}

// CommentStore определяет контракт хранилища комментариев.
type CommentStore interface {
	InsertOne(ctx context.Context, comment *domain.Comment) (string, error)
	FindOneByID(ctx context.Context, id string) (*domain.Comment, error)
	// FindMany возвращает страницу комментариев публикации по возрастанию даты создания.
	FindMany(ctx context.Context, publicationID string, skip, take int) ([]*domain.Comment, int64, error)
	IsCommentInPublication(ctx context.Context, commentID, publicationID string) (bool, error)
	DeleteOne(ctx context.Context, id string) error
	DeleteByPublication(ctx context.Context, publicationID string) error

	// Метод для Dataloader'а: последние limit комментариев и их общее число для каждой публикации.
	FindFeatured(ctx context.Context, publicationIDs []string, limit int) (map[string]*domain.FeaturedInfo, error)
}

// ImageStore определяет контракт хранилища изображений.
type ImageStore interface {
	Upload(ctx context.Context, r io.Reader, fileName string) (string, error)
	// Delete не возвращает ошибку, если изображения уже нет.
	Delete(ctx context.Context, url string) error
}

// ImageReader реализуют хранилища, способные сами отдавать изображения.
type ImageReader interface {
	Open(ctx context.Context, fileName string) (io.ReadCloser, error)
}
