package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gh-network/publications/internal/content"
	"github.com/gh-network/publications/internal/domain"
	"github.com/gh-network/publications/internal/storage"
	"github.com/google/uuid"
)

// CommentPurger удаляет все комментарии публикации. В приложении это CommentService.
type CommentPurger interface {
	DeleteByPublication(ctx context.Context, publicationID string) error
}

// PublicationService управляет жизненным циклом публикаций: текст, теги,
// изображение и каскадное удаление комментариев.
type PublicationService struct {
	logger       *slog.Logger
	validator    content.Validator
	extractTags  content.TagExtractor
	publications storage.PublicationStore
	comments     CommentPurger
	images       storage.ImageStore
	now          func() time.Time
}

func NewPublicationService(
	logger *slog.Logger,
	validator content.Validator,
	extractTags content.TagExtractor,
	publications storage.PublicationStore,
	comments CommentPurger,
	images storage.ImageStore,
) *PublicationService {
	return &PublicationService{
		logger:       logger.With("component", "service.PublicationService"),
		validator:    validator,
		extractTags:  extractTags,
		publications: publications,
		comments:     comments,
		images:       images,
		now:          utcNow,
	}
}

func (s *PublicationService) GetByID(ctx context.Context, id string) (*domain.Publication, error) {
	return s.find(ctx, id)
}

func (s *PublicationService) Search(ctx context.Context, skip, take int, tags []string, order domain.Ordering) ([]*domain.Publication, int64, error) {
	list, total, err := s.publications.FindMany(ctx, tags, storage.SearchArgs{Skip: skip, Take: take, Order: order})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search publications: %w", err)
	}
	return list, total, nil
}

func (s *PublicationService) SearchByAuthor(ctx context.Context, skip, take int, authorID string, order domain.Ordering) ([]*domain.Publication, int64, error) {
	list, total, err := s.publications.FindManyByAuthor(ctx, authorID, storage.SearchArgs{Skip: skip, Take: take, Order: order})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search publications of %s: %w", authorID, err)
	}
	return list, total, nil
}

// Create проверяет текст и сохраняет новую публикацию. При ошибке валидации ничего не пишется.
func (s *PublicationService) Create(ctx context.Context, text, authorID string) (string, error) {
	if err := s.validator.Validate(text); err != nil {
		return "", err
	}

	publication := domain.NewPublication(text, authorID, content.Tags(s.extractTags, text), s.now())
	id, err := s.publications.InsertOne(ctx, publication)
	if err != nil {
		return "", fmt.Errorf("failed to insert publication: %w", err)
	}

	s.logger.Debug("publication created", "id", id, "author", authorID, "tags", publication.Tags)
	return id, nil
}

func (s *PublicationService) Update(ctx context.Context, id, text string) error {
	publication, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(text); err != nil {
		return err
	}

	publication.Update(text, content.Tags(s.extractTags, text), s.now())
	if err := s.publications.UpdateOne(ctx, publication); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.ErrPublicationNotFound
		}
		return fmt.Errorf("failed to update publication %s: %w", id, err)
	}
	return nil
}

// Delete удаляет изображение, затем комментарии, затем саму публикацию.
// Каждый шаг идемпотентен, поэтому после ошибки вызов можно повторить.
func (s *PublicationService) Delete(ctx context.Context, id string) error {
	publication, err := s.publications.FindOneByID(ctx, id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to load publication %s: %w", id, err)
	}

	if publication != nil && publication.HasImage() {
		if err := s.images.Delete(ctx, *publication.ImagesURL); err != nil {
			s.logger.Warn("failed to delete publication image", "id", id, "url", *publication.ImagesURL, "error", err)
			return fmt.Errorf("failed to delete image of publication %s: %w", id, err)
		}
		s.logger.Debug("publication image deleted", "id", id)
	}

	if err := s.comments.DeleteByPublication(ctx, id); err != nil {
		s.logger.Warn("failed to delete publication comments", "id", id, "error", err)
		return fmt.Errorf("failed to delete comments of publication %s: %w", id, err)
	}
	s.logger.Debug("publication comments deleted", "id", id)

	if err := s.publications.DeleteOne(ctx, id); err != nil {
		return fmt.Errorf("failed to delete publication %s: %w", id, err)
	}
	s.logger.Debug("publication deleted", "id", id)
	return nil
}

// AttachImage загружает изображение под новым уникальным именем и сохраняет его url.
// У публикации может быть только одно изображение.
func (s *PublicationService) AttachImage(ctx context.Context, id string, r io.Reader, extension string) error {
	publication, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if publication.HasImage() {
		return domain.ErrImageAlreadyExists
	}

	fileName := uuid.NewString() + normalizeExtension(extension)
	url, err := s.images.Upload(ctx, r, fileName)
	if err != nil {
		return fmt.Errorf("failed to upload image for publication %s: %w", id, err)
	}

	written, err := s.publications.UpdateImagesURL(ctx, id, url)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.discardImage(ctx, id, url)
		return domain.ErrPublicationNotFound
	case err != nil:
		s.discardImage(ctx, id, url)
		return fmt.Errorf("failed to save image url of publication %s: %w", id, err)
	case !written:
		// Параллельный вызов успел записать свое изображение раньше
		s.discardImage(ctx, id, url)
		return domain.ErrImageAlreadyExists
	}
	return nil
}

// DetachImage удаляет изображение публикации, если оно есть.
func (s *PublicationService) DetachImage(ctx context.Context, id string) error {
	publication, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !publication.HasImage() {
		return nil
	}

	if err := s.images.Delete(ctx, *publication.ImagesURL); err != nil {
		return fmt.Errorf("failed to delete image of publication %s: %w", id, err)
	}
	if err := s.publications.DeleteImagesURL(ctx, id); err != nil {
		return fmt.Errorf("failed to clear image url of publication %s: %w", id, err)
	}
	return nil
}

func (s *PublicationService) find(ctx context.Context, id string) (*domain.Publication, error) {
	publication, err := s.publications.FindOneByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, domain.ErrPublicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load publication %s: %w", id, err)
	}
	return publication, nil
}

func (s *PublicationService) discardImage(ctx context.Context, id, url string) {
	if err := s.images.Delete(ctx, url); err != nil {
		s.logger.Warn("failed to discard uploaded image", "id", id, "url", url, "error", err)
	}
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

func utcNow() time.Time {
	return time.Now().UTC()
}
