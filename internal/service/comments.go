package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gh-network/publications/internal/content"
	"github.com/gh-network/publications/internal/domain"
	"github.com/gh-network/publications/internal/storage"
)

// FeaturedLimit - сколько последних комментариев попадает в сводку публикации.
const FeaturedLimit = 3

var _ CommentPurger = (*CommentService)(nil)

// CommentService управляет комментариями и следит, чтобы ответ ссылался
// на комментарий той же публикации.
type CommentService struct {
	logger       *slog.Logger
	validator    content.Validator
	comments     storage.CommentStore
	publications storage.PublicationStore
	now          func() time.Time
}

func NewCommentService(
	logger *slog.Logger,
	validator content.Validator,
	comments storage.CommentStore,
	publications storage.PublicationStore,
) *CommentService {
	return &CommentService{
		logger:       logger.With("component", "service.CommentService"),
		validator:    validator,
		comments:     comments,
		publications: publications,
		now:          utcNow,
	}
}

// Create проверяет публикацию, цель ответа и текст, затем сохраняет комментарий.
func (s *CommentService) Create(ctx context.Context, publicationID, text string, replyCommentID *string, authorID string) (string, error) {
	if err := s.ensurePublication(ctx, publicationID); err != nil {
		return "", err
	}

	if replyCommentID != nil {
		ok, err := s.comments.IsCommentInPublication(ctx, *replyCommentID, publicationID)
		if err != nil {
			return "", fmt.Errorf("failed to check reply target %s: %w", *replyCommentID, err)
		}
		if !ok {
			return "", domain.ErrReplyTargetNotInPublication
		}
	}

	if err := s.validator.Validate(text); err != nil {
		return "", err
	}

	id, err := s.comments.InsertOne(ctx, &domain.Comment{
		Content:        text,
		PublicationID:  publicationID,
		ReplyCommentID: replyCommentID,
		AuthorID:       authorID,
		CreatedOn:      s.now(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to insert comment: %w", err)
	}

	s.logger.Debug("comment created", "id", id, "publication", publicationID)
	return id, nil
}

func (s *CommentService) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	comment, err := s.comments.FindOneByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, domain.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load comment %s: %w", id, err)
	}
	return comment, nil
}

// Search возвращает страницу комментариев. Если публикации нет - domain.ErrPublicationNotFound,
// что отличает "нет такой публикации" от "нет комментариев".
func (s *CommentService) Search(ctx context.Context, publicationID string, skip, take int) ([]*domain.Comment, int64, error) {
	if err := s.ensurePublication(ctx, publicationID); err != nil {
		return nil, 0, err
	}

	comments, total, err := s.comments.FindMany(ctx, publicationID, skip, take)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search comments of %s: %w", publicationID, err)
	}
	return comments, total, nil
}

// Delete удаляет один комментарий. Ответы на него остаются и ссылаются на удаленный id.
func (s *CommentService) Delete(ctx context.Context, id string) error {
	if err := s.comments.DeleteOne(ctx, id); err != nil {
		return fmt.Errorf("failed to delete comment %s: %w", id, err)
	}
	return nil
}

func (s *CommentService) DeleteByPublication(ctx context.Context, publicationID string) error {
	if err := s.comments.DeleteByPublication(ctx, publicationID); err != nil {
		return fmt.Errorf("failed to delete comments of %s: %w", publicationID, err)
	}
	return nil
}

// SearchFeatured одним запросом к хранилищу собирает сводки для набора публикаций.
func (s *CommentService) SearchFeatured(ctx context.Context, keys []string) (map[string]*domain.FeaturedInfo, error) {
	featured, err := s.comments.FindFeatured(ctx, keys, FeaturedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search featured comments: %w", err)
	}
	return featured, nil
}

func (s *CommentService) ensurePublication(ctx context.Context, publicationID string) error {
	_, err := s.publications.FindOneByID(ctx, publicationID)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.ErrPublicationNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load publication %s: %w", publicationID, err)
	}
	return nil
}
