package postgres

import (
	"context"

	"github.com/gh-network/publications/internal/domain"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"gorm.io/gorm"
)

// CommentStore реализует storage.CommentStore с использованием PostgreSQL.
type CommentStore struct {
	db *gorm.DB
}

func (s *CommentStore) InsertOne(ctx context.Context, comment *domain.Comment) (string, error) {
	c := comment.Clone()
	c.ID = uuid.NewString()
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return "", err
	}
	return c.ID, nil
}

func (s *CommentStore) FindOneByID(ctx context.Context, id string) (*domain.Comment, error) {
	var comment domain.Comment
	if err := s.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &comment, nil
}

func (s *CommentStore) FindMany(ctx context.Context, publicationID string, skip, take int) ([]*domain.Comment, int64, error) {
	query := s.db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("publication_id = ?", publicationID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []*domain.Comment
	err := query.
		Order("created_on ASC, id ASC").
		Offset(skip).
		Limit(take).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (s *CommentStore) IsCommentInPublication(ctx context.Context, commentID, publicationID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("id = ? AND publication_id = ?", commentID, publicationID).
		Count(&count).Error
	return count > 0, err
}

func (s *CommentStore) DeleteOne(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&domain.Comment{}, "id = ?", id).Error
}

func (s *CommentStore) DeleteByPublication(ctx context.Context, publicationID string) error {
	return s.db.WithContext(ctx).Delete(&domain.Comment{}, "publication_id = ?", publicationID).Error
}

// === Dataloader Method ===

func (s *CommentStore) FindFeatured(ctx context.Context, publicationIDs []string, limit int) (map[string]*domain.FeaturedInfo, error) {
	ids := lo.Uniq(publicationIDs)
	result := make(map[string]*domain.FeaturedInfo, len(ids))
	for _, id := range ids {
		result[id] = &domain.FeaturedInfo{Comments: []*domain.Comment{}}
	}
	if len(ids) == 0 {
		return result, nil
	}

	var counts []struct {
		PublicationID string
		Total         int64
	}
	err := s.db.WithContext(ctx).
		Model(&domain.Comment{}).
		Select("publication_id, COUNT(*) AS total").
		Where("publication_id IN ?", ids).
		Group("publication_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		result[c.PublicationID].TotalCount = c.Total
	}

	// Загружаем последние limit комментариев для всех публикаций одним запросом
	var comments []*domain.Comment
	err = s.db.WithContext(ctx).Raw(`
		SELECT id, content, publication_id, reply_comment_id, author_id, created_on
		FROM (
			SELECT c.*, ROW_NUMBER() OVER (PARTITION BY publication_id ORDER BY created_on DESC, id DESC) AS rn
			FROM comments c
			WHERE publication_id IN ?
		) ranked
		WHERE rn <= ?
		ORDER BY publication_id, created_on ASC, id ASC`, ids, limit).
		Scan(&comments).Error
	if err != nil {
		return nil, err
	}

	for _, c := range comments {
		info := result[c.PublicationID]
		info.Comments = append(info.Comments, c)
	}
	return result, nil
}
