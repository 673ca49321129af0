package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gh-network/publications/internal/domain"
	"github.com/gh-network/publications/internal/storage"
	"github.com/google/uuid"

	"gorm.io/gorm"
)

// PublicationStore реализует storage.PublicationStore с использованием PostgreSQL.
type PublicationStore struct {
	db *gorm.DB
}

func (s *PublicationStore) InsertOne(ctx context.Context, publication *domain.Publication) (string, error) {
	p := publication.Clone()
	p.ID = uuid.NewString()
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return "", err
	}
	return p.ID, nil
}

func (s *PublicationStore) FindOneByID(ctx context.Context, id string) (*domain.Publication, error) {
	var publication domain.Publication
	if err := s.db.WithContext(ctx).First(&publication, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &publication, nil
}

func (s *PublicationStore) FindMany(ctx context.Context, tags []string, args storage.SearchArgs) ([]*domain.Publication, int64, error) {
	query := s.db.WithContext(ctx).Model(&domain.Publication{})
	if len(tags) > 0 {
		// jsonb @> проверяет, что среди тегов публикации есть все запрошенные
		raw, err := json.Marshal(tags)
		if err != nil {
			return nil, 0, err
		}
		query = query.Where("tags @> ?::jsonb", string(raw))
	}
	return s.page(query, args)
}

func (s *PublicationStore) FindManyByAuthor(ctx context.Context, authorID string, args storage.SearchArgs) ([]*domain.Publication, int64, error) {
	query := s.db.WithContext(ctx).Model(&domain.Publication{}).Where("author_id = ?", authorID)
	return s.page(query, args)
}

func (s *PublicationStore) UpdateOne(ctx context.Context, publication *domain.Publication) error {
	// Изображение меняется только через UpdateImagesURL/DeleteImagesURL.
	res := s.db.WithContext(ctx).
		Model(&domain.Publication{ID: publication.ID}).
		Select("content", "tags", "updated_on").
		Updates(publication)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *PublicationStore) UpdateImagesURL(ctx context.Context, id, url string) (bool, error) {
	// Условное обновление закрывает гонку между проверкой и записью
	res := s.db.WithContext(ctx).
		Model(&domain.Publication{}).
		Where("id = ? AND images_url IS NULL", id).
		Update("images_url", url)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.Publication{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, storage.ErrNotFound
	}
	return false, nil
}

func (s *PublicationStore) DeleteImagesURL(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).
		Model(&domain.Publication{}).
		Where("id = ?", id).
		Update("images_url", gorm.Expr("NULL")).Error
}

func (s *PublicationStore) DeleteOne(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&domain.Publication{}, "id = ?", id).Error
}

func (s *PublicationStore) page(query *gorm.DB, args storage.SearchArgs) ([]*domain.Publication, int64, error) {
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count publications: %w", err)
	}

	direction := "ASC"
	if args.Order == domain.Descending {
		direction = "DESC"
	}

	var publications []*domain.Publication
	err := query.
		Order("created_on " + direction).
		Order("id " + direction).
		Offset(args.Skip).
		Limit(args.Take).
		Find(&publications).Error
	if err != nil {
		return nil, 0, err
	}
	return publications, total, nil
}
