package postgres

import (
	"errors"
	"fmt"

	"github.com/gh-network/publications/internal/domain"
	"github.com/gh-network/publications/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	_ storage.PublicationStore = (*PublicationStore)(nil)
	_ storage.CommentStore     = (*CommentStore)(nil)
)

// DB - подключение к PostgreSQL, общее для хранилищ публикаций и комментариев.
type DB struct {
	db *gorm.DB
}

// New подключается к базе и выполняет миграцию схемы.
func New(dsn string) (*DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Publication{}, &domain.Comment{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &DB{db: db}, nil
}

func (d *DB) Publications() *PublicationStore {
	return &PublicationStore{db: d.db}
}

func (d *DB) Comments() *CommentStore {
	return &CommentStore{db: d.db}
}

func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// notFound переводит gorm.ErrRecordNotFound в storage.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.ErrNotFound
	}
	return err
}
