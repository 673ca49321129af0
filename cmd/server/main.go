package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gh-network/publications/internal/api"
	"github.com/gh-network/publications/internal/config"
	"github.com/gh-network/publications/internal/content"
	"github.com/gh-network/publications/internal/logging"
	"github.com/gh-network/publications/internal/service"
	"github.com/gh-network/publications/internal/storage"
	"github.com/gh-network/publications/internal/storage/inmemory"
	"github.com/gh-network/publications/internal/storage/natsobj"
	"github.com/gh-network/publications/internal/storage/postgres"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var publications storage.PublicationStore
	var comments storage.CommentStore

	logger.Info("Starting server", "storage", cfg.Storage, "images", cfg.Images)
	if cfg.Storage == config.StoragePostgres {
		db, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		defer db.Close() //nolint:errcheck
		publications, comments = db.Publications(), db.Comments()
	} else {
		publications, comments = inmemory.NewPublicationStore(), inmemory.NewCommentStore()
	}

	var images storage.ImageStore
	if cfg.Images == config.ImagesNATS {
		store, err := natsobj.New(ctx, cfg.NATSURL, cfg.ImagesBucket, cfg.ImagesBaseURL)
		if err != nil {
			return err
		}
		defer store.Close()
		images = store
	} else {
		images = inmemory.NewImageStore()
	}

	// У публикаций и комментариев свои минимальные длины, максимальная общая
	publicationValidator, err := content.NewLengthValidator(cfg.PublicationMinLength, cfg.ContentMaxLength)
	if err != nil {
		return err
	}
	commentValidator, err := content.NewLengthValidator(cfg.CommentMinLength, cfg.ContentMaxLength)
	if err != nil {
		return err
	}

	commentService := service.NewCommentService(logger, commentValidator, comments, publications)
	publicationService := service.NewPublicationService(logger, publicationValidator, content.Hashtags, publications, commentService, images)

	if cfg.Seed {
		// Заполним данными для тестов
		if err := fillWithMockData(ctx, logger, publicationService, commentService); err != nil {
			return err
		}
	}

	return api.NewServer(logger, publicationService, commentService, images).Run(ctx, ":"+cfg.Port)
}

func fillWithMockData(ctx context.Context, logger *slog.Logger, publications *service.PublicationService, comments *service.CommentService) error {
	// 1. Публикация с тегами и веткой обсуждения
	post, err := publications.Create(ctx, "Обсуждаем #go и #postgres: как хранить теги в jsonb", "user-1")
	if err != nil {
		return fmt.Errorf("fillWithMockData: failed to create publication: %w", err)
	}

	c1, err := comments.Create(ctx, post, "Отличный пост! Очень информативно.", nil, "user-2")
	if err != nil {
		return fmt.Errorf("fillWithMockData: failed to create comment 1: %w", err)
	}

	// 2. Ответ на первый комментарий
	if _, err := comments.Create(ctx, post, "Спасибо! Рад, что вам понравилось.", &c1, "user-1"); err != nil {
		return fmt.Errorf("fillWithMockData: failed to create reply: %w", err)
	}

	if _, err := comments.Create(ctx, post, "А как насчет индексов по тегам?", nil, "user-3"); err != nil {
		return fmt.Errorf("fillWithMockData: failed to create comment 2: %w", err)
	}

	// 3. Публикация без комментариев
	quiet, err := publications.Create(ctx, "Публикация без комментариев #quiet", "user-admin")
	if err != nil {
		return fmt.Errorf("fillWithMockData: failed to create quiet publication: %w", err)
	}

	logger.Info("Mock data filled successfully", "publication", post, "quiet_publication", quiet)
	return nil
}
