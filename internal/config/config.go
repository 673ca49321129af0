package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
)

const (
	StorageInMemory = "in-memory"
	StoragePostgres = "postgres"

	ImagesMemory = "memory"
	ImagesNATS   = "nats"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Port     string
	LogLevel string

	Storage     string
	DatabaseURL string
	Seed        bool

	Images        string
	NATSURL       string
	ImagesBucket  string
	ImagesBaseURL string

	PublicationMinLength int
	CommentMinLength     int
	ContentMaxLength     int
}

// Load читает флаги из args и переменные окружения через getenv.
func Load(args []string, getenv func(string) string) (*Config, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	storageType := fs.String("storage", StorageInMemory, "Storage type (in-memory or postgres)")
	imagesType := fs.String("images", ImagesMemory, "Image storage type (memory or nats)")
	seed := fs.Bool("seed", false, "Fill in-memory storage with mock data")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:          envOr(getenv, "PORT", "8080"),
		LogLevel:      envOr(getenv, "LOG_LEVEL", "info"),
		Storage:       *storageType,
		DatabaseURL:   getenv("DATABASE_URL"),
		Seed:          *seed,
		Images:        *imagesType,
		NATSURL:       envOr(getenv, "NATS_URL", "nats://127.0.0.1:4222"),
		ImagesBucket:  envOr(getenv, "IMAGES_BUCKET", "publication-images"),
		ImagesBaseURL: getenv("IMAGES_BASE_URL"),
	}
	if cfg.ImagesBaseURL == "" {
		cfg.ImagesBaseURL = "http://localhost:" + cfg.Port + "/images"
	}

	var err error
	if cfg.PublicationMinLength, err = envInt(getenv, "PUBLICATION_MIN_LENGTH", 5); err != nil {
		return nil, err
	}
	if cfg.CommentMinLength, err = envInt(getenv, "COMMENT_MIN_LENGTH", 1); err != nil {
		return nil, err
	}
	if cfg.ContentMaxLength, err = envInt(getenv, "CONTENT_MAX_LENGTH", 5000); err != nil {
		return nil, err
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Storage {
	case StorageInMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL must be set for postgres storage", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage %q", ErrInvalidConfig, c.Storage)
	}

	switch c.Images {
	case ImagesMemory, ImagesNATS:
	default:
		return fmt.Errorf("%w: unknown image storage %q", ErrInvalidConfig, c.Images)
	}

	if c.Seed && c.Storage != StorageInMemory {
		return fmt.Errorf("%w: -seed works only with in-memory storage", ErrInvalidConfig)
	}
	if c.PublicationMinLength < 0 || c.CommentMinLength < 0 || c.ContentMaxLength < 0 {
		return fmt.Errorf("%w: length limits must not be negative", ErrInvalidConfig)
	}
	return nil
}

// FromEnv - Load для процесса: os.Args и os.Getenv.
func FromEnv() (*Config, error) {
	return Load(os.Args[1:], os.Getenv)
}

func envOr(getenv func(string) string, name, def string) string {
	if v := getenv(name); v != "" {
		return v
	}
	return def
}

func envInt(getenv func(string) string, name string, def int) (int, error) {
	v := getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, name, v)
	}
	return n, nil
}
