// Package natsobj хранит изображения публикаций в NATS JetStream Object Store.
package natsobj

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gh-network/publications/internal/storage"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

var (
	_ storage.ImageStore  = (*ImageStore)(nil)
	_ storage.ImageReader = (*ImageStore)(nil)
)

type ImageStore struct {
	nc      *nats.Conn
	obs     jetstream.ObjectStore
	baseURL string
}

// New подключается к NATS и открывает (или создает) бакет.
// baseURL - внешний адрес, по которому API отдает изображения, например http://localhost:8080/images.
func New(ctx context.Context, url, bucket, baseURL string) (*ImageStore, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, err
	}

	obs, err := js.ObjectStore(ctx, bucket)
	if errors.Is(err, jetstream.ErrBucketNotFound) {
		obs, err = js.CreateObjectStore(ctx, jetstream.ObjectStoreConfig{
			Bucket:      bucket,
			Description: "publication images",
		})
	}
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to open object store %s: %w", bucket, err)
	}

	return &ImageStore{
		nc:      nc,
		obs:     obs,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (s *ImageStore) Upload(ctx context.Context, r io.Reader, fileName string) (string, error) {
	_, err := s.obs.Put(ctx, jetstream.ObjectMeta{Name: fileName}, r)
	if err != nil {
		return "", fmt.Errorf("failed to store image %s: %w", fileName, err)
	}
	return s.baseURL + "/" + fileName, nil
}

func (s *ImageStore) Delete(ctx context.Context, url string) error {
	name := url[strings.LastIndex(url, "/")+1:]
	err := s.obs.Delete(ctx, name)
	if err != nil && !errors.Is(err, jetstream.ErrObjectNotFound) {
		return fmt.Errorf("failed to delete image %s: %w", name, err)
	}
	return nil
}

func (s *ImageStore) Open(ctx context.Context, fileName string) (io.ReadCloser, error) {
	res, err := s.obs.Get(ctx, fileName)
	if errors.Is(err, jetstream.ErrObjectNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ImageStore) Close() {
	s.nc.Close()
}
