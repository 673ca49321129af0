package inmemory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gh-network/publications/internal/storage"
)

const imagesURLPrefix = "memory://images/"

var (
	_ storage.ImageStore  = (*ImageStore)(nil)
	_ storage.ImageReader = (*ImageStore)(nil)
)

// ImageStore хранит изображения в памяти процесса.
type ImageStore struct {
	mu     sync.RWMutex
	images map[string][]byte
}

func NewImageStore() *ImageStore {
	return &ImageStore{
		images: make(map[string][]byte),
	}
}

func (s *ImageStore) Upload(ctx context.Context, r io.Reader, fileName string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read image %s: %w", fileName, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[fileName] = data
	return imagesURLPrefix + fileName, nil
}

func (s *ImageStore) Delete(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.images, fileNameFromURL(url))
	return nil
}

func (s *ImageStore) Open(ctx context.Context, fileName string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.images[fileName]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Has сообщает, отдается ли еще изображение по этому url.
func (s *ImageStore) Has(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.images[fileNameFromURL(url)]
	return ok
}

func (s *ImageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}

func fileNameFromURL(url string) string {
	return url[strings.LastIndex(url, "/")+1:]
}
