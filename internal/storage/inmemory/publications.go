package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/gh-network/publications/internal/domain"
	"github.com/gh-network/publications/internal/storage"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type publicationEntry struct {
	seq         uint64
	publication *domain.Publication
}

var _ storage.PublicationStore = (*PublicationStore)(nil)

// PublicationStore реализует storage.PublicationStore в памяти.
type PublicationStore struct {
	mu           sync.RWMutex
	seq          uint64
	publications map[string]*publicationEntry
}

// NewPublicationStore создает новый экземпляр in-memory хранилища публикаций.
func NewPublicationStore() *PublicationStore {
	return &PublicationStore{
		publications: make(map[string]*publicationEntry),
	}
}

func (s *PublicationStore) InsertOne(ctx context.Context, publication *domain.Publication) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := publication.Clone()
	p.ID = uuid.NewString()
	s.seq++
	s.publications[p.ID] = &publicationEntry{seq: s.seq, publication: p}
	return p.ID, nil
}

func (s *PublicationStore) FindOneByID(ctx context.Context, id string) (*domain.Publication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.publications[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return e.publication.Clone(), nil
}

func (s *PublicationStore) FindMany(ctx context.Context, tags []string, args storage.SearchArgs) ([]*domain.Publication, int64, error) {
	return s.find(args, func(p *domain.Publication) bool {
		return lo.Every(p.Tags, tags)
	})
}

func (s *PublicationStore) FindManyByAuthor(ctx context.Context, authorID string, args storage.SearchArgs) ([]*domain.Publication, int64, error) {
	return s.find(args, func(p *domain.Publication) bool {
		return p.AuthorID == authorID
	})
}

func (s *PublicationStore) UpdateOne(ctx context.Context, publication *domain.Publication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.publications[publication.ID]
	if !ok {
		return storage.ErrNotFound
	}
	// Изображение меняется только через UpdateImagesURL/DeleteImagesURL.
	updated := publication.Clone()
	updated.ImagesURL = e.publication.ImagesURL
	e.publication = updated
	return nil
}

func (s *PublicationStore) UpdateImagesURL(ctx context.Context, id, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.publications[id]
	if !ok {
		return false, storage.ErrNotFound
	}
	if e.publication.HasImage() {
		return false, nil
	}
	e.publication.ImagesURL = &url
	return true, nil
}

func (s *PublicationStore) DeleteImagesURL(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.publications[id]; ok {
		e.publication.ImagesURL = nil
	}
	return nil
}

func (s *PublicationStore) DeleteOne(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.publications, id)
	return nil
}

func (s *PublicationStore) find(args storage.SearchArgs, match func(*domain.Publication) bool) ([]*domain.Publication, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*publicationEntry, 0, len(s.publications))
	for _, e := range s.publications {
		if match(e.publication) {
			matched = append(matched, e)
		}
	}

	// Сортируем по времени создания, при равенстве - по порядку вставки
	before := func(a, b *publicationEntry) bool {
		if a.publication.CreatedOn.Equal(b.publication.CreatedOn) {
			return a.seq < b.seq
		}
		return a.publication.CreatedOn.Before(b.publication.CreatedOn)
	}
	sort.Slice(matched, func(i, j int) bool {
		if args.Order == domain.Descending {
			return before(matched[j], matched[i])
		}
		return before(matched[i], matched[j])
	})

	page := paginate(matched, args.Skip, args.Take)
	return lo.Map(page, func(e *publicationEntry, _ int) *domain.Publication {
		return e.publication.Clone()
	}), int64(len(matched)), nil
}

// paginate - вспомогательная функция для пагинации
func paginate[T any](items []T, skip, take int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) || take <= 0 {
		return []T{}
	}
	end := skip + take
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}
