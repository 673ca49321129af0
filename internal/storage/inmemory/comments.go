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

type commentEntry struct {
	seq     uint64
	comment *domain.Comment
}

var _ storage.CommentStore = (*CommentStore)(nil)

// CommentStore реализует storage.CommentStore в памяти.
type CommentStore struct {
	mu                    sync.RWMutex
	seq                   uint64
	comments              map[string]*commentEntry
	commentsByPublication map[string][]string // map[publicationID][]commentID в порядке вставки
}

// NewCommentStore создает новый экземпляр in-memory хранилища комментариев.
func NewCommentStore() *CommentStore {
	return &CommentStore{
		comments:              make(map[string]*commentEntry),
		commentsByPublication: make(map[string][]string),
	}
}

func (s *CommentStore) InsertOne(ctx context.Context, comment *domain.Comment) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := comment.Clone()
	c.ID = uuid.NewString()
	s.seq++
	s.comments[c.ID] = &commentEntry{seq: s.seq, comment: c}
	s.commentsByPublication[c.PublicationID] = append(s.commentsByPublication[c.PublicationID], c.ID)
	return c.ID, nil
}

func (s *CommentStore) FindOneByID(ctx context.Context, id string) (*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.comments[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return e.comment.Clone(), nil
}

func (s *CommentStore) FindMany(ctx context.Context, publicationID string, skip, take int) ([]*domain.Comment, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.byPublication(publicationID)
	return cloneComments(paginate(all, skip, take)), int64(len(all)), nil
}

func (s *CommentStore) IsCommentInPublication(ctx context.Context, commentID, publicationID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.comments[commentID]
	return ok && e.comment.PublicationID == publicationID, nil
}

func (s *CommentStore) DeleteOne(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.comments[id]
	if !ok {
		return nil
	}
	delete(s.comments, id)

	pubID := e.comment.PublicationID
	rest := lo.Without(s.commentsByPublication[pubID], id)
	if len(rest) == 0 {
		delete(s.commentsByPublication, pubID)
	} else {
		s.commentsByPublication[pubID] = rest
	}
	return nil
}

func (s *CommentStore) DeleteByPublication(ctx context.Context, publicationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.commentsByPublication[publicationID] {
		delete(s.comments, id)
	}
	delete(s.commentsByPublication, publicationID)
	return nil
}

// === Dataloader Methods ===

func (s *CommentStore) FindFeatured(ctx context.Context, publicationIDs []string, limit int) (map[string]*domain.FeaturedInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make(map[string]*domain.FeaturedInfo, len(publicationIDs))
	for _, pubID := range lo.Uniq(publicationIDs) {
		all := s.byPublication(pubID)
		start := len(all) - limit
		if start < 0 {
			start = 0
		}
		results[pubID] = &domain.FeaturedInfo{
			Comments:   cloneComments(all[start:]),
			TotalCount: int64(len(all)),
		}
	}
	return results, nil
}

// byPublication возвращает комментарии публикации по возрастанию даты создания.
// Вызывать под блокировкой.
func (s *CommentStore) byPublication(publicationID string) []*domain.Comment {
	ids := s.commentsByPublication[publicationID]
	entries := make([]*commentEntry, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.comments[id]; ok {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.comment.CreatedOn.Equal(b.comment.CreatedOn) {
			return a.seq < b.seq
		}
		return a.comment.CreatedOn.Before(b.comment.CreatedOn)
	})
	return lo.Map(entries, func(e *commentEntry, _ int) *domain.Comment {
		return e.comment
	})
}

func cloneComments(comments []*domain.Comment) []*domain.Comment {
	return lo.Map(comments, func(c *domain.Comment, _ int) *domain.Comment {
		return c.Clone()
	})
}
