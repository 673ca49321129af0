package api

import (
	"sync"

	"github.com/gh-network/publications/internal/domain"
	"github.com/google/uuid"
)

// CommentFeed рассылает новые комментарии подписчикам публикации.
type CommentFeed struct {
	mu     sync.RWMutex
	closed bool
	//          map[publicationID] map[subscriberID] channel
	subs map[string]map[string]chan *domain.Comment
}

func NewCommentFeed() *CommentFeed {
	return &CommentFeed{
		subs: make(map[string]map[string]chan *domain.Comment),
	}
}

// Subscribe регистрирует подписчика. Канал закрывается вызовом unsubscribe или Close.
func (f *CommentFeed) Subscribe(publicationID string) (<-chan *domain.Comment, func()) {
	ch := make(chan *domain.Comment, 8)
	subID := uuid.NewString()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		close(ch)
		return ch, func() {}
	}
	if f.subs[publicationID] == nil {
		f.subs[publicationID] = make(map[string]chan *domain.Comment)
	}
	f.subs[publicationID][subID] = ch
	liveSubscribers.Inc()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()

			publicationSubs, ok := f.subs[publicationID]
			if !ok {
				return
			}
			if sub, ok := publicationSubs[subID]; ok {
				close(sub)
				delete(publicationSubs, subID)
				liveSubscribers.Dec()
			}
			if len(publicationSubs) == 0 {
				delete(f.subs, publicationID)
			}
		})
	}
	return ch, unsubscribe
}

// Publish не блокируется: медленный подписчик пропускает комментарий.
func (f *CommentFeed) Publish(comment *domain.Comment) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, ch := range f.subs[comment.PublicationID] {
		select {
		case ch <- comment:
		default:
		}
	}
}

// CloseTopic закрывает подписки одной публикации, например после ее удаления.
func (f *CommentFeed) CloseTopic(publicationID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for subID, ch := range f.subs[publicationID] {
		close(ch)
		delete(f.subs[publicationID], subID)
		liveSubscribers.Dec()
	}
	delete(f.subs, publicationID)
}

// Close закрывает все подписки, новые подписки сразу получают закрытый канал.
func (f *CommentFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for publicationID, publicationSubs := range f.subs {
		for subID, ch := range publicationSubs {
			close(ch)
			delete(publicationSubs, subID)
			liveSubscribers.Dec()
		}
		delete(f.subs, publicationID)
	}
	f.closed = true
}
