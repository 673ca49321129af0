package dataloader

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gh-network/publications/internal/domain"
	"github.com/graph-gophers/dataloader"
)

type contextKey string

const key = contextKey("dataloaders")

var errNoLoaders = errors.New("dataloaders are not set in context")

// FeaturedSearcher - источник сводок комментариев, обычно service.CommentService.
type FeaturedSearcher interface {
	SearchFeatured(ctx context.Context, keys []string) (map[string]*domain.FeaturedInfo, error)
}

// Loaders содержит все дата-лоадеры приложения.
type Loaders struct {
	FeaturedByPublicationID *dataloader.Loader
}

// NewLoaders создает лоадеры для одного запроса. opts дополняют и переопределяют окно ожидания по умолчанию.
func NewLoaders(searcher FeaturedSearcher, opts ...dataloader.Option) *Loaders {
	// Создаем батч-функцию для лоадера
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		publicationIDs := keys.Keys()

		// Вызываем сервис, который делает ОДИН запрос к хранилищу
		featured, err := searcher.SearchFeatured(ctx, publicationIDs)
		results := make([]*dataloader.Result, len(keys))
		if err != nil {
			// В случае ошибки, возвращаем ее для всех ключей
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Формируем результат в том же порядке, что и ключи
		for i, id := range publicationIDs {
			info, ok := featured[id]
			if !ok {
				info = &domain.FeaturedInfo{Comments: []*domain.Comment{}}
			}
			results[i] = &dataloader.Result{Data: info}
		}
		return results
	}

	opts = append([]dataloader.Option{dataloader.WithWait(time.Millisecond)}, opts...)
	return &Loaders{
		FeaturedByPublicationID: dataloader.NewBatchedLoader(batchFn, opts...),
	}
}

// Middleware для внедрения лоадеров в контекст запроса.
func Middleware(searcher FeaturedSearcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), key, NewLoaders(searcher))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// For извлекает лоадеры из контекста.
func For(ctx context.Context) *Loaders {
	loaders, _ := ctx.Value(key).(*Loaders)
	return loaders
}

// LoadFeatured запрашивает сводку для каждой публикации отдельным Load и разрешает
// thunk'и только после цикла. Все ключи, пришедшие в окно ожидания (в том числе из других
// вызовов в рамках того же запроса), уходят в хранилище одним батчем.
func LoadFeatured(ctx context.Context, publicationIDs []string) (map[string]*domain.FeaturedInfo, error) {
	loaders := For(ctx)
	if loaders == nil {
		return nil, errNoLoaders
	}

	thunks := make([]dataloader.Thunk, len(publicationIDs))
	for i, id := range publicationIDs {
		thunks[i] = loaders.FeaturedByPublicationID.Load(ctx, dataloader.StringKey(id))
	}

	result := make(map[string]*domain.FeaturedInfo, len(publicationIDs))
	for i, thunk := range thunks {
		v, err := thunk()
		if err != nil {
			return nil, err
		}
		if info, ok := v.(*domain.FeaturedInfo); ok {
			result[publicationIDs[i]] = info
		}
	}
	return result, nil
}
