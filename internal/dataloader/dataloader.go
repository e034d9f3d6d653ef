package dataloader

import (
	"context"
	"net/http"
	"time"

	"github.com/UkralStul/circle-replies-service/internal/domain"
	"github.com/UkralStul/circle-replies-service/internal/storage"
	"github.com/graph-gophers/dataloader"
)

type contextKey string

const key = contextKey("dataloaders")

// Loaders содержит все дата-лоадеры запроса.
type Loaders struct {
	UserByID *dataloader.Loader
}

// NewLoaders создаёт лоадеры поверх хранилища пользователей.
// Все Load в пределах окна wait склеиваются в один вызов UserProjections.
func NewLoaders(store storage.UserStore) *Loaders {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := keys.Keys()

		// Один запрос к хранилищу на весь батч
		refs, err := store.UserProjections(ctx, ids)
		if err != nil {
			results := make([]*dataloader.Result, len(keys))
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Результаты в том же порядке, что и ключи; отсутствующим - nil
		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			results[i] = &dataloader.Result{Data: refs[id]}
		}
		return results
	}

	return &Loaders{
		UserByID: dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(time.Millisecond)),
	}
}

// LoadUsers загружает проекции пользователей через батч-лоадер.
func (l *Loaders) LoadUsers(ctx context.Context, ids []string) (map[string]*domain.UserRef, error) {
	result := make(map[string]*domain.UserRef, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	values, errs := l.UserByID.LoadMany(ctx, dataloader.NewKeysFromStrings(ids))()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	for i, v := range values {
		if ref, ok := v.(*domain.UserRef); ok && ref != nil {
			result[ids[i]] = ref
		}
	}
	return result, nil
}

// Middleware для внедрения лоадеров в контекст запроса.
func Middleware(store storage.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLoaders(r.Context(), NewLoaders(store))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithLoaders кладёт лоадеры в контекст.
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, key, loaders)
}

// For извлекает лоадеры из контекста. nil, если middleware не подключён.
func For(ctx context.Context) *Loaders {
	loaders, _ := ctx.Value(key).(*Loaders)
	return loaders
}
