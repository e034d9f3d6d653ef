package reply

import (
	"context"

	"github.com/UkralStul/circle-replies-service/internal/domain"
	"github.com/UkralStul/circle-replies-service/internal/storage"
)

// CounterSync поддерживает денормализованный счётчик post.replies.
// Инкремент атомарен на стороне хранилища, чтение-изменение-запись здесь не делается.
type CounterSync struct {
	posts storage.PostStore
}

func NewCounterSync(posts storage.PostStore) *CounterSync {
	return &CounterSync{posts: posts}
}

func (c *CounterSync) Increment(ctx context.Context, postID string) error {
	if err := c.posts.IncrementReplyCount(ctx, postID); err != nil {
		return domain.Storage(err)
	}
	return nil
}
