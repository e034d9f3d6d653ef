package reply

import (
	"context"
	"errors"

	"github.com/samber/lo"

	"github.com/UkralStul/circle-replies-service/internal/dataloader"
	"github.com/UkralStul/circle-replies-service/internal/domain"
	"github.com/UkralStul/circle-replies-service/internal/storage"
)

// ReplyStore сохраняет ответы и выдаёт их с разрешёнными ссылками на
// пользователей (user, replyToUser).
type ReplyStore struct {
	replies storage.ReplyRepository
	users   storage.UserStore
}

func NewReplyStore(replies storage.ReplyRepository, users storage.UserStore) *ReplyStore {
	return &ReplyStore{replies: replies, users: users}
}

// Create сохраняет ответ. Хранилище назначает ID, CreatedAt и Likes.
func (s *ReplyStore) Create(ctx context.Context, r *domain.Reply) (*domain.Reply, error) {
	stored, err := s.replies.CreateReply(ctx, r)
	if err != nil {
		return nil, domain.Storage(err)
	}
	return stored, nil
}

// FetchWithAuthor читает один ответ вместе с проекциями пользователей.
func (s *ReplyStore) FetchWithAuthor(ctx context.Context, id string) (*domain.ThreadReply, error) {
	r, err := s.replies.GetReplyByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, domain.NotFound("reply not found")
	}
	if err != nil {
		return nil, domain.Storage(err)
	}

	resolved, err := s.resolve(ctx, []*domain.Reply{r})
	if err != nil {
		return nil, err
	}
	return resolved[0], nil
}

// Query возвращает страницу ответов и общее число подходящих записей.
func (s *ReplyStore) Query(ctx context.Context, q storage.ReplyQuery) ([]*domain.ThreadReply, int64, error) {
	replies, total, err := s.replies.QueryReplies(ctx, q)
	if err != nil {
		return nil, 0, domain.Storage(err)
	}

	resolved, err := s.resolve(ctx, replies)
	if err != nil {
		return nil, 0, err
	}
	return resolved, total, nil
}

// resolve подгружает проекции всех упомянутых пользователей одним батчем.
// Если в контексте есть лоадеры запроса, идём через них.
func (s *ReplyStore) resolve(ctx context.Context, replies []*domain.Reply) ([]*domain.ThreadReply, error) {
	ids := make([]string, 0, len(replies)*2)
	for _, r := range replies {
		ids = append(ids, r.UserID)
		if r.ReplyToUserID != nil {
			ids = append(ids, *r.ReplyToUserID)
		}
	}
	ids = lo.Uniq(ids)

	var (
		refs map[string]*domain.UserRef
		err  error
	)
	if loaders := dataloader.For(ctx); loaders != nil {
		refs, err = loaders.LoadUsers(ctx, ids)
	} else if len(ids) > 0 {
		refs, err = s.users.UserProjections(ctx, ids)
	}
	if err != nil {
		return nil, domain.Storage(err)
	}

	return lo.Map(replies, func(r *domain.Reply, _ int) *domain.ThreadReply {
		tr := &domain.ThreadReply{Reply: r, User: refs[r.UserID]}
		if r.ReplyToUserID != nil {
			tr.ReplyToUser = refs[*r.ReplyToUserID]
		}
		return tr
	}), nil
}
