package storage

import (
	"context"
	"errors"

	"github.com/UkralStul/circle-replies-service/internal/domain"
)

//go:generate mockgen -source=interface.go -destination=mocks/storage.go -package=mocks -exclude_interfaces=Seeder,Storage

// ErrNotFound возвращается, когда запись с указанным id отсутствует.
var ErrNotFound = errors.New("record not found")

// ReplyQuery - фильтр, сортировка и пагинация для выборки ответов.
// ParentReplyID == nil выбирает только корневые ответы поста.
type ReplyQuery struct {
	PostID        string
	ParentReplyID *string
	Sort          domain.SortKey
	Order         domain.SortOrder
	Page          int
	Limit         int
}

// Offset - число пропускаемых записей.
func (q ReplyQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// PostStore - контракт внешнего хранилища постов.
type PostStore interface {
	PostExists(ctx context.Context, id string) (bool, error)
	// IncrementReplyCount атомарно увеличивает счётчик replies на 1.
	// ErrNotFound, если поста нет.
	IncrementReplyCount(ctx context.Context, id string) error
}

// UserStore - контракт внешнего хранилища пользователей.
type UserStore interface {
	UserExists(ctx context.Context, id string) (bool, error)
	// UserProjections возвращает проекции найденных пользователей по id.
	// Отсутствующие id просто не попадают в карту.
	UserProjections(ctx context.Context, ids []string) (map[string]*domain.UserRef, error)
}

// ReplyRepository - хранение ответов.
type ReplyRepository interface {
	// CreateReply назначает ID, CreatedAt и Likes=0 и сохраняет ответ.
	CreateReply(ctx context.Context, reply *domain.Reply) (*domain.Reply, error)
	GetReplyByID(ctx context.Context, id string) (*domain.Reply, error)
	// QueryReplies возвращает страницу и общее число подходящих записей.
	QueryReplies(ctx context.Context, q ReplyQuery) ([]*domain.Reply, int64, error)
}

// Seeder заполняет хранилище постами и пользователями (демо-данные и тесты).
type Seeder interface {
	CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error)
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetPostByID(ctx context.Context, id string) (*domain.Post, error)
}

// Storage определяет контракт для хранилищ.
type Storage interface {
	PostStore
	UserStore
	ReplyRepository
	Seeder
	Close() error
}
