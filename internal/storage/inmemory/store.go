package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/UkralStul/circle-replies-service/internal/domain"
	"github.com/UkralStul/circle-replies-service/internal/storage"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const rootKey = ""

// Store реализует интерфейс Storage в памяти.
type Store struct {
	mu      sync.RWMutex
	posts   map[string]*domain.Post
	users   map[string]*domain.User
	replies map[string]*domain.Reply
	// map[postID]map[parentID][]replyID, корневые ответы под ключом rootKey
	thread map[string]map[string][]string
	seq    int64
	now    func() time.Time
}

// New создает новый экземпляр in-memory хранилища.
func New() *Store {
	return &Store{
		posts:   make(map[string]*domain.Post),
		users:   make(map[string]*domain.User),
		replies: make(map[string]*domain.Reply),
		thread:  make(map[string]map[string][]string),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Close() error { return nil }

// === Post Methods ===

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = s.now()
	}
	stored := *post
	s.posts[post.ID] = &stored
	return post, nil
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *post
	return &cp, nil
}

func (s *Store) PostExists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.posts[id]
	return ok, nil
}

func (s *Store) IncrementReplyCount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return storage.ErrNotFound
	}
	post.Replies++
	return nil
}

// === User Methods ===

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	stored := *user
	s.users[user.ID] = &stored
	return user, nil
}

func (s *Store) UserExists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.users[id]
	return ok, nil
}

func (s *Store) UserProjections(ctx context.Context, ids []string) (map[string]*domain.UserRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*domain.UserRef, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			result[id] = &domain.UserRef{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
		}
	}
	return result, nil
}

// === Reply Methods ===

func (s *Store) CreateReply(ctx context.Context, reply *domain.Reply) (*domain.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	reply.ID = uuid.NewString()
	reply.CreatedAt = s.now()
	reply.Likes = 0
	reply.Seq = s.seq

	stored := *reply
	s.replies[reply.ID] = &stored

	// Обновление индексов для иерархии
	parent := rootKey
	if reply.ParentReplyID != nil {
		parent = *reply.ParentReplyID
	}
	byParent, ok := s.thread[reply.PostID]
	if !ok {
		byParent = make(map[string][]string)
		s.thread[reply.PostID] = byParent
	}
	byParent[parent] = append(byParent[parent], reply.ID)

	return reply, nil
}

func (s *Store) GetReplyByID(ctx context.Context, id string) (*domain.Reply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reply, ok := s.replies[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *reply
	return &cp, nil
}

// === Pagination Methods ===

func (s *Store) QueryReplies(ctx context.Context, q storage.ReplyQuery) ([]*domain.Reply, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parent := rootKey
	if q.ParentReplyID != nil {
		parent = *q.ParentReplyID
	}
	ids := s.thread[q.PostID][parent]

	all := lo.FilterMap(ids, func(id string, _ int) (*domain.Reply, bool) {
		r, ok := s.replies[id]
		if !ok {
			return nil, false
		}
		cp := *r
		return &cp, true
	})
	sortReplies(all, q.Sort, q.Order)

	total := int64(len(all))
	start := q.Offset()
	if start >= len(all) {
		return []*domain.Reply{}, total, nil
	}
	end := start + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

// sortReplies сортирует по ключу, при равенстве - по времени создания и порядку вставки.
func sortReplies(replies []*domain.Reply, key domain.SortKey, order domain.SortOrder) {
	desc := order == domain.Descending
	sort.SliceStable(replies, func(i, j int) bool {
		a, b := replies[i], replies[j]
		if key == domain.SortByLikes && a.Likes != b.Likes {
			if desc {
				return a.Likes > b.Likes
			}
			return a.Likes < b.Likes
		}
		newestFirst := desc && key != domain.SortByLikes
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if newestFirst {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if newestFirst {
			return a.Seq > b.Seq
		}
		return a.Seq < b.Seq
	})
}
