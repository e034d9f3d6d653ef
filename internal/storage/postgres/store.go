package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UkralStul/circle-replies-service/internal/domain"
	"github.com/UkralStul/circle-replies-service/internal/storage"
	"github.com/google/uuid"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store реализует интерфейс Storage с использованием PostgreSQL.
type Store struct {
	db *gorm.DB
}

// New создает новый экземпляр хранилища PostgreSQL.
func New(dsn string, logLevel logger.LogLevel) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Выполняем миграцию схемы
	if err := db.AutoMigrate(&domain.User{}, &domain.Post{}, &domain.Reply{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// === Post Methods ===

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (s *Store) PostExists(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.Post{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count posts: %w", err)
	}
	return n > 0, nil
}

// IncrementReplyCount выполняет одно UPDATE ... SET replies = replies + 1,
// поэтому параллельные инкременты не теряются.
func (s *Store) IncrementReplyCount(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).
		Model(&domain.Post{}).
		Where("id = ?", id).
		UpdateColumn("replies", gorm.Expr("replies + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("increment replies: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// === User Methods ===

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *Store) UserExists(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

func (s *Store) UserProjections(ctx context.Context, ids []string) (map[string]*domain.UserRef, error) {
	result := make(map[string]*domain.UserRef, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var refs []*domain.UserRef
	err := s.db.WithContext(ctx).
		Model(&domain.User{}).
		Select("id", "username", "avatar").
		Where("id IN ?", ids).
		Scan(&refs).Error
	if err != nil {
		return nil, fmt.Errorf("load user projections: %w", err)
	}
	for _, r := range refs {
		result[r.ID] = r
	}
	return result, nil
}

// === Reply Methods ===

func (s *Store) CreateReply(ctx context.Context, reply *domain.Reply) (*domain.Reply, error) {
	reply.ID = uuid.NewString()
	reply.CreatedAt = time.Now().UTC()
	reply.Likes = 0

	if err := s.db.WithContext(ctx).Create(reply).Error; err != nil {
		return nil, fmt.Errorf("create reply: %w", err)
	}
	return reply, nil
}

func (s *Store) GetReplyByID(ctx context.Context, id string) (*domain.Reply, error) {
	var reply domain.Reply
	if err := s.db.WithContext(ctx).First(&reply, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &reply, nil
}

// === Pagination Methods ===

func (s *Store) QueryReplies(ctx context.Context, q storage.ReplyQuery) ([]*domain.Reply, int64, error) {
	base := s.db.WithContext(ctx).Model(&domain.Reply{}).Where("post_id = ?", q.PostID)
	if q.ParentReplyID == nil {
		// Только корневые ответы (parent_reply_id IS NULL)
		base = base.Where("parent_reply_id IS NULL")
	} else {
		base = base.Where("parent_reply_id = ?", *q.ParentReplyID)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count replies: %w", err)
	}

	var replies []*domain.Reply
	err := base.
		Order(orderClause(q.Sort, q.Order)).
		Limit(q.Limit).
		Offset(q.Offset()).
		Find(&replies).Error
	if err != nil {
		return nil, 0, fmt.Errorf("query replies: %w", err)
	}
	return replies, total, nil
}

func orderClause(key domain.SortKey, order domain.SortOrder) string {
	dir := "ASC"
	if order == domain.Descending {
		dir = "DESC"
	}
	if key == domain.SortByLikes {
		return "likes " + dir + ", created_at ASC, seq ASC"
	}
	return "created_at " + dir + ", seq " + dir
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.ErrNotFound
	}
	return err
}
