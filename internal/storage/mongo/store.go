package mongo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/256dpi/lungo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/UkralStul/circle-replies-service/internal/domain"
	"github.com/UkralStul/circle-replies-service/internal/storage"
)

// Store реализует интерфейс Storage поверх MongoDB.
// URI вида memory://<db> запускает встроенный движок lungo в памяти.
type Store struct {
	client  lungo.IClient
	engine  *lungo.Engine
	posts    lungo.ICollection
	users    lungo.ICollection
	replies  lungo.ICollection
	counters lungo.ICollection
}

// New подключается к базе по uri. Имя базы берётся из пути (mongodb://host/<db>)
// или из хоста для memory://<db>.
func New(ctx context.Context, uri string) (*Store, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse mongo uri: %w", err)
	}

	var (
		client lungo.IClient
		engine *lungo.Engine
		dbName string
	)
	if parsed.Scheme == "memory" {
		dbName = parsed.Host
		client, engine, err = lungo.Open(ctx, lungo.Options{Store: lungo.NewMemoryStore()})
		if err != nil {
			return nil, fmt.Errorf("open memory engine: %w", err)
		}
	} else {
		dbName = strings.Trim(parsed.Path, "/")
		client, err = lungo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			return nil, fmt.Errorf("connect to mongo: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			return nil, fmt.Errorf("ping mongo: %w", err)
		}
	}
	if dbName == "" {
		dbName = "circles"
	}

	db := client.Database(dbName)
	return &Store{
		client:  client,
		engine:  engine,
		posts:    db.Collection("posts"),
		users:    db.Collection("users"),
		replies:  db.Collection("replys"),
		counters: db.Collection("counters"),
	}, nil
}

func (s *Store) Close() error {
	err := s.client.Disconnect(context.Background())
	if s.engine != nil {
		s.engine.Close()
	}
	return err
}

// === Post Methods ===

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now()
	}
	if _, err := s.posts.InsertOne(ctx, post); err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return post, nil
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	if err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (s *Store) PostExists(ctx context.Context, id string) (bool, error) {
	n, err := s.posts.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("count posts: %w", err)
	}
	return n > 0, nil
}

// IncrementReplyCount использует $inc, поэтому инкремент атомарен на стороне базы.
func (s *Store) IncrementReplyCount(ctx context.Context, id string) error {
	res, err := s.posts.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"replies": 1}})
	if err != nil {
		return fmt.Errorf("increment replies: %w", err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// === User Methods ===

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now()
	}
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (s *Store) UserExists(ctx context.Context, id string) (bool, error) {
	n, err := s.users.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

func (s *Store) UserProjections(ctx context.Context, ids []string) (map[string]*domain.UserRef, error) {
	result := make(map[string]*domain.UserRef, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	opts := options.Find().SetProjection(bson.M{"username": 1, "avatar": 1})
	csr, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	var refs []*domain.UserRef
	if err := csr.All(ctx, &refs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	for _, r := range refs {
		result[r.ID] = r
	}
	return result, nil
}

// === Reply Methods ===

func (s *Store) CreateReply(ctx context.Context, reply *domain.Reply) (*domain.Reply, error) {
	seq, err := s.nextSeq(ctx, "replies")
	if err != nil {
		return nil, err
	}
	reply.Seq = seq
	reply.ID = uuid.NewString()
	reply.CreatedAt = now()
	reply.Likes = 0

	if _, err := s.replies.InsertOne(ctx, reply); err != nil {
		return nil, fmt.Errorf("insert reply: %w", err)
	}
	return reply, nil
}

func (s *Store) GetReplyByID(ctx context.Context, id string) (*domain.Reply, error) {
	var reply domain.Reply
	if err := s.replies.FindOne(ctx, bson.M{"_id": id}).Decode(&reply); err != nil {
		return nil, translate(err)
	}
	return &reply, nil
}

// === Pagination Methods ===

func (s *Store) QueryReplies(ctx context.Context, q storage.ReplyQuery) ([]*domain.Reply, int64, error) {
	// parentReply: null выбирает только корневые ответы
	filter := bson.M{"post": q.PostID, "parentReply": nil}
	if q.ParentReplyID != nil {
		filter["parentReply"] = *q.ParentReplyID
	}

	total, err := s.replies.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count replies: %w", err)
	}

	opts := options.Find().
		SetSort(sortSpec(q.Sort, q.Order)).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.Limit))
	csr, err := s.replies.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find replies: %w", err)
	}
	replies := make([]*domain.Reply, 0, q.Limit)
	if err := csr.All(ctx, &replies); err != nil {
		return nil, 0, fmt.Errorf("decode replies: %w", err)
	}
	return replies, total, nil
}

func sortSpec(key domain.SortKey, order domain.SortOrder) bson.D {
	dir := 1
	if order == domain.Descending {
		dir = -1
	}
	if key == domain.SortByLikes {
		return bson.D{{Key: "likes", Value: dir}, {Key: "createdAt", Value: 1}, {Key: "seq", Value: 1}}
	}
	return bson.D{{Key: "createdAt", Value: dir}, {Key: "seq", Value: dir}}
}

// nextSeq атомарно выдаёт следующий номер последовательности name.
func (s *Store) nextSeq(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	filter, update := bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": 1}}
	err := s.counters.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if driver.IsDuplicateKeyError(err) {
		// параллельный upsert уже создал документ счётчика
		err = s.counters.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	}
	if err != nil {
		return 0, fmt.Errorf("next %s seq: %w", name, err)
	}
	return doc.Seq, nil
}

// now обрезает время до миллисекунд, с такой точностью его хранит BSON.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func translate(err error) error {
	if errors.Is(err, driver.ErrNoDocuments) {
		return storage.ErrNotFound
	}
	return err
}
