package reply

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/UkralStul/circle-replies-service/internal/dataloader"
	"github.com/UkralStul/circle-replies-service/internal/domain"
	"github.com/UkralStul/circle-replies-service/internal/storage"
	"github.com/UkralStul/circle-replies-service/internal/storage/inmemory"
	"github.com/UkralStul/circle-replies-service/internal/storage/mocks"
)

var discard = slog.New(slog.DiscardHandler)

type fixture struct {
	store *inmemory.Store
	svc   *Service
	u1    *domain.User
	u2    *domain.User
	p1    *domain.Post
	p2    *domain.Post
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := inmemory.New()

	u1, err := store.CreateUser(ctx, &domain.User{Username: "u1", Avatar: "/uploads/u1.png"})
	require.NoError(t, err)
	u2, err := store.CreateUser(ctx, &domain.User{Username: "u2", Avatar: "https://cdn.example.org/u2.png"})
	require.NoError(t, err)
	p1, err := store.CreatePost(ctx, &domain.Post{Title: "P1", AuthorID: u1.ID})
	require.NoError(t, err)
	p2, err := store.CreatePost(ctx, &domain.Post{Title: "P2", AuthorID: u2.ID})
	require.NoError(t, err)

	presenter := NewThreadPresenter("http://localhost:8080", time.UTC)
	return &fixture{
		store: store,
		svc:   NewServiceFromStorage(store, presenter, discard),
		u1:    u1, u2: u2, p1: p1, p2: p2,
	}
}

func (f *fixture) replies(t *testing.T, postID string) int64 {
	t.Helper()
	post, err := f.store.GetPostByID(context.Background(), postID)
	require.NoError(t, err)
	return post.Replies
}

func ptr[T any](v T) *T { return &v }

func requireCode(t *testing.T, err error, kind domain.Kind, code int) {
	t.Helper()
	require.Error(t, err)
	derr, ok := domain.AsError(err)
	require.True(t, ok, "expected *domain.Error, got %T", err)
	assert.Equal(t, kind, derr.Kind)
	assert.Equal(t, code, derr.Code)
}

func TestService_Create_RootReply(t *testing.T) {
	f := newFixture(t)

	page, err := f.svc.Create(context.Background(), f.u1.ID, CreateInput{PostID: f.p1.ID, Content: "  hello  "})
	require.NoError(t, err)

	assert.EqualValues(t, 1, page.Total)
	assert.False(t, page.HasMore)
	require.Len(t, page.Comments, 1)

	c := page.Comments[0]
	assert.Equal(t, "hello", c.Content)
	assert.Equal(t, f.p1.ID, c.Post)
	assert.Nil(t, c.ParentReply)
	assert.Nil(t, c.ReplyToUser)
	assert.Zero(t, c.Likes)
	require.NotNil(t, c.User)
	assert.Equal(t, "u1", c.User.Username)
	assert.Equal(t, "http://localhost:8080/uploads/u1.png", c.User.Avatar)
	_, err = time.Parse(DisplayLayout, c.CreatedAt)
	assert.NoError(t, err)

	assert.EqualValues(t, 1, f.replies(t, f.p1.ID))
}

func TestService_Create_NestedReply(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root, err := f.svc.Create(ctx, f.u1.ID, CreateInput{PostID: f.p1.ID, Content: "root"})
	require.NoError(t, err)
	r1 := root.Comments[0].ID

	page, err := f.svc.Create(ctx, f.u2.ID, CreateInput{
		PostID:        f.p1.ID,
		Content:       "nested",
		ParentReplyID: ptr(r1),
		ReplyToUserID: ptr(f.u1.ID),
	})
	require.NoError(t, err)

	c := page.Comments[0]
	require.NotNil(t, c.ParentReply)
	assert.Equal(t, r1, *c.ParentReply)
	require.NotNil(t, c.ReplyToUser)
	assert.Equal(t, "u1", c.ReplyToUser.Username)
	// Абсолютный URL остаётся без префикса
	assert.Equal(t, "https://cdn.example.org/u2.png", c.User.Avatar)

	assert.EqualValues(t, 2, f.replies(t, f.p1.ID))
}

func TestService_Create_ParentOnDifferentPost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other, err := f.svc.Create(ctx, f.u1.ID, CreateInput{PostID: f.p2.ID, Content: "on P2"})
	require.NoError(t, err)
	r2 := other.Comments[0].ID

	_, err = f.svc.Create(ctx, f.u1.ID, CreateInput{PostID: f.p1.ID, Content: "bad", ParentReplyID: ptr(r2)})
	requireCode(t, err, domain.KindConflict, domain.CodeParentPostMismatch)

	assert.EqualValues(t, 0, f.replies(t, f.p1.ID))
	_, total, err := f.store.QueryReplies(ctx, storage.ReplyQuery{PostID: f.p1.ID, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	_, total, err = f.store.QueryReplies(ctx, storage.ReplyQuery{PostID: f.p1.ID, ParentReplyID: &r2, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestService_Create_ValidationCodes(t *testing.T) {
	f := newFixture(t)
	missing := uuid.NewString()

	tests := []struct {
		name string
		in   CreateInput
		kind domain.Kind
		code int
	}{
		{name: "post missing", in: CreateInput{Content: "x"}, kind: domain.KindValidation, code: 4001},
		{name: "post malformed", in: CreateInput{PostID: "nope", Content: "x"}, kind: domain.KindValidation, code: 4002},
		{name: "post not found", in: CreateInput{PostID: missing, Content: "x"}, kind: domain.KindNotFound, code: 4003},
		{name: "parent malformed", in: CreateInput{PostID: f.p1.ID, Content: "x", ParentReplyID: ptr("12")}, kind: domain.KindValidation, code: 4004},
		{name: "parent not found", in: CreateInput{PostID: f.p1.ID, Content: "x", ParentReplyID: ptr(missing)}, kind: domain.KindNotFound, code: 4005},
		{name: "reply-to malformed", in: CreateInput{PostID: f.p1.ID, Content: "x", ReplyToUserID: ptr("zz")}, kind: domain.KindValidation, code: 4007},
		{name: "reply-to not found", in: CreateInput{PostID: f.p1.ID, Content: "x", ReplyToUserID: ptr(missing)}, kind: domain.KindNotFound, code: 4008},
		{name: "post checked before content", in: CreateInput{PostID: "nope"}, kind: domain.KindValidation, code: 4002},
		{name: "empty content", in: CreateInput{PostID: f.p1.ID, Content: "   "}, kind: domain.KindValidation, code: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), f.u1.ID, tt.in)
			requireCode(t, err, tt.kind, tt.code)
		})
	}

	assert.EqualValues(t, 0, f.replies(t, f.p1.ID))
}

func TestService_Create_ContentTooLong(t *testing.T) {
	f := newFixture(t)
	long := make([]rune, MaxContent+1)
	for i := range long {
		long[i] = 'я'
	}

	_, err := f.svc.Create(context.Background(), f.u1.ID, CreateInput{PostID: f.p1.ID, Content: string(long)})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Contains(t, err.Error(), "content must be at most 2000")
}

func TestService_Create_RequiresAuthor(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), "", CreateInput{PostID: f.p1.ID, Content: "x"})
	assert.True(t, domain.IsKind(err, domain.KindAuth))
}

func TestService_Create_CheckFailures(t *testing.T) {
	postID := uuid.NewString()
	parentID := uuid.NewString()
	userID := uuid.NewString()
	boom := errors.New("connection refused")

	t.Run("post check", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		posts := mocks.NewMockPostStore(ctrl)
		users := mocks.NewMockUserStore(ctrl)
		replies := mocks.NewMockReplyRepository(ctrl)
		posts.EXPECT().PostExists(gomock.Any(), postID).Return(false, boom)

		svc := newMockedService(posts, users, replies)
		_, err := svc.Create(context.Background(), userID, CreateInput{PostID: postID, Content: "x", ParentReplyID: &parentID})
		requireCode(t, err, domain.KindStorage, domain.CodePostCheckFailed)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("parent check", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		posts := mocks.NewMockPostStore(ctrl)
		users := mocks.NewMockUserStore(ctrl)
		replies := mocks.NewMockReplyRepository(ctrl)
		posts.EXPECT().PostExists(gomock.Any(), postID).Return(true, nil)
		replies.EXPECT().GetReplyByID(gomock.Any(), parentID).Return(nil, boom)

		svc := newMockedService(posts, users, replies)
		_, err := svc.Create(context.Background(), userID, CreateInput{PostID: postID, Content: "x", ParentReplyID: &parentID, ReplyToUserID: &userID})
		requireCode(t, err, domain.KindStorage, domain.CodeParentCheckFailed)
	})

	t.Run("reply-to check", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		posts := mocks.NewMockPostStore(ctrl)
		users := mocks.NewMockUserStore(ctrl)
		replies := mocks.NewMockReplyRepository(ctrl)
		posts.EXPECT().PostExists(gomock.Any(), postID).Return(true, nil)
		users.EXPECT().UserExists(gomock.Any(), userID).Return(false, boom)

		svc := newMockedService(posts, users, replies)
		_, err := svc.Create(context.Background(), userID, CreateInput{PostID: postID, Content: "x", ReplyToUserID: &userID})
		requireCode(t, err, domain.KindStorage, domain.CodeReplyToUserCheckFailed)
	})
}

func TestService_Create_StorageFailureSkipsCounter(t *testing.T) {
	ctrl := gomock.NewController(t)
	posts := mocks.NewMockPostStore(ctrl)
	users := mocks.NewMockUserStore(ctrl)
	replies := mocks.NewMockReplyRepository(ctrl)

	postID := uuid.NewString()
	posts.EXPECT().PostExists(gomock.Any(), postID).Return(true, nil)
	replies.EXPECT().CreateReply(gomock.Any(), gomock.Any()).Return(nil, errors.New("disk full"))
	// IncrementReplyCount не ожидается

	svc := newMockedService(posts, users, replies)
	_, err := svc.Create(context.Background(), uuid.NewString(), CreateInput{PostID: postID, Content: "x"})
	require.Error(t, err)
	derr, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindStorage, derr.Kind)
	assert.Equal(t, "internal server error", derr.Message)
}

func TestService_Create_CounterFailureStillCreates(t *testing.T) {
	f := newFixture(t)
	ctrl := gomock.NewController(t)
	posts := mocks.NewMockPostStore(ctrl)
	posts.EXPECT().PostExists(gomock.Any(), f.p1.ID).Return(true, nil)
	posts.EXPECT().IncrementReplyCount(gomock.Any(), f.p1.ID).Return(errors.New("timeout"))

	svc := NewService(
		NewReferentialValidator(posts, f.store, f.store),
		NewReplyStore(f.store, f.store),
		NewCounterSync(posts),
		NewThreadPresenter("", time.UTC),
		discard,
	)

	page, err := svc.Create(context.Background(), f.u1.ID, CreateInput{PostID: f.p1.ID, Content: "kept"})
	require.NoError(t, err)
	require.Len(t, page.Comments, 1)

	// Ответ сохранён, счётчик отстаёт
	_, total, err := f.store.QueryReplies(context.Background(), storage.ReplyQuery{PostID: f.p1.ID, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.EqualValues(t, 0, f.replies(t, f.p1.ID))
}

func TestService_Create_FetchAfterCreateFailureIsStorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	postID := uuid.NewString()
	posts := mocks.NewMockPostStore(ctrl)
	posts.EXPECT().PostExists(gomock.Any(), postID).Return(true, nil)
	posts.EXPECT().IncrementReplyCount(gomock.Any(), postID).Return(nil)
	replies := mocks.NewMockReplyRepository(ctrl)
	replies.EXPECT().CreateReply(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, r *domain.Reply) (*domain.Reply, error) {
			r.ID = uuid.NewString()
			return r, nil
		})
	replies.EXPECT().GetReplyByID(gomock.Any(), gomock.Any()).Return(nil, storage.ErrNotFound)

	svc := newMockedService(posts, mocks.NewMockUserStore(ctrl), replies)
	_, err := svc.Create(context.Background(), uuid.NewString(), CreateInput{PostID: postID, Content: "lost"})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindStorage), "got %v", err)
	assert.False(t, domain.IsKind(err, domain.KindNotFound))
}

func TestService_Create_ConcurrentCounter(t *testing.T) {
	f := newFixture(t)
	const n = 50

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(context.Background(), f.u1.ID, CreateInput{PostID: f.p1.ID, Content: "concurrent"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, n, f.replies(t, f.p1.ID))
}

func TestService_List_RootFiltering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root, err := f.svc.Create(ctx, f.u1.ID, CreateInput{PostID: f.p1.ID, Content: "root"})
	require.NoError(t, err)
	parent := root.Comments[0].ID
	for i := 0; i < 3; i++ {
		child, err := f.svc.Create(ctx, f.u2.ID, CreateInput{PostID: f.p1.ID, Content: "child", ParentReplyID: &parent})
		require.NoError(t, err)
		_, err = f.svc.Create(ctx, f.u1.ID, CreateInput{PostID: f.p1.ID, Content: "grandchild", ParentReplyID: &child.Comments[0].ID})
		require.NoError(t, err)
	}

	page, err := f.svc.List(ctx, ListInput{PostID: f.p1.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.Comments, 1)
	assert.Nil(t, page.Comments[0].ParentReply)

	// Пустая строка тоже означает корневые ответы
	page, err = f.svc.List(ctx, ListInput{PostID: f.p1.ID, ParentReplyID: ptr("")})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	children, err := f.svc.List(ctx, ListInput{PostID: f.p1.ID, ParentReplyID: &parent})
	require.NoError(t, err)
	assert.EqualValues(t, 3, children.Total)
	for _, c := range children.Comments {
		assert.Equal(t, parent, *c.ParentReply)
	}
}

func TestService_List_Pagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, content := range []string{"first", "second"} {
		_, err := f.svc.Create(ctx, f.u1.ID, CreateInput{PostID: f.p1.ID, Content: content})
		require.NoError(t, err)
	}

	page, err := f.svc.List(ctx, ListInput{PostID: f.p1.ID, Page: ptr(1), Limit: ptr(1), Sort: domain.SortByCreatedAt})
	require.NoError(t, err)
	require.Len(t, page.Comments, 1)
	assert.Equal(t, "first", page.Comments[0].Content)
	assert.EqualValues(t, 2, page.Total)
	assert.True(t, page.HasMore)

	page, err = f.svc.List(ctx, ListInput{PostID: f.p1.ID, Page: ptr(2), Limit: ptr(1)})
	require.NoError(t, err)
	require.Len(t, page.Comments, 1)
	assert.Equal(t, "second", page.Comments[0].Content)
	assert.False(t, page.HasMore)

	page, err = f.svc.List(ctx, ListInput{PostID: f.p1.ID, Limit: ptr(1), Order: domain.Descending})
	require.NoError(t, err)
	assert.Equal(t, "second", page.Comments[0].Content)
}

func TestService_List_InvalidParameters(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		in   ListInput
	}{
		{name: "missing post", in: ListInput{}},
		{name: "malformed post", in: ListInput{PostID: "abc"}},
		{name: "malformed parent", in: ListInput{PostID: f.p1.ID, ParentReplyID: ptr("abc")}},
		{name: "unknown sort", in: ListInput{PostID: f.p1.ID, Sort: "time"}},
		{name: "unknown order", in: ListInput{PostID: f.p1.ID, Order: "sideways"}},
		{name: "negative page", in: ListInput{PostID: f.p1.ID, Page: ptr(-1)}},
		{name: "zero page", in: ListInput{PostID: f.p1.ID, Page: ptr(0)}},
		{name: "zero limit", in: ListInput{PostID: f.p1.ID, Limit: ptr(0)}},
		{name: "limit too large", in: ListInput{PostID: f.p1.ID, Limit: ptr(MaxLimit + 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.List(context.Background(), tt.in)
			assert.True(t, domain.IsKind(err, domain.KindInvalidParameter), "got %v", err)
		})
	}
}

func TestService_List_StorageFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	replies := mocks.NewMockReplyRepository(ctrl)
	replies.EXPECT().QueryReplies(gomock.Any(), gomock.Any()).Return(nil, int64(0), errors.New("read timeout"))

	svc := newMockedService(mocks.NewMockPostStore(ctrl), mocks.NewMockUserStore(ctrl), replies)
	_, err := svc.List(context.Background(), ListInput{PostID: uuid.NewString()})
	assert.True(t, domain.IsKind(err, domain.KindStorage))
}

func TestService_List_UsesRequestLoaders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, f.u1.ID, CreateInput{PostID: f.p1.ID, Content: "r", ReplyToUserID: &f.u2.ID})
		require.NoError(t, err)
	}

	ctx = dataloader.WithLoaders(ctx, dataloader.NewLoaders(f.store))
	page, err := f.svc.List(ctx, ListInput{PostID: f.p1.ID})
	require.NoError(t, err)
	require.Len(t, page.Comments, 3)
	for _, c := range page.Comments {
		assert.Equal(t, "u1", c.User.Username)
		assert.Equal(t, "u2", c.ReplyToUser.Username)
	}
}

func TestHasMore(t *testing.T) {
	tests := []struct {
		page, limit int
		total       int64
		want        bool
	}{
		{page: 1, limit: 10, total: 0, want: false},
		{page: 1, limit: 1, total: 2, want: true},
		{page: 2, limit: 1, total: 2, want: false},
		{page: 2, limit: 5, total: 11, want: true},
		{page: 3, limit: 5, total: 11, want: false},
		{page: 4, limit: 5, total: 11, want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.HasMore(tt.page, tt.limit, tt.total), "%+v", tt)
	}
}

func newMockedService(posts storage.PostStore, users storage.UserStore, replies storage.ReplyRepository) *Service {
	return NewService(
		NewReferentialValidator(posts, users, replies),
		NewReplyStore(replies, users),
		NewCounterSync(posts),
		NewThreadPresenter("", time.UTC),
		discard,
	)
}
