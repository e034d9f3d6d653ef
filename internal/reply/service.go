package reply

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/UkralStul/circle-replies-service/internal/domain"
	"github.com/UkralStul/circle-replies-service/internal/storage"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	MaxContent   = 2000
)

// CreateInput - разобранное тело запроса на создание ответа.
type CreateInput struct {
	PostID        string
	Content       string `param:"content" validate:"required,max=2000"`
	ParentReplyID *string
	ReplyToUserID *string
}

// ListInput - параметры выборки ответов. Page и Limit равны nil, если не переданы;
// тогда подставляются значения по умолчанию. Переданный 0 отклоняется.
type ListInput struct {
	PostID        string
	ParentReplyID *string
	Page          *int             `param:"page" validate:"min=1"`
	Limit         *int             `param:"limit" validate:"min=1,max=100"`
	Sort          domain.SortKey   `param:"sort" validate:"oneof=createdAt likes"`
	Order         domain.SortOrder `param:"order" validate:"oneof=asc desc"`
}

// Service - оркестратор подсистемы ответов.
type Service struct {
	refs      *ReferentialValidator
	store     *ReplyStore
	counter   *CounterSync
	presenter *ThreadPresenter
	validate  *validator.Validate
	log       *slog.Logger
}

func NewService(refs *ReferentialValidator, store *ReplyStore, counter *CounterSync, presenter *ThreadPresenter, log *slog.Logger) *Service {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("param")
	})
	return &Service{
		refs:      refs,
		store:     store,
		counter:   counter,
		presenter: presenter,
		validate:  v,
		log:       log,
	}
}

// NewServiceFromStorage собирает сервис поверх одного хранилища.
func NewServiceFromStorage(st storage.Storage, presenter *ThreadPresenter, log *slog.Logger) *Service {
	return NewService(
		NewReferentialValidator(st, st, st),
		NewReplyStore(st, st),
		NewCounterSync(st),
		presenter,
		log,
	)
}

// Create проверяет ссылки (пост, родитель, адресат; до первой ошибки), сохраняет
// ответ, увеличивает счётчик поста и возвращает созданный ответ как страницу из
// одного элемента.
//
// Между проверкой родителя и записью блокировок нет. Пока удаления ответов не
// существует, это окно безопасно; удаление потребует повторной проверки в той же
// транзакции, что и вставка.
func (s *Service) Create(ctx context.Context, authorID string, in CreateInput) (*domain.Page, error) {
	if authorID == "" {
		return nil, domain.Auth("authentication required", nil)
	}

	postID, err := s.refs.ValidatePost(ctx, in.PostID)
	if err != nil {
		return nil, s.rejected(ctx, "post", err)
	}
	parentID, err := s.refs.ValidateParent(ctx, in.ParentReplyID, postID)
	if err != nil {
		return nil, s.rejected(ctx, "parent", err)
	}
	replyToID, err := s.refs.ValidateReplyToUser(ctx, in.ReplyToUserID)
	if err != nil {
		return nil, s.rejected(ctx, "replyToUser", err)
	}

	in.Content = strings.TrimSpace(in.Content)
	if err := s.validate.StructCtx(ctx, in); err != nil {
		return nil, s.rejected(ctx, "content", toDomainError(err, domain.Validation))
	}

	stored, err := s.store.Create(ctx, &domain.Reply{
		PostID:        postID,
		ParentReplyID: parentID,
		Content:       in.Content,
		UserID:        authorID,
		ReplyToUserID: replyToID,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "failed to store reply", "post_id", postID, "error", err)
		return nil, err
	}

	// Ответ уже сохранён: ошибка счётчика логируется, но не откатывает создание.
	if err := s.counter.Increment(ctx, postID); err != nil {
		s.log.ErrorContext(ctx, "reply counter not incremented",
			"post_id", postID, "reply_id", stored.ID, "error", err)
	}

	created, err := s.store.FetchWithAuthor(ctx, stored.ID)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to load created reply", "reply_id", stored.ID, "error", err)
		// Ответ уже записан, поэтому даже "не найден" здесь - сбой хранилища.
		if !domain.IsKind(err, domain.KindStorage) {
			err = domain.Storage(err)
		}
		return nil, err
	}

	return &domain.Page{
		Comments: []*domain.ReplyView{s.presenter.Format(created)},
		HasMore:  false,
		Total:    1,
	}, nil
}

// List возвращает страницу ответов поста. ParentReplyID == nil - только корневые ответы.
func (s *Service) List(ctx context.Context, in ListInput) (*domain.Page, error) {
	if in.PostID == "" {
		return nil, domain.InvalidParameter("postId is required")
	}
	postID, ok := canonicalID(in.PostID)
	if !ok {
		return nil, domain.InvalidParameter("invalid postId")
	}

	var parentID *string
	if !isAbsent(in.ParentReplyID) {
		id, ok := canonicalID(*in.ParentReplyID)
		if !ok {
			return nil, domain.InvalidParameter("invalid parentReplyId")
		}
		parentID = &id
	}

	if in.Page == nil {
		in.Page = lo.ToPtr(DefaultPage)
	}
	if in.Limit == nil {
		in.Limit = lo.ToPtr(DefaultLimit)
	}
	if in.Sort == "" {
		in.Sort = domain.SortByCreatedAt
	}
	if in.Order == "" {
		in.Order = in.Sort.DefaultOrder()
	}
	if err := s.validate.StructCtx(ctx, in); err != nil {
		return nil, toDomainError(err, domain.InvalidParameter)
	}

	replies, total, err := s.store.Query(ctx, storage.ReplyQuery{
		PostID:        postID,
		ParentReplyID: parentID,
		Sort:          in.Sort,
		Order:         in.Order,
		Page:          *in.Page,
		Limit:         *in.Limit,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "failed to query replies", "post_id", postID, "error", err)
		return nil, err
	}

	return &domain.Page{
		Comments: s.presenter.FormatAll(replies),
		HasMore:  domain.HasMore(*in.Page, *in.Limit, total),
		Total:    total,
	}, nil
}

func (s *Service) rejected(ctx context.Context, step string, err error) error {
	s.log.DebugContext(ctx, "reply rejected", "step", step, "error", err)
	return err
}

// toDomainError переводит ошибки validator в ошибку указанного класса
// с сообщением по первому полю.
func toDomainError(err error, build func(string) *domain.Error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return build(err.Error())
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return build(fmt.Sprintf("%s is required", fe.Field()))
	case "max":
		return build(fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
	case "min":
		return build(fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
	case "oneof":
		return build(fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
	default:
		return build(fmt.Sprintf("invalid %s", fe.Field()))
	}
}
