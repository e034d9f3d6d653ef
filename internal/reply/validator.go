package reply

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/UkralStul/circle-replies-service/internal/domain"
	"github.com/UkralStul/circle-replies-service/internal/storage"
)

// ReferentialValidator проверяет ссылки нового ответа: пост, родительский ответ
// и адресата. Каждая проверка делает не больше одного чтения и ничего не пишет.
type ReferentialValidator struct {
	posts   storage.PostStore
	users   storage.UserStore
	replies storage.ReplyRepository
}

func NewReferentialValidator(posts storage.PostStore, users storage.UserStore, replies storage.ReplyRepository) *ReferentialValidator {
	return &ReferentialValidator{posts: posts, users: users, replies: replies}
}

// ValidatePost возвращает канонический id существующего поста.
func (v *ReferentialValidator) ValidatePost(ctx context.Context, postID string) (string, error) {
	if postID == "" {
		return "", domain.ErrPostMissing()
	}
	id, ok := canonicalID(postID)
	if !ok {
		return "", domain.ErrPostMalformed()
	}

	exists, err := v.posts.PostExists(ctx, id)
	if err != nil {
		return "", domain.ErrPostCheckFailed(err)
	}
	if !exists {
		return "", domain.ErrPostNotFound()
	}
	return id, nil
}

// ValidateParent проверяет, что родительский ответ существует и принадлежит
// тому же посту. Пустой parentID - корневой ответ, возвращается nil.
func (v *ReferentialValidator) ValidateParent(ctx context.Context, parentID *string, validatedPostID string) (*string, error) {
	if isAbsent(parentID) {
		return nil, nil
	}
	id, ok := canonicalID(*parentID)
	if !ok {
		return nil, domain.ErrParentMalformed()
	}

	parent, err := v.replies.GetReplyByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, domain.ErrParentNotFound()
	}
	if err != nil {
		return nil, domain.ErrParentCheckFailed(err)
	}
	if parent.PostID != validatedPostID {
		return nil, domain.ErrParentPostMismatch()
	}
	return &id, nil
}

// ValidateReplyToUser проверяет адресата ответа. Пустой userID - ответ без адресата.
func (v *ReferentialValidator) ValidateReplyToUser(ctx context.Context, userID *string) (*string, error) {
	if isAbsent(userID) {
		return nil, nil
	}
	id, ok := canonicalID(*userID)
	if !ok {
		return nil, domain.ErrReplyToUserMalformed()
	}

	exists, err := v.users.UserExists(ctx, id)
	if err != nil {
		return nil, domain.ErrReplyToUserCheckFailed(err)
	}
	if !exists {
		return nil, domain.ErrReplyToUserNotFound()
	}
	return &id, nil
}

func canonicalID(s string) (string, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func isAbsent(s *string) bool {
	return s == nil || *s == ""
}
