package domain

import (
	"errors"
	"fmt"
)

// Kind - класс ошибки.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindInvalidParameter
	KindStorage
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidParameter:
		return "invalid_parameter"
	case KindStorage:
		return "storage"
	case KindAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// Коды ошибок, которые видит клиент.
const (
	CodePostMissing          = 4001
	CodePostMalformed        = 4002
	CodePostNotFound         = 4003
	CodeParentMalformed      = 4004
	CodeParentNotFound       = 4005
	CodeParentPostMismatch   = 4006
	CodeReplyToUserMalformed = 4007
	CodeReplyToUserNotFound  = 4008

	CodePostCheckFailed        = 5001
	CodeParentCheckFailed      = 5002
	CodeReplyToUserCheckFailed = 5003
)

// Error - ошибка подсистемы ответов. Message безопасно отдавать клиенту,
// Err хранит исходную причину только для логов.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError достаёт *Error из цепочки.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind сообщает, является ли err ошибкой указанного класса.
func IsKind(err error, kind Kind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}

func newCoded(kind Kind, code int, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Err: cause}
}

func ErrPostMissing() *Error {
	return newCoded(KindValidation, CodePostMissing, "postId is required", nil)
}

func ErrPostMalformed() *Error {
	return newCoded(KindValidation, CodePostMalformed, "postId is not a valid id", nil)
}

func ErrPostNotFound() *Error {
	return newCoded(KindNotFound, CodePostNotFound, "post not found", nil)
}

func ErrParentMalformed() *Error {
	return newCoded(KindValidation, CodeParentMalformed, "parentReplyId is not a valid id", nil)
}

func ErrParentNotFound() *Error {
	return newCoded(KindNotFound, CodeParentNotFound, "parent reply not found", nil)
}

func ErrParentPostMismatch() *Error {
	return newCoded(KindConflict, CodeParentPostMismatch, "parent reply belongs to a different post", nil)
}

func ErrReplyToUserMalformed() *Error {
	return newCoded(KindValidation, CodeReplyToUserMalformed, "replyToUserId is not a valid id", nil)
}

func ErrReplyToUserNotFound() *Error {
	return newCoded(KindNotFound, CodeReplyToUserNotFound, "replied-to user not found", nil)
}

func ErrPostCheckFailed(cause error) *Error {
	return newCoded(KindStorage, CodePostCheckFailed, "post validation failed", cause)
}

func ErrParentCheckFailed(cause error) *Error {
	return newCoded(KindStorage, CodeParentCheckFailed, "parent reply validation failed", cause)
}

func ErrReplyToUserCheckFailed(cause error) *Error {
	return newCoded(KindStorage, CodeReplyToUserCheckFailed, "user validation failed", cause)
}

// Validation - ошибка входных данных без кода.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// InvalidParameter - недопустимый параметр запроса (sort, page, limit...).
func InvalidParameter(msg string) *Error {
	return &Error{Kind: KindInvalidParameter, Message: msg}
}

// Storage оборачивает ошибку хранилища. Клиент видит только общий текст.
func Storage(cause error) *Error {
	return &Error{Kind: KindStorage, Message: "internal server error", Err: cause}
}

// NotFound - ссылка больше не разрешается.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Auth - отсутствующий или недействительный токен.
func Auth(msg string, cause error) *Error {
	return &Error{Kind: KindAuth, Message: msg, Err: cause}
}
