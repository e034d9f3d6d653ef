package reply

import (
	"net/url"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/UkralStul/circle-replies-service/internal/domain"
)

// DisplayLayout - формат времени для клиента (24 часа).
const DisplayLayout = "2006-01-02 15:04:05"

// ThreadPresenter готовит ответы к выдаче: локализует время и превращает
// относительные пути аватаров в абсолютные URL. Ничего не пишет в хранилище.
type ThreadPresenter struct {
	baseURL  string
	location *time.Location
}

func NewThreadPresenter(baseURL string, location *time.Location) *ThreadPresenter {
	if location == nil {
		location = time.UTC
	}
	return &ThreadPresenter{baseURL: strings.TrimRight(baseURL, "/"), location: location}
}

func (p *ThreadPresenter) Format(r *domain.ThreadReply) *domain.ReplyView {
	return &domain.ReplyView{
		ID:          r.ID,
		Post:        r.PostID,
		ParentReply: r.ParentReplyID,
		Content:     r.Content,
		User:        p.RewriteAvatar(r.User),
		ReplyToUser: p.RewriteAvatar(r.ReplyToUser),
		CreatedAt:   r.CreatedAt.In(p.location).Format(DisplayLayout),
		Likes:       r.Likes,
	}
}

func (p *ThreadPresenter) FormatAll(rs []*domain.ThreadReply) []*domain.ReplyView {
	return lo.Map(rs, func(r *domain.ThreadReply, _ int) *domain.ReplyView {
		return p.Format(r)
	})
}

// RewriteAvatar возвращает копию ref с абсолютным URL аватара.
func (p *ThreadPresenter) RewriteAvatar(ref *domain.UserRef) *domain.UserRef {
	if ref == nil {
		return nil
	}
	cp := *ref
	cp.Avatar = p.AbsoluteURL(ref.Avatar)
	return &cp
}

// AbsoluteURL добавляет базовый URL к относительному пути. Абсолютные URL
// (и protocol-relative //host/...) возвращаются как есть, так что повторный
// вызов ничего не меняет.
func (p *ThreadPresenter) AbsoluteURL(path string) string {
	if path == "" || p.baseURL == "" {
		return path
	}
	if u, err := url.Parse(path); err == nil && (u.IsAbs() || u.Host != "") {
		return path
	}
	return p.baseURL + "/" + strings.TrimLeft(path, "/")
}
