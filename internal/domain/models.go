package domain

import "time"

// Post представляет пост в круге. Сам пост принадлежит внешнему сервису,
// здесь меняется только денормализованный счётчик ответов.
type Post struct {
	ID        string    `json:"id" gorm:"type:uuid;primary_key" bson:"_id"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null" bson:"title"`
	AuthorID  string    `json:"authorId" gorm:"type:uuid;not null" bson:"authorId"`
	Replies   int64     `json:"replies" gorm:"not null;default:0" bson:"replies"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;default:now()" bson:"createdAt"`
}

// User - минимальная модель пользователя, нужная подсистеме ответов.
type User struct {
	ID        string    `json:"id" gorm:"type:uuid;primary_key" bson:"_id"`
	Username  string    `json:"username" gorm:"type:varchar(255);not null;uniqueIndex" bson:"username"`
	Avatar    string    `json:"avatar" gorm:"type:varchar(1024);not null;default:''" bson:"avatar"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;default:now()" bson:"createdAt"`
}

// UserRef - проекция пользователя (username, avatar), которой
// подменяются ссылки user и replyToUser при выдаче.
type UserRef struct {
	ID       string `json:"id" bson:"_id"`
	Username string `json:"username" bson:"username"`
	Avatar   string `json:"avatar" bson:"avatar"`
}

// Reply представляет ответ на пост. ParentReplyID == nil означает корневой ответ.
// После создания ответ не меняется.
type Reply struct {
	ID            string    `json:"id" gorm:"type:uuid;primary_key" bson:"_id"`
	PostID        string    `json:"post" gorm:"type:uuid;not null;index:idx_replies_thread,priority:1" bson:"post"`
	ParentReplyID *string   `json:"parentReply" gorm:"type:uuid;index:idx_replies_thread,priority:2" bson:"parentReply"`
	Content       string    `json:"content" gorm:"type:varchar(2000);not null" bson:"content"`
	UserID        string    `json:"user" gorm:"type:uuid;not null" bson:"user"`
	ReplyToUserID *string   `json:"replyToUser" gorm:"type:uuid" bson:"replyToUser"`
	CreatedAt     time.Time `json:"createdAt" gorm:"not null;index" bson:"createdAt"`
	Likes         int64     `json:"likes" gorm:"not null;default:0;index" bson:"likes"`
	// Seq - порядковый номер вставки, разрешает равенство CreatedAt.
	Seq int64 `json:"-" gorm:"autoIncrement;index" bson:"seq"`
}

// ThreadReply - ответ с разрешёнными ссылками на пользователей.
// ReplyToUser == nil, если ответ никому не адресован или пользователь не найден.
type ThreadReply struct {
	*Reply
	User        *UserRef
	ReplyToUser *UserRef
}

// ReplyView - представление ответа на проводе.
type ReplyView struct {
	ID          string   `json:"id"`
	Post        string   `json:"post"`
	ParentReply *string  `json:"parentReply"`
	Content     string   `json:"content"`
	User        *UserRef `json:"user"`
	ReplyToUser *UserRef `json:"replyToUser"`
	CreatedAt   string   `json:"createdAt"`
	Likes       int64    `json:"likes"`
}

// Page - страница ответов. Ответ на создание имеет ту же форму.
type Page struct {
	Comments []*ReplyView `json:"comments"`
	HasMore  bool         `json:"hasMore"`
	Total    int64        `json:"total"`
}

// HasMore сообщает, остались ли записи после страницы page размером limit.
func HasMore(page, limit int, total int64) bool {
	return int64(page)*int64(limit) < total
}
