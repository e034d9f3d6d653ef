package domain

// SortKey - поле сортировки ответов.
type SortKey string

const (
	SortByCreatedAt SortKey = "createdAt"
	SortByLikes     SortKey = "likes"
)

// SortOrder - направление сортировки.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// DefaultOrder возвращает направление по умолчанию для ключа:
// хронологический порядок для createdAt, самые популярные сначала для likes.
func (k SortKey) DefaultOrder() SortOrder {
	if k == SortByLikes {
		return Descending
	}
	return Ascending
}

