package models

// PaymentFilter параметры фильтрации списка платежей, передаются
// в слой доступа к данным. Nil-поле означает отсутствие фильтра.
type PaymentFilter struct {
	UserUID *string // Владелец платежа
	Status  *string // pending, approved, rejected
	Method  *string // qr_code, upi
	Search  *string // Поиск по сумме или периоду
	Limit   int
	Offset  int
}

// UserFilter параметры фильтрации списка пользователей.
type UserFilter struct {
	Status *string
	Role   *string
	Search *string // Поиск по имени или почте
	Limit  int
	Offset int
}

// Pagination описывает блок пагинации в ответах списочных операций.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination собирает блок пагинации по номеру страницы, размеру
// страницы и общему числу записей.
func NewPagination(page, limit, total int) Pagination {
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
