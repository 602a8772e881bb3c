package dto

type OrderSearchQuery struct {
	Query string `query:"q" validate:"required,max=255"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

type TicketQuery struct {
	Email       string `query:"email" validate:"omitempty,email"`
	OrderNumber string `query:"order_number" validate:"omitempty,max=50"`
}
